package push

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store persists subscriptions keyed by endpoint.
type Store interface {
	// Add inserts sub or, when the endpoint exists, replaces its keys.
	// It returns the stored subscription.
	Add(ctx context.Context, sub Subscription) (Subscription, error)
	// Remove deletes the given endpoints and reports how many existed.
	Remove(ctx context.Context, endpoints ...string) (int, error)
	// List returns all subscriptions, oldest first.
	List(ctx context.Context) ([]Subscription, error)
}

// FailureRecorder is implemented by stores that track delivery failures.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, endpoint string, at time.Time) error
}

// MemoryStore keeps subscriptions in a map. Contents are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]Subscription)}
}

func (m *MemoryStore) Add(ctx context.Context, sub Subscription) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.subs[sub.Endpoint]; ok {
		existing.Keys = sub.Keys
		m.subs[sub.Endpoint] = existing
		return existing, nil
	}
	m.subs[sub.Endpoint] = sub
	return sub, nil
}

func (m *MemoryStore) Remove(ctx context.Context, endpoints ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ep := range endpoints {
		if _, ok := m.subs[ep]; ok {
			delete(m.subs, ep)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Subscription, error) {
	m.mu.RLock()
	out := make([]Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sortOldestFirst(out)
	return out, nil
}

func sortOldestFirst(subs []Subscription) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].Endpoint < subs[j].Endpoint
		}
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
}
