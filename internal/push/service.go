package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultConcurrency = 8

// Service registers subscriptions and fans notifications out to them.
type Service struct {
	store       Store
	sender      Sender
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

// NewService creates a Service. A nil logger discards output.
func NewService(store Store, sender Sender, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:       store,
		sender:      sender,
		logger:      logger,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
}

// Subscribe validates and stores sub. Re-subscribing an endpoint keeps its ID.
func (s *Service) Subscribe(ctx context.Context, sub Subscription) (Subscription, error) {
	sub.Endpoint = strings.TrimSpace(sub.Endpoint)
	if err := sub.Validate(); err != nil {
		return Subscription{}, err
	}
	sub.ID = uuid.NewString()
	sub.CreatedAt = s.now().UTC()

	stored, err := s.store.Add(ctx, sub)
	if err != nil {
		return Subscription{}, fmt.Errorf("subscribing: %w", err)
	}
	s.logger.Info("push subscription stored", "id", stored.ID)
	return stored, nil
}

// Unsubscribe removes the subscription for endpoint.
func (s *Service) Unsubscribe(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return errors.Join(ErrInvalidSubscription, errors.New("endpoint is required"))
	}
	n, err := s.store.Remove(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("unsubscribing: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Broadcast sends n to every subscription. Individual delivery failures
// are counted, not returned. Subscriptions the push service reports as
// gone are removed.
func (s *Service) Broadcast(ctx context.Context, n Notification) (BroadcastResult, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("listing subscriptions: %w", err)
	}

	var (
		mu     sync.Mutex
		result BroadcastResult
		gone   []string
		wg     sync.WaitGroup
		sem    = make(chan struct{}, s.concurrency)
	)
	for _, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub Subscription) {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.sender.Send(ctx, sub, n)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Sent++
			case errors.Is(err, ErrGone):
				result.Failed++
				gone = append(gone, sub.Endpoint)
			default:
				result.Failed++
				s.logger.Warn("push delivery failed", "id", sub.ID, "error", err)
				s.recordFailure(ctx, sub.Endpoint)
			}
		}(sub)
	}
	wg.Wait()

	if len(gone) > 0 {
		removed, err := s.store.Remove(ctx, gone...)
		if err != nil {
			s.logger.Error("pruning gone subscriptions", "count", len(gone), "error", err)
		}
		result.Removed = removed
	}

	s.logger.Info("push broadcast complete",
		"sent", result.Sent, "failed", result.Failed, "removed", result.Removed)
	return result, nil
}

func (s *Service) recordFailure(ctx context.Context, endpoint string) {
	fr, ok := s.store.(FailureRecorder)
	if !ok {
		return
	}
	if err := fr.RecordFailure(ctx, endpoint, s.now()); err != nil {
		s.logger.Debug("recording push failure", "error", err)
	}
}
