package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding endpoint -> subscription JSON.
const DefaultRedisKey = "spot:push:subscriptions"

// RedisStore keeps subscriptions in a single Redis hash.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore creates a RedisStore. An empty key uses DefaultRedisKey.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (r *RedisStore) Add(ctx context.Context, sub Subscription) (Subscription, error) {
	raw, err := r.rdb.HGet(ctx, r.key, sub.Endpoint).Result()
	switch {
	case err == nil:
		var existing Subscription
		if err := json.Unmarshal([]byte(raw), &existing); err == nil {
			existing.Keys = sub.Keys
			sub = existing
		}
	case !errors.Is(err, redis.Nil):
		return Subscription{}, fmt.Errorf("reading subscription: %w", err)
	}

	data, err := json.Marshal(sub)
	if err != nil {
		return Subscription{}, fmt.Errorf("encoding subscription: %w", err)
	}
	if err := r.rdb.HSet(ctx, r.key, sub.Endpoint, data).Err(); err != nil {
		return Subscription{}, fmt.Errorf("storing subscription: %w", err)
	}
	return sub, nil
}

func (r *RedisStore) Remove(ctx context.Context, endpoints ...string) (int, error) {
	if len(endpoints) == 0 {
		return 0, nil
	}
	n, err := r.rdb.HDel(ctx, r.key, endpoints...).Result()
	if err != nil {
		return 0, fmt.Errorf("deleting subscriptions: %w", err)
	}
	return int(n), nil
}

func (r *RedisStore) List(ctx context.Context) ([]Subscription, error) {
	all, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	out := make([]Subscription, 0, len(all))
	for ep, raw := range all {
		var sub Subscription
		if err := json.Unmarshal([]byte(raw), &sub); err != nil {
			return nil, fmt.Errorf("decoding subscription %s: %w", ep, err)
		}
		out = append(out, sub)
	}
	sortOldestFirst(out)
	return out, nil
}

// RecordFailure stamps the failure time in a companion hash.
func (r *RedisStore) RecordFailure(ctx context.Context, endpoint string, at time.Time) error {
	return r.rdb.HSet(ctx, r.key+":failures", endpoint, at.UTC().Format(time.RFC3339)).Err()
}
