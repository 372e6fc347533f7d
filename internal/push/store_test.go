package push

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/spotsurfer/internal/testutil"
)

func newSub(i int) Subscription {
	return Subscription{
		ID:        fmt.Sprintf("id-%d", i),
		Endpoint:  fmt.Sprintf("https://push.example.com/send/%d", i),
		Keys:      Keys{P256dh: fmt.Sprintf("p256-%d", i), Auth: fmt.Sprintf("auth-%d", i)},
		CreatedAt: time.Date(2025, 1, 1, 12, i, 0, 0, time.UTC),
	}
}

func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("add and list oldest first", func(t *testing.T) {
		s := newStore(t)
		for _, i := range []int{3, 1, 2} {
			_, err := s.Add(ctx, newSub(i))
			require.NoError(t, err)
		}

		subs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 3)
		assert.Equal(t, newSub(1), subs[0])
		assert.Equal(t, newSub(2).Endpoint, subs[1].Endpoint)
		assert.Equal(t, newSub(3).Endpoint, subs[2].Endpoint)
	})

	t.Run("re-adding an endpoint keeps id and replaces keys", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(ctx, newSub(1))
		require.NoError(t, err)

		again := newSub(1)
		again.ID = "other"
		again.Keys = Keys{P256dh: "new-p256", Auth: "new-auth"}
		stored, err := s.Add(ctx, again)
		require.NoError(t, err)

		assert.Equal(t, "id-1", stored.ID)
		assert.Equal(t, "new-p256", stored.Keys.P256dh)

		subs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "new-auth", subs[0].Keys.Auth)
	})

	t.Run("remove counts existing endpoints", func(t *testing.T) {
		s := newStore(t)
		for i := 1; i <= 3; i++ {
			_, err := s.Add(ctx, newSub(i))
			require.NoError(t, err)
		}

		n, err := s.Remove(ctx, newSub(1).Endpoint, newSub(3).Endpoint, "https://push.example.com/missing")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		subs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "id-2", subs[0].ID)
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		subs, err := newStore(t).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return NewSQLiteStore(testutil.NewTestDB(t)) })
}

func TestSQLiteStore_RecordFailure(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewTestDB(t)
	s := NewSQLiteStore(conn)
	_, err := s.Add(ctx, newSub(1))
	require.NoError(t, err)

	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, s.RecordFailure(ctx, newSub(1).Endpoint, at))

	var got string
	require.NoError(t, conn.QueryRow(`SELECT last_failure_at FROM push_subscriptions`).Scan(&got))
	assert.Equal(t, "2025-02-03T04:05:06.000000000Z", got)

	assert.ErrorIs(t, s.RecordFailure(ctx, "https://push.example.com/missing", at), ErrNotFound)
}

// Requires a running Redis; set SPOT_TEST_REDIS_ADDR to enable.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SPOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SPOT_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	storeContract(t, func(t *testing.T) Store {
		key := "spot:test:" + t.Name()
		rdb.Del(context.Background(), key)
		t.Cleanup(func() { rdb.Del(context.Background(), key) })
		return NewRedisStore(rdb, key)
	})
}
