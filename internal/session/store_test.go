package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)

	stores := map[string]Store{
		"redis":  redisStore,
		"memory": NewMemoryStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, store.Put(ctx, "u1", "first", time.Hour))
			got, err = store.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "first", got)

			// a second put replaces the first session
			require.NoError(t, store.Put(ctx, "u1", "second", time.Hour))
			got, err = store.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "second", got)

			// sessions are per user
			require.NoError(t, store.Put(ctx, "u2", "other", time.Hour))
			got, err = store.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "second", got)

			require.NoError(t, store.Delete(ctx, "u1"))
			got, err = store.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, got)

			// deleting twice is fine
			require.NoError(t, store.Delete(ctx, "u1"))

			assert.ErrorIs(t, store.Put(ctx, "u1", "x", 0), ErrInvalidTTL)
		})
	}
}

func TestRedisStoreKeyAndTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user-7", "token-value", 7*24*time.Hour))

	value, err := mr.Get("refresh:user-7")
	require.NoError(t, err)
	assert.Equal(t, "token-value", value)
	assert.Equal(t, 7*24*time.Hour, mr.TTL("refresh:user-7"))

	mr.FastForward(7*24*time.Hour + time.Second)
	got, err := store.Get(ctx, "user-7")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStoreSurfacesConnectionErrors(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "u1")
	assert.Error(t, err)
	assert.Error(t, store.Put(context.Background(), "u1", "t", time.Minute))
	assert.Error(t, store.Delete(context.Background(), "u1"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(context.Background(), "u1", "t", time.Minute))

	now = now.Add(59 * time.Second)
	got, _ := store.Get(context.Background(), "u1")
	assert.Equal(t, "t", got)

	now = now.Add(time.Second)
	got, _ = store.Get(context.Background(), "u1")
	assert.Empty(t, got)
}
