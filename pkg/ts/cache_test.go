package ts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get and set", func(t *testing.T) {
		t.Parallel()

		cache := NewMemoryCache(10)

		_, err := cache.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrCacheKeyNotFound)

		entry := &CacheEntry{
			Data:      []byte(`{"Quotes":[]}`),
			ExpiresAt: time.Now().Add(time.Minute),
			ETag:      "abc123",
		}
		require.NoError(t, cache.Set(ctx, "quotes/MSFT", entry))

		got, err := cache.Get(ctx, "quotes/MSFT")
		require.NoError(t, err)
		assert.Equal(t, entry.Data, got.Data)
		assert.Equal(t, "abc123", got.ETag)
		assert.True(t, cache.Has(ctx, "quotes/MSFT"))
	})

	t.Run("expired entries are removed on read", func(t *testing.T) {
		t.Parallel()

		cache := NewMemoryCache(10)

		require.NoError(t, cache.Set(ctx, "stale", &CacheEntry{
			Data:      []byte("old"),
			ExpiresAt: time.Now().Add(-time.Second),
		}))

		_, err := cache.Get(ctx, "stale")
		require.ErrorIs(t, err, ErrCacheEntryExpired)

		assert.False(t, cache.Has(ctx, "stale"))
	})

	t.Run("entry without expiry never expires", func(t *testing.T) {
		t.Parallel()

		cache := NewMemoryCache(10)

		require.NoError(t, cache.Set(ctx, "pinned", &CacheEntry{Data: []byte("keep")}))

		got, err := cache.Get(ctx, "pinned")
		require.NoError(t, err)
		assert.Equal(t, []byte("keep"), got.Data)
	})

	t.Run("eviction drops the soonest expiring entry", func(t *testing.T) {
		t.Parallel()

		cache := NewMemoryCache(2)

		require.NoError(t, cache.Set(ctx, "soon", &CacheEntry{ExpiresAt: time.Now().Add(time.Second)}))
		require.NoError(t, cache.Set(ctx, "later", &CacheEntry{ExpiresAt: time.Now().Add(time.Hour)}))
		require.NoError(t, cache.Set(ctx, "newest", &CacheEntry{ExpiresAt: time.Now().Add(time.Hour)}))

		assert.False(t, cache.Has(ctx, "soon"))
		assert.True(t, cache.Has(ctx, "later"))
		assert.True(t, cache.Has(ctx, "newest"))
	})

	t.Run("delete and clear", func(t *testing.T) {
		t.Parallel()

		cache := NewMemoryCache(10)

		require.NoError(t, cache.Set(ctx, "a", &CacheEntry{Data: []byte("1")}))
		require.NoError(t, cache.Set(ctx, "b", &CacheEntry{Data: []byte("2")}))

		require.NoError(t, cache.Delete(ctx, "a"))
		assert.False(t, cache.Has(ctx, "a"))
		assert.True(t, cache.Has(ctx, "b"))

		require.NoError(t, cache.Clear(ctx))
		assert.False(t, cache.Has(ctx, "b"))
	})
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := NewNoOpCache()

	require.NoError(t, cache.Set(ctx, "key", &CacheEntry{Data: []byte("ignored")}))

	_, err := cache.Get(ctx, "key")
	require.ErrorIs(t, err, ErrCacheDisabled)

	assert.False(t, cache.Has(ctx, "key"))
	require.NoError(t, cache.Delete(ctx, "key"))
	require.NoError(t, cache.Clear(ctx))
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("hit in a later cache backfills earlier ones", func(t *testing.T) {
		t.Parallel()

		l1 := NewMemoryCache(10)
		l2 := NewMemoryCache(10)
		chain := NewCacheChain(l1, l2)

		entry := &CacheEntry{Data: []byte("payload"), ExpiresAt: time.Now().Add(time.Minute)}
		require.NoError(t, l2.Set(ctx, "key", entry))

		got, err := chain.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, entry.Data, got.Data)

		assert.True(t, l1.Has(ctx, "key"), "L1 should be populated after an L2 hit")
	})

	t.Run("miss in all caches", func(t *testing.T) {
		t.Parallel()

		chain := NewCacheChain(NewMemoryCache(10), NewMemoryCache(10))

		_, err := chain.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrKeyNotFoundInAnyCache)
	})

	t.Run("set writes through to every cache", func(t *testing.T) {
		t.Parallel()

		l1 := NewMemoryCache(10)
		l2 := NewMemoryCache(10)
		chain := NewCacheChain(l1, l2)

		require.NoError(t, chain.Set(ctx, "key", &CacheEntry{Data: []byte("x")}))
		assert.True(t, l1.Has(ctx, "key"))
		assert.True(t, l2.Has(ctx, "key"))

		require.NoError(t, chain.Delete(ctx, "key"))
		assert.False(t, chain.Has(ctx, "key"))
	})
}

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil config defaults to memory", func(t *testing.T) {
		t.Parallel()

		cache, err := NewCacheFromConfig(nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryCache{}, cache)
	})

	t.Run("none disables caching", func(t *testing.T) {
		t.Parallel()

		cache, err := NewCacheFromConfig(&CacheConfig{Type: CacheTypeNone})
		require.NoError(t, err)
		assert.IsType(t, &NoOpCache{}, cache)
	})

	t.Run("nats requires configuration", func(t *testing.T) {
		t.Parallel()

		_, err := NewCacheFromConfig(&CacheConfig{Type: CacheTypeNATS})
		require.ErrorIs(t, err, ErrNATSConfigRequired)
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		_, err := NewCacheFromConfig(&CacheConfig{Type: "redis"})
		require.ErrorIs(t, err, ErrUnsupportedCacheType)
	})
}
