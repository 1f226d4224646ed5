package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), time.Minute))

	retrieved, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), retrieved)

	exists, err := cache.Exists(ctx, "key")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)

	_, err = cache.Get(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, IsCacheMiss(err))

	exists, err := cache.Exists(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), -1))

	now = now.Add(2 * time.Second)

	_, err = cache.Get(ctx, "short")
	assert.True(t, IsCacheMiss(err))

	_, err = cache.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	config := DefaultConfig()
	config.MaxEntries = 2
	cache, err := NewMemoryCacheWithConfig(config)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), 0))
	_, err = cache.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "c", []byte("3"), 0))

	assert.Equal(t, 2, cache.Len())
	_, err = cache.Get(ctx, "b")
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, cache.Delete(ctx, "a"))
	_, err = cache.Get(ctx, "a")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_ContextCancelled(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, cache.Set(ctx, "a", []byte("1"), 0), context.Canceled)
	_, err = cache.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectionKey(t *testing.T) {
	key := CollectionKey(`App\Entity\Book`, "")
	assert.Regexp(t, `^resource_metadata_collection_[0-9a-f]{64}$`, key)
	assert.Equal(t, key+"_v2", CollectionKey(`App\Entity\Book`, "v2"))
	assert.NotEqual(t, key, CollectionKey(`App\Entity\Author`, ""))
}
