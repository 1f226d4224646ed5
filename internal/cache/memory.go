package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// MemoryCache is a bounded in-process cache. Least recently used entries are evicted
// once MaxEntries is reached; expired entries are dropped on access.
type MemoryCache struct {
	entries *lru.Cache
	config  Config
	now     func() time.Time
}

type memoryEntry struct {
	value      []byte
	expiration time.Time
}

// NewMemoryCache creates a memory cache with the default configuration
func NewMemoryCache() (*MemoryCache, error) {
	return NewMemoryCacheWithConfig(DefaultConfig())
}

// NewMemoryCacheWithConfig creates a memory cache with custom configuration
func NewMemoryCacheWithConfig(config Config) (*MemoryCache, error) {
	size := config.MaxEntries
	if size <= 0 {
		size = DefaultConfig().MaxEntries
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, config: config, now: time.Now}, nil
}

// Get retrieves a value from the cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullKey := m.config.Prefix + key
	value, ok := m.entries.Get(fullKey)
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}

	entry := value.(memoryEntry)
	if m.expired(entry) {
		m.entries.Remove(fullKey)
		return nil, ErrCacheMiss{Key: key}
	}

	return entry.value, nil
}

// Set stores a value in the cache with a TTL
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiration = m.now().Add(ttl)
	}

	m.entries.Add(m.config.Prefix+key, entry)
	return nil
}

// Delete removes a value from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.entries.Remove(m.config.Prefix + key)
	return nil
}

// Clear removes all values from the cache
func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.entries.Purge()
	return nil
}

// Exists checks if a key exists in the cache
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if IsCacheMiss(err) {
		return false, nil
	}
	return err == nil, err
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryCache) Len() int {
	return m.entries.Len()
}

func (m *MemoryCache) expired(entry memoryEntry) bool {
	return !entry.expiration.IsZero() && m.now().After(entry.expiration)
}
