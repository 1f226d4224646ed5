package factory

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/conduit-lang/resourcemeta/internal/cache"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// CacheOptions configures a CachedFactory
type CacheOptions struct {
	// LocalSize bounds the in-process LRU of decoded collections; zero disables it
	LocalSize int
	// Shared is the cache shared between processes, nil to disable it
	Shared cache.Cache
	// TTL of shared entries; zero uses the cache default
	TTL time.Duration
	// Version returns the current schema version token, appended to cache keys
	Version func() string
}

// CachedFactory memoizes the collections resolved by the chain it wraps. Lookups go
// through a local LRU, then the shared cache; concurrent misses for the same key
// share one resolution. Errors are never cached.
type CachedFactory struct {
	next    Factory
	local   *lru.Cache
	shared  cache.Cache
	ttl     time.Duration
	version func() string
	group   singleflight.Group
	logger  *zap.Logger
}

// NewCachedFactory creates a cached factory decorating next
func NewCachedFactory(next Factory, opts CacheOptions, logger *zap.Logger) (*CachedFactory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &CachedFactory{
		next:    next,
		shared:  opts.Shared,
		ttl:     opts.TTL,
		version: opts.Version,
		logger:  logger,
	}
	if opts.LocalSize > 0 {
		local, err := lru.New(opts.LocalSize)
		if err != nil {
			return nil, err
		}
		f.local = local
	}
	return f, nil
}

// Create implements Factory. Every caller receives its own copy of the collection.
func (f *CachedFactory) Create(ctx context.Context, resourceClass string) (*resource.Collection, error) {
	key := f.key(resourceClass)

	if f.local != nil {
		if v, ok := f.local.Get(key); ok {
			f.logger.Debug("resource metadata local cache hit", zap.String("class", resourceClass))
			return v.(*resource.Collection).Clone(), nil
		}
	}

	// the load is shared by every waiting caller, so one caller giving up must
	// not fail the others
	v, err, shared := f.group.Do(key, func() (any, error) {
		return f.load(context.WithoutCancel(ctx), key, resourceClass)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.logger.Debug("resource metadata resolution shared", zap.String("class", resourceClass))
	}
	return v.(*resource.Collection).Clone(), nil
}

func (f *CachedFactory) load(ctx context.Context, key, resourceClass string) (*resource.Collection, error) {
	if f.shared != nil {
		if collection, ok := f.fromShared(ctx, key, resourceClass); ok {
			f.remember(key, collection)
			return collection, nil
		}
	}

	collection, err := f.next.Create(ctx, resourceClass)
	if err != nil {
		return nil, err
	}

	if f.shared != nil {
		data, err := json.Marshal(collection)
		if err != nil {
			return nil, err
		}
		if err := f.shared.Set(ctx, key, data, f.ttl); err != nil {
			f.logger.Warn("failed to store resource metadata",
				zap.String("class", resourceClass),
				zap.Error(err),
			)
		}
	}

	f.remember(key, collection)
	return collection, nil
}

func (f *CachedFactory) fromShared(ctx context.Context, key, resourceClass string) (*resource.Collection, bool) {
	data, err := f.shared.Get(ctx, key)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			f.logger.Warn("failed to read resource metadata cache",
				zap.String("class", resourceClass),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var collection resource.Collection
	if err := json.Unmarshal(data, &collection); err != nil {
		f.logger.Warn("discarding undecodable resource metadata",
			zap.String("class", resourceClass),
			zap.Error(err),
		)
		return nil, false
	}

	f.logger.Debug("resource metadata shared cache hit", zap.String("class", resourceClass))
	return &collection, true
}

func (f *CachedFactory) remember(key string, collection *resource.Collection) {
	if f.local != nil {
		f.local.Add(key, collection.Clone())
	}
}

// Invalidate drops the cached collection of a class at the current version
func (f *CachedFactory) Invalidate(ctx context.Context, resourceClass string) error {
	key := f.key(resourceClass)
	if f.local != nil {
		f.local.Remove(key)
	}
	if f.shared != nil {
		return f.shared.Delete(ctx, key)
	}
	return nil
}

// Cached reports whether the collection of a class is cached at the current version
func (f *CachedFactory) Cached(ctx context.Context, resourceClass string) (bool, error) {
	key := f.key(resourceClass)
	if f.local != nil && f.local.Contains(key) {
		return true, nil
	}
	if f.shared == nil {
		return false, nil
	}
	return f.shared.Exists(ctx, key)
}

// Purge drops every cached collection, whatever its version
func (f *CachedFactory) Purge(ctx context.Context) error {
	if f.local != nil {
		f.local.Purge()
	}
	if f.shared != nil {
		return f.shared.Clear(ctx)
	}
	return nil
}

func (f *CachedFactory) key(resourceClass string) string {
	version := ""
	if f.version != nil {
		version = f.version()
	}
	return cache.CollectionKey(resourceClass, version)
}
