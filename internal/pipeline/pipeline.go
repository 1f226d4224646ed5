// Package pipeline assembles the default resource metadata factory chain.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/resourcemeta/internal/backend"
	"github.com/conduit-lang/resourcemeta/internal/metadata/declaration"
	"github.com/conduit-lang/resourcemeta/internal/metadata/factory"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// ErrNoDeclarations is returned when a pipeline is created without declarations
var ErrNoDeclarations = errors.New("pipeline requires declarations")

// Options configures the default chain
type Options struct {
	Declarations *declaration.Set
	// Backends to chain, in order; nil uses backend.All()
	Backends []backend.Backend
	// Cache enables the caching factory when set
	Cache  *factory.CacheOptions
	Logger *zap.Logger
}

// Pipeline is the assembled factory chain
type Pipeline struct {
	factory.Factory

	source *declaration.Source
	cached *factory.CachedFactory
	logger *zap.Logger
}

// New composes base, parameter validation, backend defaulting, links and cache.
// Parameters are derived before the backends run so that filter parameters get
// their filter class bound.
func New(opts Options) (*Pipeline, error) {
	if opts.Declarations == nil {
		return nil, ErrNoDeclarations
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	set := opts.Declarations
	backends := opts.Backends
	if backends == nil {
		backends = backend.All()
	}

	builder := factory.NewBuilder(factory.NewBaseFactory(set.Source, logger)).
		Use(factory.WithParameterValidation(set.Filters, logger))
	for _, b := range backends {
		builder.Use(backend.WithDefaults(b, set.Managers, logger))
	}
	builder.Use(factory.WithLinks(set.Source, set.Managers, logger))

	p := &Pipeline{source: set.Source, logger: logger}
	chain := builder.Build()

	if opts.Cache != nil {
		cached, err := factory.NewCachedFactory(chain, *opts.Cache, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create metadata cache: %w", err)
		}
		p.cached = cached
		chain = cached
	}
	p.Factory = chain

	logger.Debug("resource metadata pipeline ready",
		zap.Int("backends", len(backends)),
		zap.Bool("cached", p.cached != nil),
	)
	return p, nil
}

// Classes returns the declared resource classes, sorted
func (p *Pipeline) Classes() []string {
	return p.source.Classes()
}

// Invalidate drops the cached collection of a class; it is a no-op without a cache
func (p *Pipeline) Invalidate(ctx context.Context, resourceClass string) error {
	if p.cached == nil {
		return nil
	}
	return p.cached.Invalidate(ctx, resourceClass)
}

// Cached reports whether the collection of a class is cached
func (p *Pipeline) Cached(ctx context.Context, resourceClass string) (bool, error) {
	if p.cached == nil {
		return false, nil
	}
	return p.cached.Cached(ctx, resourceClass)
}

// Purge drops every cached collection; it is a no-op without a cache
func (p *Pipeline) Purge(ctx context.Context) error {
	if p.cached == nil {
		return nil
	}
	return p.cached.Purge(ctx)
}

// ResolveAll resolves every declared class concurrently. The result follows the
// order of Classes; the first failure cancels the remaining resolutions.
func (p *Pipeline) ResolveAll(ctx context.Context) ([]*resource.Collection, error) {
	classes := p.Classes()
	collections := make([]*resource.Collection, len(classes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, class := range classes {
		i, class := i, class
		g.Go(func() error {
			collection, err := p.Create(ctx, class)
			if err != nil {
				return err
			}
			collections[i] = collection
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return collections, nil
}
