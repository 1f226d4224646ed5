package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/conduit-lang/resourcemeta/internal/backend"
	"github.com/conduit-lang/resourcemeta/internal/cache"
	"github.com/conduit-lang/resourcemeta/internal/cli/config"
	"github.com/conduit-lang/resourcemeta/internal/metadata/declaration"
	"github.com/conduit-lang/resourcemeta/internal/metadata/factory"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
	"github.com/conduit-lang/resourcemeta/internal/orm/catalog"
	"github.com/conduit-lang/resourcemeta/internal/pipeline"
)

// app holds everything a command needs to resolve metadata
type app struct {
	config   *config.Config
	logger   *zap.Logger
	set      *declaration.Set
	pipeline *pipeline.Pipeline
	catalog  *catalog.Catalog
	report   *catalog.Report
	closers  []func() error
	noColor  bool
}

// loadApp reads the configuration and declarations and assembles the pipeline.
// When a database is configured its catalog is probed first, so that classes
// backed by views are read-only and cache keys carry the schema version.
func loadApp(ctx context.Context, opts *rootOptions, requireCatalog bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	a := &app{config: cfg, logger: logger, noColor: opts.noColor}

	base := ""
	if opts.configPath != "" {
		base = filepath.Dir(opts.configPath)
	}
	a.set, err = declaration.LoadFiles(cfg.DeclarationPaths(base)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load declarations: %w", err)
	}
	logger.Debug("loaded declarations", zap.Int("classes", len(a.set.Source.Classes())))

	if err := a.probe(ctx, requireCatalog); err != nil {
		a.close()
		return nil, err
	}

	pipelineOpts := pipeline.Options{
		Declarations: a.set,
		Backends:     make([]backend.Backend, 0, len(cfg.Backends)),
		Logger:       logger,
	}
	for _, name := range cfg.Backends {
		b, _ := backend.Lookup(name)
		pipelineOpts.Backends = append(pipelineOpts.Backends, b)
	}

	pipelineOpts.Cache, err = a.cacheOptions(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.pipeline, err = pipeline.New(pipelineOpts)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) probe(ctx context.Context, required bool) error {
	if a.config.Database.URL == "" {
		if required {
			return fmt.Errorf("no database configured: set database.url or DATABASE_URL")
		}
		return nil
	}

	registry, ok := a.set.Managers.Manager(resource.BackendORM)
	if !ok {
		if required {
			return fmt.Errorf("no %s mappings declared", resource.BackendORM)
		}
		return nil
	}

	c, err := catalog.Open(ctx, a.config.Database.URL, a.logger)
	if err != nil {
		if required {
			return err
		}
		a.logger.Warn("database catalog unavailable", zap.Error(err))
		return nil
	}
	a.closers = append(a.closers, c.Close)

	report, err := c.Probe(ctx, registry)
	if err != nil {
		if required {
			return err
		}
		a.logger.Warn("database catalog probe failed", zap.Error(err))
		return nil
	}

	a.catalog = c
	a.report = report
	return nil
}

func (a *app) cacheOptions(ctx context.Context) (*factory.CacheOptions, error) {
	cfg := a.config
	opts := &factory.CacheOptions{LocalSize: cfg.Cache.LocalSize, TTL: cfg.Cache.TTL}
	if a.catalog != nil {
		opts.Version = a.catalog.Version
	}

	shared := cache.DefaultConfig()
	if cfg.Cache.TTL > 0 {
		shared.DefaultTTL = cfg.Cache.TTL
	}

	switch cfg.Cache.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		if cfg.Cache.LocalSize > 0 {
			shared.MaxEntries = cfg.Cache.LocalSize
		}
		memory, err := cache.NewMemoryCacheWithConfig(shared)
		if err != nil {
			return nil, err
		}
		opts.Shared = memory
	case config.CacheRedis:
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Config:   shared,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, redisCache.Close)
		opts.Shared = redisCache
	}
	return opts, nil
}

func (a *app) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
}
