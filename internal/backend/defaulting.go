package backend

import (
	"context"

	"go.uber.org/zap"

	"github.com/conduit-lang/resourcemeta/internal/metadata/factory"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
	"github.com/conduit-lang/resourcemeta/internal/orm/schema"
)

// DefaultingFactory assigns the defaults of one backend to the operations of the
// classes that backend manages. Values already set are never replaced, so several
// defaulting factories can be chained, each claiming its own classes.
type DefaultingFactory struct {
	next     factory.Factory
	backend  Backend
	managers *schema.ManagerRegistry
	logger   *zap.Logger
}

// NewDefaultingFactory creates a defaulting factory for backend decorating next
func NewDefaultingFactory(next factory.Factory, backend Backend, managers *schema.ManagerRegistry, logger *zap.Logger) *DefaultingFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultingFactory{
		next:     next,
		backend:  backend,
		managers: managers,
		logger:   logger.With(zap.String("backend", backend.Name)),
	}
}

// WithDefaults returns a decorator adding a DefaultingFactory to a chain
func WithDefaults(backend Backend, managers *schema.ManagerRegistry, logger *zap.Logger) factory.Decorator {
	return func(next factory.Factory) factory.Factory {
		return NewDefaultingFactory(next, backend, managers, logger)
	}
}

// Create implements factory.Factory
func (f *DefaultingFactory) Create(ctx context.Context, resourceClass string) (*resource.Collection, error) {
	collection, err := f.next.Create(ctx, resourceClass)
	if err != nil {
		return nil, err
	}

	if err := factory.MapOperations(collection, f.applyDefaults); err != nil {
		return nil, err
	}
	return collection, nil
}

func (f *DefaultingFactory) applyDefaults(_ resource.Resource, op resource.Operation) (resource.Operation, bool, error) {
	options := op.StateOptions()
	if options != nil && options.Backend() != f.backend.Name {
		return op, true, nil
	}

	class := op.Class()
	if options != nil && options.PersistenceClass() != "" {
		class = options.PersistenceClass()
	}

	manager := f.manager(class, options != nil)
	if manager == nil {
		return op, true, nil
	}

	if op.Kind().IsUpdate() && manager.IsReadOnly(class) {
		f.logger.Debug("removing update operation of read only class",
			zap.String("class", op.Class()),
			zap.String("operation", op.Name()),
		)
		return op, false, nil
	}

	if op.Provider() == "" {
		provider := f.backend.ItemProvider
		if op.IsCollection() {
			provider = f.backend.CollectionProvider
		}
		op = op.WithProvider(provider)
	}

	if op.Processor() == "" {
		processor := f.backend.PersistProcessor
		if op.Kind().IsDelete() {
			processor = f.backend.RemoveProcessor
		}
		op = op.WithProcessor(processor)
	}

	if options == nil {
		options, _ = resource.NewStateOptions(f.backend.Name)
	}
	if options != nil && options.LinksHandler() == "" && f.backend.LinksHandler != "" {
		options = options.WithLinksHandler(f.backend.LinksHandler)
	}
	if options != nil {
		op = op.WithStateOptions(options)
	}

	if params := op.Parameters(); params != nil {
		for _, p := range params.All() {
			if p.FilterClass() == "" {
				params.Add(p.WithFilterClass(class))
			}
		}
		op = op.WithParameters(params)
	}

	f.logger.Debug("applied backend defaults",
		zap.String("class", op.Class()),
		zap.String("operation", op.Name()),
		zap.String("provider", op.Provider()),
		zap.String("processor", op.Processor()),
	)
	return op, true, nil
}

// manager returns the registry of this backend when it manages class. Operations
// selecting this backend through state options only need the class registered with
// it; otherwise the backend must be the first one managing the class.
func (f *DefaultingFactory) manager(class string, explicit bool) *schema.Registry {
	if explicit {
		registry, ok := f.managers.Manager(f.backend.Name)
		if !ok || !registry.Exists(class) {
			return nil
		}
		return registry
	}

	registry := f.managers.ManagerForClass(class)
	if registry == nil || registry.Backend() != f.backend.Name {
		return nil
	}
	return registry
}
