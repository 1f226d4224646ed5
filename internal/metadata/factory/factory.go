// Package factory resolves the operation metadata of resource classes.
//
// Resolution is a chain of factories. The base factory builds collections from raw
// declarations; each decorator wraps the previous factory, delegates to it and then
// enriches the operations it is responsible for. A decorator never overwrites a value
// that is already set, so the chain can be composed in any order that respects data
// dependencies and can be invoked repeatedly with the same result.
package factory

import (
	"context"

	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// Factory creates the metadata collection of a resource class
type Factory interface {
	Create(ctx context.Context, resourceClass string) (*resource.Collection, error)
}

// Func adapts a function to the Factory interface
type Func func(ctx context.Context, resourceClass string) (*resource.Collection, error)

// Create calls f
func (f Func) Create(ctx context.Context, resourceClass string) (*resource.Collection, error) {
	return f(ctx, resourceClass)
}

// Decorator wraps a factory
type Decorator func(next Factory) Factory

// Builder composes a factory chain in an explicit order. The first decorator added
// wraps the base factory, the last one becomes the outermost factory.
type Builder struct {
	base       Factory
	decorators []Decorator
}

// NewBuilder starts a chain on base
func NewBuilder(base Factory) *Builder {
	return &Builder{base: base}
}

// Use appends decorators; nil decorators are ignored
func (b *Builder) Use(decorators ...Decorator) *Builder {
	for _, d := range decorators {
		if d != nil {
			b.decorators = append(b.decorators, d)
		}
	}
	return b
}

// Build returns the outermost factory
func (b *Builder) Build() Factory {
	f := b.base
	for _, d := range b.decorators {
		f = d(f)
	}
	return f
}

// OperationFunc transforms one operation of resource r. Returning keep=false drops it.
type OperationFunc func(r resource.Resource, op resource.Operation) (updated resource.Operation, keep bool, err error)

// MapOperations applies fn to every HTTP and GraphQL operation of the collection and
// stores the results in place.
func MapOperations(c *resource.Collection, fn OperationFunc) error {
	for i := 0; i < c.Len(); i++ {
		r := c.At(i)

		ops, err := mapSet(r, r.Operations, fn)
		if err != nil {
			return err
		}
		r.Operations = ops

		graphQL, err := mapSet(r, r.GraphQLOperations, fn)
		if err != nil {
			return err
		}
		r.GraphQLOperations = graphQL

		c.Set(i, r)
	}
	return nil
}

func mapSet(r resource.Resource, set *resource.Operations, fn OperationFunc) (*resource.Operations, error) {
	if set == nil {
		return nil, nil
	}
	out := resource.NewOperations()
	for _, name := range set.Names() {
		op, _ := set.Get(name)
		updated, keep, err := fn(r, op)
		if err != nil {
			return nil, err
		}
		if keep {
			out.Add(name, updated)
		}
	}
	return out, nil
}
