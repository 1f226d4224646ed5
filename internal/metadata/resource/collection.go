package resource

import "fmt"

// Resource is one declared resource block of a class. A class may be exposed through
// several blocks, each with its own operations.
type Resource struct {
	Class             string
	ShortName         string
	Description       string
	URITemplate       string
	Operations        *Operations
	GraphQLOperations *Operations
}

// Clone returns a copy of the resource with independent operation sets
func (r Resource) Clone() Resource {
	r.Operations = r.Operations.Clone()
	r.GraphQLOperations = r.GraphQLOperations.Clone()
	return r
}

// Collection is the resolved metadata of one resource class
type Collection struct {
	class     string
	resources []Resource
}

// NewCollection creates a collection for class
func NewCollection(class string, resources ...Resource) *Collection {
	return &Collection{class: class, resources: resources}
}

// Class returns the resource class the collection was resolved for
func (c *Collection) Class() string { return c.class }

// Len returns the number of declared resource blocks
func (c *Collection) Len() int { return len(c.resources) }

// At returns the resource block at index i
func (c *Collection) At(i int) Resource { return c.resources[i] }

// Set replaces the resource block at index i
func (c *Collection) Set(i int, r Resource) { c.resources[i] = r }

// Append adds a resource block
func (c *Collection) Append(r Resource) { c.resources = append(c.resources, r) }

// Resources returns the resource blocks in declaration order
func (c *Collection) Resources() []Resource {
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}

// Clone returns a deep copy whose operation sets can be modified independently
func (c *Collection) Clone() *Collection {
	cp := &Collection{class: c.class, resources: make([]Resource, len(c.resources))}
	for i, r := range c.resources {
		cp.resources[i] = r.Clone()
	}
	return cp
}

// Operation finds an operation by name across HTTP then GraphQL operation sets
func (c *Collection) Operation(name string) (Operation, error) {
	for _, r := range c.resources {
		if op, ok := r.Operations.Get(name); ok {
			return op, nil
		}
	}
	for _, r := range c.resources {
		if op, ok := r.GraphQLOperations.Get(name); ok {
			return op, nil
		}
	}
	return Operation{}, fmt.Errorf("%w: %q on %s", ErrOperationNotFound, name, c.class)
}

// DefaultOperation returns the first GET operation of the requested shape
func (c *Collection) DefaultOperation(collection bool) (Operation, error) {
	want := KindGet
	if collection {
		want = KindGetCollection
	}
	for _, r := range c.resources {
		for _, op := range r.Operations.All() {
			if op.Kind() == want {
				return op, nil
			}
		}
	}
	return Operation{}, fmt.Errorf("%w: no %s operation on %s", ErrOperationNotFound, want, c.class)
}

// AllOperations returns every HTTP and GraphQL operation in declaration order
func (c *Collection) AllOperations() []Operation {
	var ops []Operation
	for _, r := range c.resources {
		ops = append(ops, r.Operations.All()...)
		ops = append(ops, r.GraphQLOperations.All()...)
	}
	return ops
}
