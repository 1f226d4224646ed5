package resource

import "slices"

// Operations is an ordered, name-keyed set of operations. Names are unique: adding an
// operation under an existing name replaces it in place.
type Operations struct {
	names  []string
	values map[string]Operation
}

// NewOperations creates a set from the given operations, keyed by their names
func NewOperations(ops ...Operation) *Operations {
	set := &Operations{values: make(map[string]Operation)}
	for _, op := range ops {
		set.Add(op.Name(), op)
	}
	return set
}

// Add stores op under name. The operation's own name is aligned with the key.
func (s *Operations) Add(name string, op Operation) {
	if s.values == nil {
		s.values = make(map[string]Operation)
	}
	if _, exists := s.values[name]; !exists {
		s.names = append(s.names, name)
	}
	s.values[name] = op.WithName(name)
}

// Get retrieves an operation by name
func (s *Operations) Get(name string) (Operation, bool) {
	if s == nil {
		return Operation{}, false
	}
	op, ok := s.values[name]
	return op, ok
}

// Has returns true if an operation with the given name exists
func (s *Operations) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Remove deletes an operation by name
func (s *Operations) Remove(name string) {
	if s == nil {
		return
	}
	if _, ok := s.values[name]; !ok {
		return
	}
	delete(s.values, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
}

// Names returns operation names in insertion order
func (s *Operations) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// All returns the operations in insertion order
func (s *Operations) All() []Operation {
	if s == nil {
		return nil
	}
	ops := make([]Operation, 0, len(s.names))
	for _, name := range s.names {
		ops = append(ops, s.values[name])
	}
	return ops
}

// Len returns the number of operations
func (s *Operations) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Clone returns an independent copy of the set
func (s *Operations) Clone() *Operations {
	if s == nil {
		return nil
	}
	cp := &Operations{
		names:  slices.Clone(s.names),
		values: make(map[string]Operation, len(s.values)),
	}
	for k, v := range s.values {
		cp.values[k] = v
	}
	return cp
}
