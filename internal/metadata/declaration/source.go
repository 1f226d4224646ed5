package declaration

import (
	"fmt"
	"sort"
	"sync"
)

// Source serves raw resource declarations by class. It also answers whether a class
// is a resource class at all.
type Source struct {
	mu        sync.RWMutex
	resources map[string][]Resource
}

func newSource() *Source {
	return &Source{resources: make(map[string][]Resource)}
}

// NewSource creates a source from in-memory declarations
func NewSource(resources map[string][]Resource) *Source {
	s := newSource()
	for class, blocks := range resources {
		s.resources[class] = blocks
	}
	return s
}

func (s *Source) add(class string, blocks []Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.resources[class]; exists {
		return fmt.Errorf("resource %s is declared more than once", class)
	}
	s.resources[class] = blocks
	return nil
}

// Declarations returns the resource blocks declared for class
func (s *Source) Declarations(class string) ([]Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks, ok := s.resources[class]
	return blocks, ok
}

// IsResourceClass reports whether class is declared as a resource
func (s *Source) IsResourceClass(class string) bool {
	_, ok := s.Declarations(class)
	return ok
}

// Classes returns the declared resource classes, sorted
func (s *Source) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	classes := make([]string, 0, len(s.resources))
	for class := range s.resources {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
