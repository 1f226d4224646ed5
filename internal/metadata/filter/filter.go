// Package filter provides the legacy filter descriptions that are migrated to
// operation parameters. Filters here only describe the query parameters they accept;
// applying them to a query is the job of the storage layer.
package filter

import (
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// PropertyPlaceholder is replaced by each supported property when descriptions are expanded
const PropertyPlaceholder = ":property"

// Description documents one query parameter accepted by a filter
type Description struct {
	Key          string
	Property     string
	Type         string
	Required     bool
	IsCollection bool
	Schema       map[string]any
	OpenAPI      *resource.OpenAPIParameter
}

// Filter describes the query parameters a filter accepts for a resource class
type Filter interface {
	// Description returns the accepted parameters in a stable order
	Description(resourceClass string) []Description
	// Properties returns the properties the filter applies to
	Properties() []string
}

// Locator resolves filter ids declared on operations
type Locator struct {
	mu      sync.RWMutex
	filters map[string]Filter
}

// NewLocator creates an empty locator
func NewLocator() *Locator {
	return &Locator{filters: make(map[string]Filter)}
}

// Register stores a filter under id
func (l *Locator) Register(id string, f Filter) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.filters[id]; exists {
		return fmt.Errorf("filter %s is already registered", id)
	}
	l.filters[id] = f
	return nil
}

// Has returns true if a filter is registered under id
func (l *Locator) Has(id string) bool {
	if l == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.filters[id]
	return ok
}

// Get returns the filter registered under id
func (l *Locator) Get(id string) (Filter, bool) {
	if l == nil {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.filters[id]
	return f, ok
}

// IDs returns the registered filter ids, sorted
func (l *Locator) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.filters))
	for id := range l.filters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cloneSchema(s map[string]any) map[string]any {
	return maps.Clone(s)
}
