package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the class metadata of one backend. It is the backend's manager:
// a class is owned by the backend exactly when it is registered here.
type Registry struct {
	backend   string
	schemas   map[string]*ResourceSchema
	validator *SchemaValidator
	mu        sync.RWMutex
}

// NewRegistry creates a new schema registry for the named backend
func NewRegistry(backend string) *Registry {
	return &Registry{
		backend:   backend,
		schemas:   make(map[string]*ResourceSchema),
		validator: NewSchemaValidator(),
	}
}

// Backend returns the name of the backend this registry manages classes for
func (r *Registry) Backend() string {
	return r.backend
}

// Register registers a new resource schema
func (r *Registry) Register(schema *ResourceSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Name]; exists {
		return fmt.Errorf("class %s is already registered with %s", schema.Name, r.backend)
	}

	// Relationship targets are checked in ValidateAll to allow forward references
	if err := r.validator.ValidateStructural(schema); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", schema.Name, err)
	}

	r.schemas[schema.Name] = schema
	return nil
}

// Get retrieves a resource schema by class name
func (r *Registry) Get(name string) (*ResourceSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[name]
	return schema, exists
}

// List returns the registered class names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered schemas
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.schemas)
}

// Exists checks if a class is managed by this registry
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[name]
	return exists
}

// Clear removes all registered schemas (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemas = make(map[string]*ResourceSchema)
}

// PropertyNames returns the mapped property names of a class
func (r *Registry) PropertyNames(class string) ([]string, error) {
	schema, ok := r.Get(class)
	if !ok {
		return nil, fmt.Errorf("class %s is not managed by %s", class, r.backend)
	}
	return schema.PropertyNames(), nil
}

// Identifiers returns the identifier fields of a class
func (r *Registry) Identifiers(class string) []string {
	schema, ok := r.Get(class)
	if !ok {
		return []string{"id"}
	}
	return schema.GetIdentifiers()
}

// HasAssociation reports whether property is an association of class
func (r *Registry) HasAssociation(class, property string) bool {
	schema, ok := r.Get(class)
	if !ok {
		return false
	}
	return schema.HasRelationship(property)
}

// AssociationTarget returns the target class of an association, "" when unknown
func (r *Registry) AssociationTarget(class, property string) string {
	schema, ok := r.Get(class)
	if !ok {
		return ""
	}
	rel, ok := schema.Relationships[property]
	if !ok {
		return ""
	}
	return rel.TargetResource
}

// AssociationMappedBy returns the field on the owning side that maps back to an
// inverse-side association. It returns "" for owning sides and non-associations.
func (r *Registry) AssociationMappedBy(class, property string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[class]
	if !ok {
		return ""
	}
	rel, ok := schema.Relationships[property]
	if !ok {
		return ""
	}
	return mappedBy(schema, rel, r.schemas)
}

// IsReadOnly reports whether the class is mapped read-only
func (r *Registry) IsReadOnly(class string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[class]
	return ok && schema.ReadOnly
}

// MarkReadOnly flags a registered class as read-only
func (r *Registry) MarkReadOnly(class string, readOnly bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schema, ok := r.schemas[class]
	if !ok {
		return fmt.Errorf("class %s is not managed by %s", class, r.backend)
	}
	schema.ReadOnly = readOnly
	return nil
}

// ValidateAll validates relationships across all registered schemas
func (r *Registry) ValidateAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	relValidator := NewRelationshipValidator(r.schemas)
	if err := relValidator.Validate(); err != nil {
		return fmt.Errorf("relationship validation failed: %w", err)
	}

	return nil
}

// ManagerRegistry holds the registries of every configured backend, in priority order
type ManagerRegistry struct {
	registries []*Registry
}

// NewManagerRegistry creates a manager registry over the given backend registries
func NewManagerRegistry(registries ...*Registry) *ManagerRegistry {
	return &ManagerRegistry{registries: registries}
}

// Add appends a backend registry
func (m *ManagerRegistry) Add(registry *Registry) {
	m.registries = append(m.registries, registry)
}

// ManagerForClass returns the first registry managing class, or nil when no backend owns it
func (m *ManagerRegistry) ManagerForClass(class string) *Registry {
	if m == nil {
		return nil
	}
	for _, registry := range m.registries {
		if registry.Exists(class) {
			return registry
		}
	}
	return nil
}

// Manager returns the registry of the named backend
func (m *ManagerRegistry) Manager(backend string) (*Registry, bool) {
	if m == nil {
		return nil, false
	}
	for _, registry := range m.registries {
		if registry.Backend() == backend {
			return registry, true
		}
	}
	return nil, false
}

// Registries returns the backend registries in priority order
func (m *ManagerRegistry) Registries() []*Registry {
	if m == nil {
		return nil
	}
	out := make([]*Registry, len(m.registries))
	copy(out, m.registries)
	return out
}

// PropertyNames returns the property names of class from the backend owning it
func (m *ManagerRegistry) PropertyNames(class string) ([]string, error) {
	registry := m.ManagerForClass(class)
	if registry == nil {
		return nil, nil
	}
	return registry.PropertyNames(class)
}
