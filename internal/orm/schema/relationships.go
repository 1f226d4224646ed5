package schema

import (
	"errors"
	"fmt"
	"sort"
)

// mappedBy resolves the owning field for an inverse-side association.
// An explicit MappedBy wins; has_many and has_one fall back to the belongs_to on the
// target class that points back at the source class (matching foreign keys when both
// sides declare one).
func mappedBy(source *ResourceSchema, rel *Relationship, schemas map[string]*ResourceSchema) string {
	if rel.MappedBy != "" {
		return rel.MappedBy
	}
	if rel.Type != RelationshipHasMany && rel.Type != RelationshipHasOne {
		return ""
	}

	target, ok := schemas[rel.TargetResource]
	if !ok {
		return ""
	}

	candidates := make([]string, 0, 1)
	for name, back := range target.Relationships {
		if back.Type != RelationshipBelongsTo || back.TargetResource != source.Name {
			continue
		}
		if rel.ForeignKey != "" && back.ForeignKey != "" && rel.ForeignKey != back.ForeignKey {
			continue
		}
		if back.InversedBy != "" && back.InversedBy != rel.FieldName {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return candidates[0]
}

// RelationshipValidator validates relationships across resources
type RelationshipValidator struct {
	schemas map[string]*ResourceSchema
	errors  []error
}

// NewRelationshipValidator creates a new relationship validator
func NewRelationshipValidator(schemas map[string]*ResourceSchema) *RelationshipValidator {
	return &RelationshipValidator{
		schemas: schemas,
		errors:  make([]error, 0),
	}
}

// Validate checks that targets exist and that mappedBy fields point back at the source
func (v *RelationshipValidator) Validate() error {
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		schema := v.schemas[name]
		for _, relName := range schema.PropertyNames() {
			rel, ok := schema.Relationships[relName]
			if !ok {
				continue
			}
			target, exists := v.schemas[rel.TargetResource]
			if !exists {
				v.errors = append(v.errors, fmt.Errorf("%s.%s references unknown class %s",
					schema.Name, rel.FieldName, rel.TargetResource))
				continue
			}
			if rel.MappedBy == "" {
				continue
			}
			back, ok := target.Relationships[rel.MappedBy]
			if !ok {
				v.errors = append(v.errors, fmt.Errorf("%s.%s is mapped by unknown association %s.%s",
					schema.Name, rel.FieldName, target.Name, rel.MappedBy))
				continue
			}
			if back.TargetResource != schema.Name {
				v.errors = append(v.errors, fmt.Errorf("%s.%s is mapped by %s.%s which targets %s",
					schema.Name, rel.FieldName, target.Name, rel.MappedBy, back.TargetResource))
			}
		}
	}

	if len(v.errors) > 0 {
		return errors.Join(v.errors...)
	}

	return nil
}

// Errors returns all validation errors
func (v *RelationshipValidator) Errors() []error {
	return v.errors
}
