package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a schema validation error with context
type ValidationError struct {
	Resource string
	Field    string
	Message  string
	Hint     string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder

	if e.Resource != "" {
		b.WriteString(e.Resource)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	if e.Hint != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// SchemaValidator validates resource schemas
type SchemaValidator struct{}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// ValidateStructural validates a single schema without cross-class checks
func (v *SchemaValidator) ValidateStructural(schema *ResourceSchema) error {
	var errs []error

	if schema.Name == "" {
		errs = append(errs, &ValidationError{Message: "class name is required"})
	}

	for _, id := range schema.Identifiers {
		if !schema.HasField(id) {
			errs = append(errs, &ValidationError{
				Resource: schema.Name,
				Field:    id,
				Message:  "identifier is not a mapped field",
				Hint:     fmt.Sprintf("Add %s to the fields of %s", id, schema.Name),
			})
		}
	}

	for name, rel := range schema.Relationships {
		if rel.TargetResource == "" {
			errs = append(errs, &ValidationError{
				Resource: schema.Name,
				Field:    name,
				Message:  "relationship has no target class",
			})
		}
		if schema.HasField(name) {
			errs = append(errs, &ValidationError{
				Resource: schema.Name,
				Field:    name,
				Message:  "name is used by both a field and a relationship",
			})
		}
		if rel.Type == RelationshipBelongsTo && rel.MappedBy != "" {
			errs = append(errs, &ValidationError{
				Resource: schema.Name,
				Field:    name,
				Message:  "belongs_to is the owning side and cannot be mapped by another field",
				Hint:     "Use inversed_by on the owning side",
			})
		}
	}

	return errors.Join(errs...)
}
