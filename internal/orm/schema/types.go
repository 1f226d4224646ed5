// Package schema provides class metadata for the persistence backends: which classes a
// backend manages, their identifiers, fields and associations, and whether they are
// read-only. A Registry plays the role of one backend's object manager.
package schema

import (
	"fmt"
	"sort"

	utilstrings "github.com/conduit-lang/resourcemeta/internal/util/strings"
)

// PrimitiveType represents the built-in field types a backend can map
type PrimitiveType int

const (
	// Text types
	TypeString PrimitiveType = iota
	TypeText

	// Numeric types
	TypeInt
	TypeBigInt
	TypeFloat
	TypeDecimal

	// Boolean
	TypeBool

	// Time types
	TypeTimestamp
	TypeDate
	TypeTime

	// Unique identifiers
	TypeUUID

	// JSON types
	TypeJSON

	// Enum
	TypeEnum
)

// String returns the string representation of the primitive type
func (p PrimitiveType) String() string {
	switch p {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeDecimal:
		return "decimal"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeDate:
		return "date"
	case TypeTime:
		return "time"
	case TypeUUID:
		return "uuid"
	case TypeJSON:
		return "json"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParsePrimitiveType converts a string to a PrimitiveType
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	switch s {
	case "string", "":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "int", "integer":
		return TypeInt, nil
	case "bigint":
		return TypeBigInt, nil
	case "float":
		return TypeFloat, nil
	case "decimal":
		return TypeDecimal, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "timestamp", "datetime":
		return TypeTimestamp, nil
	case "date":
		return TypeDate, nil
	case "time":
		return TypeTime, nil
	case "uuid":
		return TypeUUID, nil
	case "json":
		return TypeJSON, nil
	case "enum":
		return TypeEnum, nil
	default:
		return 0, fmt.Errorf("unknown primitive type: %s", s)
	}
}

// JSONSchemaType returns the JSON-Schema type keyword used when a filter documents the field
func (p PrimitiveType) JSONSchemaType() string {
	switch p {
	case TypeInt, TypeBigInt:
		return "integer"
	case TypeFloat, TypeDecimal:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeJSON:
		return "object"
	default:
		return "string"
	}
}

// IsNumeric returns true if the type is a numeric type
func (p PrimitiveType) IsNumeric() bool {
	return p == TypeInt || p == TypeBigInt || p == TypeFloat || p == TypeDecimal
}

// IsTemporal returns true if the type holds a date or time
func (p PrimitiveType) IsTemporal() bool {
	return p == TypeTimestamp || p == TypeDate || p == TypeTime
}

// Field represents a mapped scalar field
type Field struct {
	Name       string
	Type       PrimitiveType
	Nullable   bool
	EnumValues []string
}

// RelationType represents the type of relationship
type RelationType int

const (
	RelationshipBelongsTo RelationType = iota
	RelationshipHasMany
	RelationshipHasManyThrough
	RelationshipHasOne
)

// String returns the string representation of the relationship type
func (r RelationType) String() string {
	switch r {
	case RelationshipBelongsTo:
		return "belongs_to"
	case RelationshipHasMany:
		return "has_many"
	case RelationshipHasManyThrough:
		return "has_many_through"
	case RelationshipHasOne:
		return "has_one"
	default:
		return "unknown"
	}
}

// ParseRelationType converts a string to a RelationType
func ParseRelationType(s string) (RelationType, error) {
	switch s {
	case "belongs_to":
		return RelationshipBelongsTo, nil
	case "has_many":
		return RelationshipHasMany, nil
	case "has_many_through":
		return RelationshipHasManyThrough, nil
	case "has_one":
		return RelationshipHasOne, nil
	default:
		return 0, fmt.Errorf("unknown relationship type: %s", s)
	}
}

// IsToMany reports whether the association holds several targets
func (r RelationType) IsToMany() bool {
	return r == RelationshipHasMany || r == RelationshipHasManyThrough
}

// Relationship represents an association between classes.
// belongs_to is always the owning side; has_many and has_one are the inverse side of a
// belongs_to on the target; has_many_through is owning unless MappedBy is set.
type Relationship struct {
	Type           RelationType
	TargetResource string
	FieldName      string
	Nullable       bool

	// Foreign key configuration
	ForeignKey string

	// Bidirectional mapping: MappedBy is set on the inverse side and names the owning
	// field on the target; InversedBy is set on the owning side.
	MappedBy   string
	InversedBy string

	// For has_many_through
	JoinTable string
}

// ResourceSchema holds the mapping metadata of one persistent class
type ResourceSchema struct {
	Name        string
	Identifiers []string

	Fields        map[string]*Field
	Relationships map[string]*Relationship

	// ReadOnly is set for classes mapped on views or declared immutable
	ReadOnly bool

	TableName string

	// properties keeps declaration order for PropertyNames
	properties []string
}

// NewResourceSchema creates a new ResourceSchema
func NewResourceSchema(name string) *ResourceSchema {
	return &ResourceSchema{
		Name:          name,
		Fields:        make(map[string]*Field),
		Relationships: make(map[string]*Relationship),
		TableName:     utilstrings.ToSnakeCase(utilstrings.ShortName(name)),
	}
}

// AddField adds a scalar field, keeping declaration order
func (r *ResourceSchema) AddField(field *Field) {
	if !r.HasField(field.Name) && !r.HasRelationship(field.Name) {
		r.properties = append(r.properties, field.Name)
	}
	r.Fields[field.Name] = field
}

// AddRelationship adds an association, keeping declaration order
func (r *ResourceSchema) AddRelationship(rel *Relationship) {
	if !r.HasField(rel.FieldName) && !r.HasRelationship(rel.FieldName) {
		r.properties = append(r.properties, rel.FieldName)
	}
	r.Relationships[rel.FieldName] = rel
}

// PropertyNames returns fields and associations in declaration order. Entries added
// directly to the maps come last, sorted by name.
func (r *ResourceSchema) PropertyNames() []string {
	names := make([]string, 0, len(r.Fields)+len(r.Relationships))
	seen := make(map[string]bool, cap(names))
	for _, name := range r.properties {
		if r.HasField(name) || r.HasRelationship(name) {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range r.Fields {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	for name := range r.Relationships {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// GetIdentifiers returns the identifier fields, defaulting to "id"
func (r *ResourceSchema) GetIdentifiers() []string {
	if len(r.Identifiers) == 0 {
		return []string{"id"}
	}
	out := make([]string, len(r.Identifiers))
	copy(out, r.Identifiers)
	return out
}

// HasField returns true if the resource has a field with the given name
func (r *ResourceSchema) HasField(name string) bool {
	_, exists := r.Fields[name]
	return exists
}

// HasRelationship returns true if the resource has a relationship with the given name
func (r *ResourceSchema) HasRelationship(name string) bool {
	_, exists := r.Relationships[name]
	return exists
}
