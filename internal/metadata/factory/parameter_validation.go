package factory

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/resourcemeta/internal/metadata/filter"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// ParameterValidationFactory derives validation constraints from parameter schemas
// and migrates legacy filters to parameters
type ParameterValidationFactory struct {
	next    Factory
	filters *filter.Locator
	logger  *zap.Logger
}

// NewParameterValidationFactory creates a parameter validation factory decorating next
func NewParameterValidationFactory(next Factory, filters *filter.Locator, logger *zap.Logger) *ParameterValidationFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParameterValidationFactory{next: next, filters: filters, logger: logger}
}

// WithParameterValidation returns a decorator adding a ParameterValidationFactory to a chain
func WithParameterValidation(filters *filter.Locator, logger *zap.Logger) Decorator {
	return func(next Factory) Factory {
		return NewParameterValidationFactory(next, filters, logger)
	}
}

// Create implements Factory
func (f *ParameterValidationFactory) Create(ctx context.Context, resourceClass string) (*resource.Collection, error) {
	collection, err := f.next.Create(ctx, resourceClass)
	if err != nil {
		return nil, err
	}

	err = MapOperations(collection, func(_ resource.Resource, op resource.Operation) (resource.Operation, bool, error) {
		return f.resolveParameters(op), true, nil
	})
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (f *ParameterValidationFactory) resolveParameters(op resource.Operation) resource.Operation {
	params := op.Parameters()
	if params.Len() == 0 && len(op.Filters()) > 0 {
		params = f.parametersFromFilters(op)
	}
	if params == nil {
		return op
	}

	for _, p := range params.All() {
		if p.HasConstraints() {
			continue
		}
		params.Add(p.WithConstraints(DeriveConstraints(p)))
	}
	return op.WithParameters(params)
}

// parametersFromFilters creates one parameter per filter description entry. Array
// notation keys are skipped and the property placeholder is expanded once per
// supported property. Priorities start at -1 and decrease so that filter parameters
// sort after declared ones.
func (f *ParameterValidationFactory) parametersFromFilters(op resource.Operation) *resource.Parameters {
	params := resource.NewParameters()
	priority := -1

	for _, id := range op.Filters() {
		flt, ok := f.filters.Get(id)
		if !ok {
			f.logger.Debug("skipping unknown filter",
				zap.String("class", op.Class()),
				zap.String("operation", op.Name()),
				zap.String("filter", id),
			)
			continue
		}

		for _, d := range flt.Description(op.Class()) {
			if strings.HasSuffix(d.Key, "[]") {
				continue
			}

			if !strings.Contains(d.Key, filter.PropertyPlaceholder) {
				if !params.Has(d.Key) {
					params.Add(filterParameter(id, d.Key, d.Property, d, priority))
					priority--
				}
				continue
			}

			for _, property := range flt.Properties() {
				key := strings.ReplaceAll(d.Key, filter.PropertyPlaceholder, property)
				if params.Has(key) {
					continue
				}
				mapped := strings.ReplaceAll(d.Property, filter.PropertyPlaceholder, property)
				params.Add(filterParameter(id, key, mapped, d, priority))
				priority--
			}
		}
	}

	if params.Len() == 0 {
		return nil
	}
	return params
}

func filterParameter(filterID, key, property string, d filter.Description, priority int) resource.Parameter {
	p := resource.NewParameter(key).
		WithProperty(property).
		WithSchema(d.Schema).
		WithRequired(d.Required).
		WithFilter(filterID).
		WithPriority(priority)

	switch {
	case d.OpenAPI != nil:
		p = p.WithOpenAPI(d.OpenAPI)
	case d.Required:
		allowEmpty := false
		p = p.WithOpenAPI(&resource.OpenAPIParameter{Name: key, In: "query", AllowEmptyValue: &allowEmpty})
	}
	return p
}

// DeriveConstraints maps the schema keywords and flags of a parameter to validation
// constraints. It returns nil when no constraint applies.
func DeriveConstraints(p resource.Parameter) []resource.Constraint {
	var constraints []resource.Constraint
	schema := p.Schema()

	var allowEmptyValue *bool
	if openAPI := p.OpenAPI(); openAPI != nil {
		allowEmptyValue = openAPI.AllowEmptyValue
	}

	if p.Required() && (allowEmptyValue == nil || *allowEmptyValue) {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintNotNull})
	}
	if allowEmptyValue != nil && !*allowEmptyValue {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintNotBlank, AllowNull: !p.Required()})
	}

	// exclusiveMinimum and exclusiveMaximum are numbers, or booleans qualifying
	// minimum and maximum in the older draft
	exclusiveMin, exclusiveMax := false, false
	if v, ok := schema["exclusiveMinimum"]; ok {
		if b, isBool := v.(bool); isBool {
			exclusiveMin = b
		} else if isNumber(v) {
			constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintGreaterThan, Value: v})
		}
	}
	if v, ok := schema["exclusiveMaximum"]; ok {
		if b, isBool := v.(bool); isBool {
			exclusiveMax = b
		} else if isNumber(v) {
			constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintLessThan, Value: v})
		}
	}
	if v, ok := schema["minimum"]; ok && isNumber(v) {
		kind := resource.ConstraintGreaterThanOrEqual
		if exclusiveMin {
			kind = resource.ConstraintGreaterThan
		}
		constraints = append(constraints, resource.Constraint{Kind: kind, Value: v})
	}
	if v, ok := schema["maximum"]; ok && isNumber(v) {
		kind := resource.ConstraintLessThanOrEqual
		if exclusiveMax {
			kind = resource.ConstraintLessThan
		}
		constraints = append(constraints, resource.Constraint{Kind: kind, Value: v})
	}

	if v, ok := schema["pattern"].(string); ok && v != "" {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintRegex, Value: v})
	}

	if minLength, maxLength := intKeyword(schema, "minLength"), intKeyword(schema, "maxLength"); minLength != nil || maxLength != nil {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintLength, Min: minLength, Max: maxLength})
	}
	if minItems, maxItems := intKeyword(schema, "minItems"), intKeyword(schema, "maxItems"); minItems != nil || maxItems != nil {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintCount, Min: minItems, Max: maxItems})
	}

	if v, ok := schema["multipleOf"]; ok && isNumber(v) {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintDivisibleBy, Value: v})
	}

	if unique, ok := schema["uniqueItems"].(bool); ok && unique {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintUnique})
	}

	if choices, ok := schema["enum"].([]any); ok && len(choices) > 0 {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintChoice, Choices: choices})
	}

	if typ, ok := schema["type"].(string); ok && typ == "array" {
		constraints = append(constraints, resource.Constraint{Kind: resource.ConstraintType, Value: "array"})
	}

	return constraints
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// intKeyword reads a count keyword; values that are not whole numbers are ignored
func intKeyword(schema map[string]any, key string) *int {
	switch v := schema[key].(type) {
	case int:
		return &v
	case int64:
		n := int(v)
		return &n
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil
		}
		n := int(v)
		return &n
	}
	return nil
}
