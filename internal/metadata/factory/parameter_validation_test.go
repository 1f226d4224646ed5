package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcemeta/internal/metadata/filter"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestDeriveConstraints(t *testing.T) {
	tests := []struct {
		name      string
		parameter resource.Parameter
		expected  []resource.Constraint
	}{
		{
			name:      "minimum and maximum keep order",
			parameter: resource.NewParameter("price").WithSchema(map[string]any{"minimum": 5, "maximum": 10}),
			expected: []resource.Constraint{
				{Kind: resource.ConstraintGreaterThanOrEqual, Value: 5},
				{Kind: resource.ConstraintLessThanOrEqual, Value: 10},
			},
		},
		{
			name:      "exclusive bounds",
			parameter: resource.NewParameter("price").WithSchema(map[string]any{"exclusiveMinimum": 0, "exclusiveMaximum": 1.5}),
			expected: []resource.Constraint{
				{Kind: resource.ConstraintGreaterThan, Value: 0},
				{Kind: resource.ConstraintLessThan, Value: 1.5},
			},
		},
		{
			name:      "boolean exclusive flags qualify minimum and maximum",
			parameter: resource.NewParameter("price").WithSchema(map[string]any{"minimum": 1, "exclusiveMinimum": true, "maximum": 9}),
			expected: []resource.Constraint{
				{Kind: resource.ConstraintGreaterThan, Value: 1},
				{Kind: resource.ConstraintLessThanOrEqual, Value: 9},
			},
		},
		{
			name:      "required",
			parameter: resource.NewParameter("q").WithRequired(true),
			expected:  []resource.Constraint{{Kind: resource.ConstraintNotNull}},
		},
		{
			name: "required without empty value",
			parameter: resource.NewParameter("q").WithRequired(true).
				WithOpenAPI(&resource.OpenAPIParameter{AllowEmptyValue: boolPtr(false)}),
			expected: []resource.Constraint{{Kind: resource.ConstraintNotBlank}},
		},
		{
			name:      "optional without empty value",
			parameter: resource.NewParameter("q").WithOpenAPI(&resource.OpenAPIParameter{AllowEmptyValue: boolPtr(false)}),
			expected:  []resource.Constraint{{Kind: resource.ConstraintNotBlank, AllowNull: true}},
		},
		{
			name:      "pattern and lengths",
			parameter: resource.NewParameter("code").WithSchema(map[string]any{"pattern": "^[A-Z]+$", "minLength": 2, "maxLength": 4}),
			expected: []resource.Constraint{
				{Kind: resource.ConstraintRegex, Value: "^[A-Z]+$"},
				{Kind: resource.ConstraintLength, Min: intPtr(2), Max: intPtr(4)},
			},
		},
		{
			name: "array keywords",
			parameter: resource.NewParameter("tags").WithSchema(map[string]any{
				"type":        "array",
				"minItems":    1,
				"uniqueItems": true,
				"multipleOf":  2,
			}),
			expected: []resource.Constraint{
				{Kind: resource.ConstraintCount, Min: intPtr(1)},
				{Kind: resource.ConstraintDivisibleBy, Value: 2},
				{Kind: resource.ConstraintUnique},
				{Kind: resource.ConstraintType, Value: "array"},
			},
		},
		{
			name:      "whole float counts",
			parameter: resource.NewParameter("code").WithSchema(map[string]any{"minLength": 2.0, "maxItems": 3.0}),
			expected: []resource.Constraint{
				{Kind: resource.ConstraintLength, Min: intPtr(2)},
				{Kind: resource.ConstraintCount, Max: intPtr(3)},
			},
		},
		{
			name:      "fractional counts are ignored",
			parameter: resource.NewParameter("code").WithSchema(map[string]any{"minLength": 2.5, "maxItems": 0.5}),
			expected:  nil,
		},
		{
			name:      "enum",
			parameter: resource.NewParameter("order").WithSchema(map[string]any{"enum": []any{"asc", "desc"}}),
			expected:  []resource.Constraint{{Kind: resource.ConstraintChoice, Choices: []any{"asc", "desc"}}},
		},
		{
			name:      "nothing to derive",
			parameter: resource.NewParameter("q").WithSchema(map[string]any{"type": "string", "uniqueItems": false}),
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveConstraints(tt.parameter))
		})
	}
}

func TestParameterValidationFactory_Constraints(t *testing.T) {
	custom := []resource.Constraint{{Kind: resource.ConstraintLessThan, Value: 3}}
	op := resource.NewOperation(resource.KindGetCollection).WithParameters(resource.NewParameters(
		resource.NewParameter("page").WithSchema(map[string]any{"minimum": 1}),
		resource.NewParameter("limit").WithSchema(map[string]any{"maximum": 100}).WithConstraints(custom),
		resource.NewParameter("q"),
	))

	f := NewParameterValidationFactory(stub("Book", op), filter.NewLocator(), nil)
	collection, err := f.Create(context.Background(), "Book")
	require.NoError(t, err)

	list, _ := collection.Operation("get_collection")
	params := list.Parameters()

	page, _ := params.Get("page")
	assert.Equal(t, []resource.Constraint{{Kind: resource.ConstraintGreaterThanOrEqual, Value: 1}}, page.Constraints())

	limit, _ := params.Get("limit")
	assert.Equal(t, custom, limit.Constraints(), "existing constraints are kept")

	q, _ := params.Get("q")
	assert.False(t, q.HasConstraints(), "no constraints leaves the parameter unevaluated")
	assert.Nil(t, q.Constraints())
}

func TestParameterValidationFactory_LegacyFilters(t *testing.T) {
	locator := filter.NewLocator()
	require.NoError(t, locator.Register("book.search", filter.NewSearchFilter([]string{"title", "isbn"}, nil)))
	require.NoError(t, locator.Register("book.order", filter.NewOrderFilter("", []string{"title"})))
	require.NoError(t, locator.Register("book.fulltext", filter.NewStaticFilter([]filter.Description{
		{Key: "q", Required: true, Schema: map[string]any{"type": "string", "minLength": 3}},
	}, nil)))

	op := resource.NewOperation(resource.KindGetCollection).
		WithFilters([]string{"book.search", "book.unknown", "book.order", "book.fulltext"})

	f := NewParameterValidationFactory(stub("Book", op), locator, nil)
	collection, err := f.Create(context.Background(), "Book")
	require.NoError(t, err)

	list, _ := collection.Operation("get_collection")
	params := list.Parameters().All()

	keys := make([]string, 0, len(params))
	priorities := make([]int, 0, len(params))
	for _, p := range params {
		keys = append(keys, p.Key())
		priorities = append(priorities, p.Priority())
	}
	assert.Equal(t, []string{"title", "isbn", "order[title]", "q"}, keys)
	assert.Equal(t, []int{-1, -2, -3, -4}, priorities)

	title := params[0]
	assert.Equal(t, "title", title.Property())
	assert.Equal(t, "book.search", title.Filter())
	assert.Equal(t, "", title.FilterClass())

	order := params[2]
	assert.Equal(t, []resource.Constraint{{Kind: resource.ConstraintChoice, Choices: []any{"asc", "desc"}}}, order.Constraints())

	q := params[3]
	require.NotNil(t, q.OpenAPI())
	assert.Equal(t, "query", q.OpenAPI().In)
	assert.Equal(t, []resource.Constraint{
		{Kind: resource.ConstraintNotBlank},
		{Kind: resource.ConstraintLength, Min: intPtr(3)},
	}, q.Constraints())
}

func TestParameterValidationFactory_DeclaredParametersWin(t *testing.T) {
	locator := filter.NewLocator()
	require.NoError(t, locator.Register("book.search", filter.NewSearchFilter([]string{"title"}, nil)))

	op := resource.NewOperation(resource.KindGetCollection).
		WithFilters([]string{"book.search"}).
		WithParameters(resource.NewParameters(resource.NewParameter("author")))

	f := NewParameterValidationFactory(stub("Book", op), locator, nil)
	collection, err := f.Create(context.Background(), "Book")
	require.NoError(t, err)

	list, _ := collection.Operation("get_collection")
	assert.Equal(t, 1, list.Parameters().Len())
	assert.True(t, list.Parameters().Has("author"))
}
