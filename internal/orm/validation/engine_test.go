package validation

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

func collectionOperation(params ...resource.Parameter) resource.Operation {
	return resource.NewOperation(resource.KindGetCollection).
		WithClass("Book").
		WithParameters(resource.NewParameters(params...))
}

func constrained(key string, constraints ...resource.Constraint) resource.Parameter {
	return resource.NewParameter(key).WithConstraints(constraints)
}

func violations(t *testing.T, err error) map[string][]string {
	t.Helper()

	ve, ok := AsValidationErrors(err)
	require.True(t, ok, "expected *ValidationErrors, got %v", err)
	return ve.Fields
}

func TestEngine_Validate(t *testing.T) {
	op := collectionOperation(
		constrained("page", resource.Constraint{Kind: resource.ConstraintGreaterThanOrEqual, Value: 1}),
		constrained("q",
			resource.Constraint{Kind: resource.ConstraintNotBlank},
			resource.Constraint{Kind: resource.ConstraintLength, Min: intPtr(3)},
		),
		constrained("isbn", resource.Constraint{Kind: resource.ConstraintRegex, Value: `^\d{13}$`}),
		resource.NewParameter("author"),
	)

	engine := NewEngine(nil)

	t.Run("valid request", func(t *testing.T) {
		query := url.Values{"page": {"2"}, "q": {"hobbit"}, "author": {""}}
		assert.NoError(t, engine.Validate(context.Background(), op, query, nil))
	})

	t.Run("violations are aggregated", func(t *testing.T) {
		query := url.Values{"page": {"0"}, "q": {"ab"}, "isbn": {"x"}}
		fields := violations(t, engine.Validate(context.Background(), op, query, nil))

		assert.Equal(t, map[string][]string{
			"page": {"must be at least 1"},
			"q":    {"must be at least 3 characters long"},
			"isbn": {"does not match required pattern"},
		}, fields)
	})

	t.Run("presence constraints stop evaluation", func(t *testing.T) {
		fields := violations(t, engine.Validate(context.Background(), op, url.Values{}, nil))
		assert.Equal(t, map[string][]string{"q": {"should not be blank"}}, fields)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, engine.Validate(ctx, op, url.Values{}, nil), context.Canceled)
	})
}

func TestEngine_PropertyPlaceholderKeys(t *testing.T) {
	op := collectionOperation(
		constrained("order[:property]", resource.Constraint{Kind: resource.ConstraintChoice, Choices: []any{"asc", "desc"}}),
	)
	engine := NewEngine(nil)

	query := url.Values{
		"order[title]":       {"asc"},
		"order[publishedAt]": {"sideways"},
		"orderBy":            {"title"},
	}
	fields := violations(t, engine.Validate(context.Background(), op, query, nil))
	assert.Equal(t, map[string][]string{"order[publishedAt]": {"must be one of asc, desc"}}, fields)

	assert.NoError(t, engine.Validate(context.Background(), op, url.Values{}, nil))
}

func TestEngine_ArrayParameters(t *testing.T) {
	op := collectionOperation(
		constrained("tags",
			resource.Constraint{Kind: resource.ConstraintCount, Max: intPtr(2)},
			resource.Constraint{Kind: resource.ConstraintUnique},
			resource.Constraint{Kind: resource.ConstraintType, Value: "array"},
		),
	)
	engine := NewEngine(nil)

	assert.NoError(t, engine.Validate(context.Background(), op, url.Values{"tags[]": {"fantasy"}}, nil))
	assert.NoError(t, engine.Validate(context.Background(), op, url.Values{"tags": {"fantasy", "epic"}}, nil))

	fields := violations(t, engine.Validate(context.Background(), op, url.Values{"tags[]": {"a", "b", "a"}}, nil))
	assert.Equal(t, []string{"must contain at most 2 items", `contains duplicate value "a"`}, fields["tags"])

	fields = violations(t, engine.Validate(context.Background(), op, url.Values{"tags": {"fantasy"}}, nil))
	assert.Equal(t, []string{"must be an array"}, fields["tags"])
}

func TestEngine_URIVariables(t *testing.T) {
	op := resource.NewOperation(resource.KindGet).WithParameters(resource.NewParameters(
		constrained("id", resource.Constraint{Kind: resource.ConstraintGreaterThan, Value: 0}).
			WithLocation(resource.LocationURIVariable),
	))
	engine := NewEngine(nil)

	assert.NoError(t, engine.Validate(context.Background(), op, nil, map[string]string{"id": "7"}))

	fields := violations(t, engine.Validate(context.Background(), op, url.Values{"id": {"7"}}, map[string]string{"id": "-1"}))
	assert.Equal(t, []string{"must be greater than 0"}, fields["id"])
}

func TestEngine_CompositeIdentifiers(t *testing.T) {
	op := resource.NewOperation(resource.KindGet).WithClass("Shelf").WithURIVariables([]resource.Link{{
		ParameterName:       "id",
		FromClass:           "Shelf",
		Identifiers:         []string{"room", "position"},
		CompositeIdentifier: true,
	}})
	engine := NewEngine(nil)

	assert.NoError(t, engine.Validate(context.Background(), op, nil, map[string]string{"id": "room=b;position=3"}))
	assert.NoError(t, engine.Validate(context.Background(), op, nil, nil))

	fields := violations(t, engine.Validate(context.Background(), op, nil, map[string]string{"id": "room=b"}))
	require.Len(t, fields["id"], 1)
	assert.Contains(t, fields["id"][0], `"position" was not found`)

	fields = violations(t, engine.Validate(context.Background(), op, nil, map[string]string{"id": "3"}))
	assert.Contains(t, fields["id"][0], "invalid identifier")

	single := resource.NewOperation(resource.KindGet).WithURIVariables([]resource.Link{{ParameterName: "id", Identifiers: []string{"id"}}})
	assert.NoError(t, engine.Validate(context.Background(), single, nil, map[string]string{"id": "room=b"}))
}

func TestEngine_CustomMessageAndInvalidPattern(t *testing.T) {
	engine := NewEngine(nil)

	p := constrained("code",
		resource.Constraint{Kind: resource.ConstraintRegex, Value: "("},
		resource.Constraint{Kind: resource.ConstraintLength, Max: intPtr(2), Message: "code is too long"},
	)
	op := collectionOperation(p, resource.NewParameter("free"))

	fields := violations(t, engine.Validate(context.Background(), op, url.Values{"code": {"abc"}, "free": {"anything"}}, nil))
	require.Len(t, fields["code"], 2)
	assert.Contains(t, fields["code"][0], "invalid pattern")
	assert.Equal(t, "code is too long", fields["code"][1])
	assert.NotContains(t, fields, "free")
}
