package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcemeta/internal/metadata/declaration"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

func parseSource(t *testing.T, raw string) *declaration.Source {
	t.Helper()

	doc, err := declaration.Parse([]byte(raw))
	require.NoError(t, err)
	set, err := declaration.Build(doc)
	require.NoError(t, err)
	return set.Source
}

func TestBaseFactory_DefaultOperations(t *testing.T) {
	source := parseSource(t, `
resources:
  App\Entity\BookReview:
    - {}
`)
	collection, err := NewBaseFactory(source, nil).Create(context.Background(), `App\Entity\BookReview`)
	require.NoError(t, err)
	require.Equal(t, 1, collection.Len())

	r := collection.At(0)
	assert.Equal(t, "BookReview", r.ShortName)
	assert.Equal(t, []string{"get", "get_collection", "post", "put", "patch", "delete"}, r.Operations.Names())
	assert.Nil(t, r.GraphQLOperations)

	get, _ := r.Operations.Get("get")
	assert.Equal(t, "/book_reviews/{id}", get.URITemplate())
	assert.Equal(t, `App\Entity\BookReview`, get.Class())
	assert.Equal(t, "", get.Provider())

	list, _ := r.Operations.Get("get_collection")
	assert.Equal(t, "/book_reviews", list.URITemplate())
	assert.Equal(t, "GET", list.Method())
}

func TestBaseFactory_ResourceNotFound(t *testing.T) {
	source := parseSource(t, "resources:\n  Book: [{}]\n")

	_, err := NewBaseFactory(source, nil).Create(context.Background(), "Publisher")
	require.Error(t, err)
	assert.True(t, resource.IsResourceClassNotFound(err))
}

func TestBaseFactory_OperationKinds(t *testing.T) {
	tests := []struct {
		name     string
		decl     declaration.Operation
		expected resource.OperationKind
		wantErr  error
	}{
		{"explicit type", declaration.Operation{Type: "Patch"}, resource.KindPatch, nil},
		{"get without identifiers", declaration.Operation{Method: "get"}, resource.KindGetCollection, nil},
		{"get with uri template variable", declaration.Operation{Method: "GET", URITemplate: "/books/{isbn}"}, resource.KindGet, nil},
		{"get with uri variables", declaration.Operation{Method: "GET", URIVariables: []declaration.Link{{ParameterName: "id"}}}, resource.KindGet, nil},
		{"post", declaration.Operation{Method: "POST"}, resource.KindPost, nil},
		{"delete", declaration.Operation{Method: "DELETE"}, resource.KindDelete, nil},
		{"route name only", declaration.Operation{RouteName: "book_export"}, resource.KindGetCollection, nil},
		{"nothing declared", declaration.Operation{}, 0, resource.ErrMisconfiguredOperation},
		{"unsupported method", declaration.Operation{Method: "OPTIONS"}, 0, resource.ErrMisconfiguredOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := operationKind(tt.decl)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestBaseFactory_InheritsResourceDefaults(t *testing.T) {
	source := parseSource(t, `
resources:
  Book:
    - provider: app.book_provider
      filters: [book.search]
      paginationEnabled: false
      itemsPerPage: 10
      compositeIdentifier: false
      extraProperties: {standard_put: true}
      stateOptions: {backend: orm, class: BookEntity}
      links:
        - {fromProperty: author, toClass: Author}
      operations:
        - type: GetCollection
          filters: []
          itemsPerPage: 50
          order:
            - {property: title, direction: desc}
        - type: Get
          provider: app.single_book_provider
          extraProperties: {standard_put: false}
          parameters:
            locale:
              schema: {type: string, enum: [en, fr]}
              required: true
              openapi: {allowEmptyValue: false}
            id:
              in: path
`)
	collection, err := NewBaseFactory(source, nil).Create(context.Background(), "Book")
	require.NoError(t, err)

	list, err := collection.Operation("get_collection")
	require.NoError(t, err)
	assert.Equal(t, "app.book_provider", list.Provider())
	assert.Empty(t, list.Filters(), "an explicit empty list overrides the resource filters")
	assert.Equal(t, 50, list.ItemsPerPage())
	assert.Equal(t, []resource.OrderBy{{Property: "title", Direction: "DESC"}}, list.Order())
	require.NotNil(t, list.PaginationEnabled())
	assert.False(t, *list.PaginationEnabled())
	assert.Equal(t, resource.ORMOptions{EntityClass: "BookEntity"}, list.StateOptions())
	require.Len(t, list.Links(), 1)
	assert.Equal(t, "Author", list.Links()[0].ToClass)

	get, err := collection.Operation("get")
	require.NoError(t, err)
	assert.Equal(t, "app.single_book_provider", get.Provider())
	assert.Equal(t, []string{"book.search"}, get.Filters())
	assert.Equal(t, 10, get.ItemsPerPage())

	standardPut, _ := get.ExtraProperty("standard_put")
	assert.Equal(t, false, standardPut)
	composite, _ := get.ExtraProperty(ExtraCompositeIdentifier)
	assert.Equal(t, false, composite)

	params := get.Parameters()
	require.Equal(t, 2, params.Len())
	locale, ok := params.Get("locale")
	require.True(t, ok)
	assert.True(t, locale.Required())
	assert.False(t, locale.HasConstraints())
	require.NotNil(t, locale.OpenAPI().AllowEmptyValue)

	id, _ := params.Get("id")
	assert.Equal(t, resource.LocationURIVariable, id.Location())
}

func TestBaseFactory_OperationNames(t *testing.T) {
	t.Run("collision falls back to the route form", func(t *testing.T) {
		source := parseSource(t, `
resources:
  Book:
    - operations:
        - type: Get
        - type: Get
          uriTemplate: /books/{id}/preview
`)
		collection, err := NewBaseFactory(source, nil).Create(context.Background(), "Book")
		require.NoError(t, err)
		assert.Equal(t, []string{"get", "_api_/books/{id}/preview_get"}, collection.At(0).Operations.Names())
	})

	t.Run("declared names must be unique", func(t *testing.T) {
		source := parseSource(t, `
resources:
  Book:
    - operations:
        - {type: Get, name: book_get}
        - {type: Get, name: book_get, uriTemplate: "/books/{id}/preview"}
`)
		_, err := NewBaseFactory(source, nil).Create(context.Background(), "Book")
		assert.ErrorIs(t, err, resource.ErrDuplicateOperation)
	})

	t.Run("persisting collision", func(t *testing.T) {
		source := parseSource(t, `
resources:
  Book:
    - operations:
        - type: Get
        - type: Get
        - type: Get
`)
		_, err := NewBaseFactory(source, nil).Create(context.Background(), "Book")
		assert.ErrorIs(t, err, resource.ErrDuplicateOperation)
	})
}

func TestBaseFactory_GraphQLOperations(t *testing.T) {
	source := parseSource(t, `
resources:
  Book:
    - operations:
        - type: Get
      graphQlOperations:
        - type: Query
        - type: QueryCollection
        - type: Mutation
          name: create
`)
	collection, err := NewBaseFactory(source, nil).Create(context.Background(), "Book")
	require.NoError(t, err)

	r := collection.At(0)
	require.NotNil(t, r.GraphQLOperations)
	assert.Equal(t, []string{"item_query", "collection_query", "create"}, r.GraphQLOperations.Names())

	query, _ := r.GraphQLOperations.Get("item_query")
	assert.Equal(t, "", query.URITemplate())

	t.Run("http kind under graphql", func(t *testing.T) {
		source := parseSource(t, "resources:\n  Book:\n    - graphQlOperations:\n        - type: Get\n")
		_, err := NewBaseFactory(source, nil).Create(context.Background(), "Book")
		assert.ErrorIs(t, err, resource.ErrMisconfiguredOperation)
	})
}

func TestBaseFactory_MultipleResourceBlocks(t *testing.T) {
	source := parseSource(t, `
resources:
  Book:
    - operations: [{type: Get}]
    - uriTemplate: /authors/{authorId}/books
      operations: [{type: GetCollection}]
`)
	collection, err := NewBaseFactory(source, nil).Create(context.Background(), "Book")
	require.NoError(t, err)
	require.Equal(t, 2, collection.Len())

	nested, _ := collection.At(1).Operations.Get("get_collection")
	assert.Equal(t, "/authors/{authorId}/books", nested.URITemplate())
}
