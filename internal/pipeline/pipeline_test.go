package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcemeta/internal/backend"
	"github.com/conduit-lang/resourcemeta/internal/cache"
	"github.com/conduit-lang/resourcemeta/internal/metadata/declaration"
	"github.com/conduit-lang/resourcemeta/internal/metadata/factory"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

func loadLibrary(t *testing.T) *declaration.Set {
	t.Helper()

	set, err := declaration.LoadFiles("testdata/library.yaml")
	require.NoError(t, err)
	return set
}

func newPipeline(t *testing.T, set *declaration.Set) *Pipeline {
	t.Helper()

	p, err := New(Options{Declarations: set})
	require.NoError(t, err)
	return p
}

func operation(t *testing.T, f factory.Factory, class, name string) resource.Operation {
	t.Helper()

	collection, err := f.Create(context.Background(), class)
	require.NoError(t, err)
	op, err := collection.Operation(name)
	require.NoError(t, err)
	return op
}

// snapshot decodes the JSON form of a collection into plain values for cmp
func snapshot(t *testing.T, c *resource.Collection) any {
	t.Helper()

	data, err := json.Marshal(c)
	require.NoError(t, err)
	var v any
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestNew_RequiresDeclarations(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoDeclarations)
}

func TestPipeline_DefaultProvider(t *testing.T) {
	p := newPipeline(t, loadLibrary(t))

	get := operation(t, p, "Book", "get")
	assert.Equal(t, backend.ORM().ItemProvider, get.Provider())
	assert.Equal(t, backend.ORM().PersistProcessor, get.Processor())
	assert.Equal(t, "/books/{id}", get.URITemplate())
	assert.Equal(t, []resource.Link{{ParameterName: "id", FromClass: "Book", Identifiers: []string{"id"}}}, get.URIVariables())

	review := operation(t, p, "Review", "get")
	assert.Equal(t, "app.review_provider", review.Provider())
	assert.Equal(t, backend.Document().PersistProcessor, review.Processor())
	assert.Equal(t, resource.DocumentOptions{HandleLinks: backend.Document().LinksHandler}, review.StateOptions())
}

func TestPipeline_Parameters(t *testing.T) {
	p := newPipeline(t, loadLibrary(t))

	t.Run("declared parameters", func(t *testing.T) {
		list := operation(t, p, "Book", "get_collection")
		params := list.Parameters()
		require.Equal(t, 2, params.Len())

		page, _ := params.Get("page")
		assert.Equal(t, []resource.Constraint{{Kind: resource.ConstraintGreaterThanOrEqual, Value: 1}}, page.Constraints())
		assert.Equal(t, "Book", page.FilterClass())

		perPage, _ := params.Get("itemsPerPage")
		assert.Equal(t, []resource.Constraint{
			{Kind: resource.ConstraintGreaterThanOrEqual, Value: 1},
			{Kind: resource.ConstraintLessThanOrEqual, Value: 100},
		}, perPage.Constraints())
	})

	t.Run("filters migrated to parameters", func(t *testing.T) {
		get := operation(t, p, "Book", "get")

		var keys []string
		for _, param := range get.Parameters().All() {
			keys = append(keys, param.Key())
			assert.Equal(t, "Book", param.FilterClass(), param.Key())
			assert.Negative(t, param.Priority())
		}
		assert.Equal(t, []string{"title", "isbn", "order[title]", "order[publishedAt]"}, keys)
	})
}

func TestPipeline_Links(t *testing.T) {
	set := loadLibrary(t)
	p := newPipeline(t, set)

	get := operation(t, p, "Author", "get")
	require.Equal(t, []resource.Link{{
		FromClass:    "Author",
		ToClass:      "Book",
		FromProperty: "books",
		ToProperty:   "author",
		Identifiers:  []string{"id"},
	}}, get.Links())

	// every synthesized link points back through the owning side
	for _, link := range get.Links() {
		manager := set.Managers.ManagerForClass(link.ToClass)
		require.NotNil(t, manager)
		assert.True(t, manager.HasAssociation(link.ToClass, link.ToProperty))
		assert.Equal(t, link.FromClass, manager.AssociationTarget(link.ToClass, link.ToProperty))
	}

	shelf := operation(t, p, "Shelf", "get")
	assert.Equal(t, []resource.Link{{
		ParameterName:       "id",
		FromClass:           "Shelf",
		Identifiers:         []string{"room", "position"},
		CompositeIdentifier: true,
	}}, shelf.URIVariables())
}

func TestPipeline_AlternatePersistenceClass(t *testing.T) {
	p := newPipeline(t, loadLibrary(t))

	list := operation(t, p, "BookSummary", "get_collection")
	assert.Equal(t, backend.ORM().CollectionProvider, list.Provider())
	assert.Equal(t, resource.ORMOptions{EntityClass: "Book", HandleLinks: backend.ORM().LinksHandler}, list.StateOptions())
}

func TestPipeline_ReadOnlyClass(t *testing.T) {
	p := newPipeline(t, loadLibrary(t))

	collection, err := p.Create(context.Background(), "BookStats")
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "get_collection", "post", "delete"}, collection.At(0).Operations.Names())

	shelf, err := p.Create(context.Background(), "Shelf")
	require.NoError(t, err)
	assert.True(t, shelf.At(0).Operations.Has("put"))
}

func TestPipeline_UniqueOperationNames(t *testing.T) {
	p := newPipeline(t, loadLibrary(t))

	collections, err := p.ResolveAll(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, len(p.Classes()))

	for _, c := range collections {
		for _, r := range c.Resources() {
			seen := make(map[string]bool)
			for _, name := range r.Operations.Names() {
				assert.False(t, seen[name], "%s: duplicate operation %s", c.Class(), name)
				seen[name] = true
			}
		}
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	set := loadLibrary(t)
	p := newPipeline(t, set)

	// every decorator applied twice
	doubled := factory.NewBuilder(factory.NewBaseFactory(set.Source, nil))
	for i := 0; i < 2; i++ {
		doubled.Use(factory.WithParameterValidation(set.Filters, nil))
	}
	for _, b := range backend.All() {
		doubled.Use(backend.WithDefaults(b, set.Managers, nil), backend.WithDefaults(b, set.Managers, nil))
	}
	doubled.Use(factory.WithLinks(set.Source, set.Managers, nil), factory.WithLinks(set.Source, set.Managers, nil))
	twice := doubled.Build()

	for _, class := range p.Classes() {
		once, err := p.Create(context.Background(), class)
		require.NoError(t, err)
		again, err := twice.Create(context.Background(), class)
		require.NoError(t, err)

		if diff := cmp.Diff(snapshot(t, once), snapshot(t, again)); diff != "" {
			t.Errorf("%s resolved differently (-once +twice):\n%s", class, diff)
		}
	}
}

func TestPipeline_Cached(t *testing.T) {
	set := loadLibrary(t)
	shared, err := cache.NewMemoryCache()
	require.NoError(t, err)

	p, err := New(Options{
		Declarations: set,
		Cache:        &factory.CacheOptions{LocalSize: 16, Shared: shared},
	})
	require.NoError(t, err)

	uncached := newPipeline(t, set)
	expected, err := uncached.Create(context.Background(), "Author")
	require.NoError(t, err)

	first, err := p.Create(context.Background(), "Author")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(snapshot(t, expected), snapshot(t, first)))

	cached, err := p.Cached(context.Background(), "Author")
	require.NoError(t, err)
	assert.True(t, cached)

	require.NoError(t, p.Invalidate(context.Background(), "Author"))
	cached, err = p.Cached(context.Background(), "Author")
	require.NoError(t, err)
	assert.False(t, cached)

	_, err = p.Create(context.Background(), "Book")
	require.NoError(t, err)
	require.NoError(t, p.Purge(context.Background()))
	cached, err = p.Cached(context.Background(), "Book")
	require.NoError(t, err)
	assert.False(t, cached)

	assert.NoError(t, uncached.Invalidate(context.Background(), "Author"))
	assert.NoError(t, uncached.Purge(context.Background()))
	cached, err = uncached.Cached(context.Background(), "Author")
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestPipeline_SharedCacheKeepsNumberKinds(t *testing.T) {
	doc, err := declaration.Parse([]byte(`
resources:
  Product:
    - operations:
        - type: GetCollection
          parameters:
            price:
              schema: {type: number, minimum: 1.0, maximum: 250, multipleOf: 0.5}
            quantity:
              schema: {type: integer, multipleOf: 2.0, enum: [2, 4.0]}
mappings:
  Product:
    fields:
      - {name: id, type: int}
      - {name: price, type: float}
`))
	require.NoError(t, err)
	set, err := declaration.Build(doc)
	require.NoError(t, err)

	shared, err := cache.NewMemoryCache()
	require.NoError(t, err)

	fresh, err := newPipeline(t, set).Create(context.Background(), "Product")
	require.NoError(t, err)

	writer, err := New(Options{Declarations: set, Cache: &factory.CacheOptions{Shared: shared}})
	require.NoError(t, err)
	_, err = writer.Create(context.Background(), "Product")
	require.NoError(t, err)

	// a second process without a local cache decodes the shared entry
	reader, err := New(Options{Declarations: set, Cache: &factory.CacheOptions{Shared: shared}})
	require.NoError(t, err)
	restored, err := reader.Create(context.Background(), "Product")
	require.NoError(t, err)

	want, err := fresh.Operation("get_collection")
	require.NoError(t, err)
	got, err := restored.Operation("get_collection")
	require.NoError(t, err)

	for _, key := range []string{"price", "quantity"} {
		expected, ok := want.Parameters().Get(key)
		require.True(t, ok)
		actual, ok := got.Parameters().Get(key)
		require.True(t, ok)

		if diff := cmp.Diff(expected.Constraints(), actual.Constraints()); diff != "" {
			t.Errorf("%s constraints changed through the shared cache (-fresh +restored):\n%s", key, diff)
		}
		if diff := cmp.Diff(expected.Schema(), actual.Schema()); diff != "" {
			t.Errorf("%s schema changed through the shared cache (-fresh +restored):\n%s", key, diff)
		}
	}

	price, _ := got.Parameters().Get("price")
	assert.Equal(t, resource.Constraint{Kind: resource.ConstraintGreaterThanOrEqual, Value: 1.0}, price.Constraints()[0])
	assert.Equal(t, resource.Constraint{Kind: resource.ConstraintLessThanOrEqual, Value: 250}, price.Constraints()[1])
}

func TestPipeline_UnknownClass(t *testing.T) {
	p := newPipeline(t, loadLibrary(t))

	_, err := p.Create(context.Background(), "Publisher")
	assert.True(t, resource.IsResourceClassNotFound(err))
}
