package declaration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/resourcemeta/internal/metadata/filter"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

func TestLoadFiles(t *testing.T) {
	set, err := LoadFiles(filepath.Join("testdata", "library.yaml"))
	require.NoError(t, err)

	t.Run("resources", func(t *testing.T) {
		assert.Equal(t, []string{"Author", "Book", "BookSummary", "Review"}, set.Source.Classes())
		assert.True(t, set.Source.IsResourceClass("Book"))
		assert.False(t, set.Source.IsResourceClass("Publisher"))

		blocks, ok := set.Source.Declarations("Book")
		require.True(t, ok)
		require.Len(t, blocks, 1)
		assert.Len(t, blocks[0].Operations, 6)
		assert.Equal(t, []string{"book.search", "book.order"}, blocks[0].Filters)
		require.NotNil(t, blocks[0].PaginationEnabled)
		assert.True(t, *blocks[0].PaginationEnabled)

		page := blocks[0].Operations[1].Parameters["page"]
		assert.Equal(t, 1, page.Schema["minimum"])
	})

	t.Run("mappings", func(t *testing.T) {
		registry := set.Managers.ManagerForClass("Book")
		require.NotNil(t, registry)
		assert.Equal(t, resource.BackendORM, registry.Backend())

		book, _ := registry.Get("Book")
		assert.Equal(t, "books", book.TableName)
		assert.Equal(t, "author", registry.AssociationMappedBy("Author", "books"))

		review := set.Managers.ManagerForClass("Review")
		require.NotNil(t, review)
		assert.Equal(t, resource.BackendDocument, review.Backend())
	})

	t.Run("filters", func(t *testing.T) {
		f, ok := set.Filters.Get("book.search")
		require.True(t, ok)
		assert.Equal(t, filter.StrategyPartial, f.(*filter.SearchFilter).Strategy("title"))
		assert.Equal(t, []string{"book.order", "book.search"}, set.Filters.IDs())
	})
}

func TestLoadFiles_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("resources:\n  Tag:\n    - shortName: Tag\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("resources:\n  Label:\n    - shortName: Label\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	set, err := LoadFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Label", "Tag"}, set.Source.Classes())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		docs    []string
		message string
	}{
		{
			name:    "class declared twice",
			docs:    []string{"resources:\n  Tag: [{}]\n", "resources:\n  Tag: [{}]\n"},
			message: "resource Tag is declared more than once",
		},
		{
			name:    "unknown backend",
			docs:    []string{"mappings:\n  Tag:\n    backend: graph\n"},
			message: `unknown backend "graph"`,
		},
		{
			name:    "unknown field type",
			docs:    []string{"mappings:\n  Tag:\n    fields:\n      - {name: id, type: blob}\n"},
			message: "mapping Tag.id",
		},
		{
			name:    "unknown filter type",
			docs:    []string{"filters:\n  tag.geo:\n    type: geo\n"},
			message: "filter tag.geo",
		},
		{
			name:    "association to unknown class",
			docs:    []string{"mappings:\n  Tag:\n    associations:\n      - {name: owner, type: belongs_to, target: Ghost}\n"},
			message: "unknown class Ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([]*Document, 0, len(tt.docs))
			for _, raw := range tt.docs {
				doc, err := Parse([]byte(raw))
				require.NoError(t, err)
				docs = append(docs, doc)
			}

			_, err := Build(docs...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestBuild_StaticFilter(t *testing.T) {
	doc, err := Parse([]byte(`
filters:
  book.fulltext:
    properties: [title]
    descriptions:
      - key: q
        required: true
        schema: {type: string, minLength: 3}
        openapi: {allowEmptyValue: false}
`))
	require.NoError(t, err)

	set, err := Build(doc)
	require.NoError(t, err)

	f, ok := set.Filters.Get("book.fulltext")
	require.True(t, ok)
	d := f.Description("Book")
	require.Len(t, d, 1)
	assert.Equal(t, "q", d[0].Key)
	assert.True(t, d[0].Required)
	require.NotNil(t, d[0].OpenAPI)
	require.NotNil(t, d[0].OpenAPI.AllowEmptyValue)
	assert.False(t, *d[0].OpenAPI.AllowEmptyValue)
}
