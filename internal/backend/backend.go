// Package backend provides the factories assigning storage backend defaults to
// resource operations.
package backend

import (
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// Backend describes the handlers a storage backend contributes to the operations of
// the classes it manages. An empty handler means the backend has no default for it.
type Backend struct {
	Name               string
	ItemProvider       string
	CollectionProvider string
	PersistProcessor   string
	RemoveProcessor    string
	LinksHandler       string
}

// ORM is the relational ORM backend
func ORM() Backend {
	return Backend{
		Name:               resource.BackendORM,
		ItemProvider:       "orm.state.item_provider",
		CollectionProvider: "orm.state.collection_provider",
		PersistProcessor:   "orm.state.persist_processor",
		RemoveProcessor:    "orm.state.remove_processor",
		LinksHandler:       "orm.state.links_handler",
	}
}

// Document is the document ORM backend
func Document() Backend {
	return Backend{
		Name:               resource.BackendDocument,
		ItemProvider:       "document.state.item_provider",
		CollectionProvider: "document.state.collection_provider",
		PersistProcessor:   "document.state.persist_processor",
		RemoveProcessor:    "document.state.remove_processor",
		LinksHandler:       "document.state.links_handler",
	}
}

// Search is the search index backend. Indexes are read models: it has no processors.
func Search() Backend {
	return Backend{
		Name:               resource.BackendSearch,
		ItemProvider:       "search.state.item_provider",
		CollectionProvider: "search.state.collection_provider",
		LinksHandler:       "search.state.links_handler",
	}
}

// Lite is the lightweight active record backend
func Lite() Backend {
	return Backend{
		Name:               resource.BackendLite,
		ItemProvider:       "lite.state.item_provider",
		CollectionProvider: "lite.state.collection_provider",
		PersistProcessor:   "lite.state.persist_processor",
		RemoveProcessor:    "lite.state.remove_processor",
		LinksHandler:       "lite.state.links_handler",
	}
}

// All returns the built-in backends in their default chain order
func All() []Backend {
	return []Backend{ORM(), Document(), Search(), Lite()}
}

// Lookup returns the built-in backend with the given name
func Lookup(name string) (Backend, bool) {
	for _, b := range All() {
		if b.Name == name {
			return b, true
		}
	}
	return Backend{}, false
}

// Names returns the names of the built-in backends in chain order
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, b := range all {
		names[i] = b.Name
	}
	return names
}
