package resource

// Backend names shared by state options, schema registries and defaulting factories
const (
	BackendORM      = "orm"
	BackendDocument = "document"
	BackendSearch   = "search"
	BackendLite     = "lite"
)

// StateOptions carries backend-specific hints for an operation. Each backend has its
// own variant so defaulting factories only fill options they own.
type StateOptions interface {
	// Backend returns the backend name the options belong to
	Backend() string
	// PersistenceClass returns the alternate model class, or "" to use the resource class
	PersistenceClass() string
	// LinksHandler returns the configured links handler, or "" when unset
	LinksHandler() string
	// WithLinksHandler returns a copy with the links handler set
	WithLinksHandler(handler string) StateOptions
}

// ORMOptions are state options for the relational ORM backend
type ORMOptions struct {
	EntityClass string
	HandleLinks string
}

func (o ORMOptions) Backend() string { return BackendORM }
func (o ORMOptions) PersistenceClass() string { return o.EntityClass }
func (o ORMOptions) LinksHandler() string { return o.HandleLinks }

func (o ORMOptions) WithLinksHandler(handler string) StateOptions {
	o.HandleLinks = handler
	return o
}

// DocumentOptions are state options for the document ORM backend
type DocumentOptions struct {
	DocumentClass string
	HandleLinks   string
}

func (o DocumentOptions) Backend() string { return BackendDocument }
func (o DocumentOptions) PersistenceClass() string { return o.DocumentClass }
func (o DocumentOptions) LinksHandler() string { return o.HandleLinks }

func (o DocumentOptions) WithLinksHandler(handler string) StateOptions {
	o.HandleLinks = handler
	return o
}

// SearchOptions are state options for the search index backend.
// Index names the index; it is not a class so it never changes the persistence class.
type SearchOptions struct {
	Index       string
	HandleLinks string
}

func (o SearchOptions) Backend() string { return BackendSearch }
func (o SearchOptions) PersistenceClass() string { return "" }
func (o SearchOptions) LinksHandler() string { return o.HandleLinks }

func (o SearchOptions) WithLinksHandler(handler string) StateOptions {
	o.HandleLinks = handler
	return o
}

// LiteOptions are state options for the lightweight active-record backend
type LiteOptions struct {
	ModelClass  string
	HandleLinks string
}

func (o LiteOptions) Backend() string { return BackendLite }
func (o LiteOptions) PersistenceClass() string { return o.ModelClass }
func (o LiteOptions) LinksHandler() string { return o.HandleLinks }

func (o LiteOptions) WithLinksHandler(handler string) StateOptions {
	o.HandleLinks = handler
	return o
}

// NewStateOptions builds an empty options value for the named backend
func NewStateOptions(backend string) (StateOptions, bool) {
	switch backend {
	case BackendORM:
		return ORMOptions{}, true
	case BackendDocument:
		return DocumentOptions{}, true
	case BackendSearch:
		return SearchOptions{}, true
	case BackendLite:
		return LiteOptions{}, true
	}
	return nil, false
}
