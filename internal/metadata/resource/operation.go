package resource

import (
	"maps"
	"slices"
)

// OrderBy is one default sort clause of a collection operation
type OrderBy struct {
	Property  string
	Direction string
}

// Operation is one externally reachable capability of a resource.
// Operation values are immutable: every With* method returns a modified copy.
type Operation struct {
	name         string
	class        string
	shortName    string
	kind         OperationKind
	method       string
	uriTemplate  string
	routeName    string
	description  string
	uriVariables []Link
	links        []Link
	provider     string
	processor    string
	filters      []string
	parameters   *Parameters
	stateOptions StateOptions
	extra        map[string]any
	order        []OrderBy

	paginationEnabled   *bool
	itemsPerPage        int
	maximumItemsPerPage int
}

// NewOperation creates an operation of the given kind with its default name and method
func NewOperation(kind OperationKind) Operation {
	return Operation{
		name:   kind.String(),
		kind:   kind,
		method: kind.DefaultMethod(),
	}
}

func (o Operation) Name() string { return o.name }
func (o Operation) Class() string { return o.class }
func (o Operation) ShortName() string { return o.shortName }
func (o Operation) Kind() OperationKind { return o.kind }
func (o Operation) Method() string { return o.method }
func (o Operation) URITemplate() string { return o.uriTemplate }
func (o Operation) RouteName() string { return o.routeName }
func (o Operation) Description() string { return o.description }
func (o Operation) Provider() string { return o.provider }
func (o Operation) Processor() string { return o.processor }
func (o Operation) StateOptions() StateOptions { return o.stateOptions }
func (o Operation) ItemsPerPage() int { return o.itemsPerPage }
func (o Operation) MaximumItemsPerPage() int { return o.maximumItemsPerPage }
func (o Operation) URIVariables() []Link { return cloneLinks(o.uriVariables) }
func (o Operation) Links() []Link { return cloneLinks(o.links) }
func (o Operation) Filters() []string { return slices.Clone(o.filters) }
func (o Operation) Order() []OrderBy { return slices.Clone(o.order) }
func (o Operation) ExtraProperties() map[string]any { return maps.Clone(o.extra) }

// Parameters returns a copy of the parameter collection, nil when none were declared
func (o Operation) Parameters() *Parameters { return o.parameters.Clone() }

// PaginationEnabled returns the pagination flag, nil when left to the global default
func (o Operation) PaginationEnabled() *bool {
	if o.paginationEnabled == nil {
		return nil
	}
	v := *o.paginationEnabled
	return &v
}

// ExtraProperty returns one entry of the extra properties bag
func (o Operation) ExtraProperty(key string) (any, bool) {
	v, ok := o.extra[key]
	return v, ok
}

// IsCollection reports whether the operation returns a list
func (o Operation) IsCollection() bool { return o.kind.IsCollection() }

func (o Operation) WithName(name string) Operation {
	o.name = name
	return o
}

func (o Operation) WithClass(class string) Operation {
	o.class = class
	return o
}

func (o Operation) WithShortName(shortName string) Operation {
	o.shortName = shortName
	return o
}

func (o Operation) WithMethod(method string) Operation {
	o.method = method
	return o
}

func (o Operation) WithURITemplate(template string) Operation {
	o.uriTemplate = template
	return o
}

func (o Operation) WithRouteName(routeName string) Operation {
	o.routeName = routeName
	return o
}

func (o Operation) WithDescription(description string) Operation {
	o.description = description
	return o
}

func (o Operation) WithURIVariables(links []Link) Operation {
	o.uriVariables = cloneLinks(links)
	return o
}

func (o Operation) WithLinks(links []Link) Operation {
	o.links = cloneLinks(links)
	return o
}

func (o Operation) WithProvider(provider string) Operation {
	o.provider = provider
	return o
}

func (o Operation) WithProcessor(processor string) Operation {
	o.processor = processor
	return o
}

func (o Operation) WithFilters(filters []string) Operation {
	o.filters = slices.Clone(filters)
	return o
}

func (o Operation) WithParameters(params *Parameters) Operation {
	o.parameters = params.Clone()
	return o
}

func (o Operation) WithStateOptions(options StateOptions) Operation {
	o.stateOptions = options
	return o
}

func (o Operation) WithExtraProperties(extra map[string]any) Operation {
	o.extra = maps.Clone(extra)
	return o
}

func (o Operation) WithExtraProperty(key string, value any) Operation {
	extra := maps.Clone(o.extra)
	if extra == nil {
		extra = make(map[string]any)
	}
	extra[key] = value
	o.extra = extra
	return o
}

func (o Operation) WithOrder(order []OrderBy) Operation {
	o.order = slices.Clone(order)
	return o
}

func (o Operation) WithPaginationEnabled(enabled bool) Operation {
	o.paginationEnabled = &enabled
	return o
}

func (o Operation) WithItemsPerPage(n int) Operation {
	o.itemsPerPage = n
	return o
}

func (o Operation) WithMaximumItemsPerPage(n int) Operation {
	o.maximumItemsPerPage = n
	return o
}
