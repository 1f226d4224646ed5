// Package declaration loads resource declarations from YAML files.
//
// A declaration file has three sections:
//
//	resources:   resource class -> list of resource blocks with their operations
//	mappings:    class metadata per storage backend (fields, associations, read only)
//	filters:     filter id -> built-in filter configuration
package declaration

// Document is the decoded content of one declaration file
type Document struct {
	Resources map[string][]Resource `yaml:"resources"`
	Mappings  map[string]Mapping    `yaml:"mappings"`
	Filters   map[string]Filter     `yaml:"filters"`
}

// Resource is one declared resource block. Operation level values override the
// resource level ones.
type Resource struct {
	ShortName           string         `yaml:"shortName"`
	Description         string         `yaml:"description"`
	URITemplate         string         `yaml:"uriTemplate"`
	Provider            string         `yaml:"provider"`
	Processor           string         `yaml:"processor"`
	Filters             []string       `yaml:"filters"`
	StateOptions        *StateOptions  `yaml:"stateOptions"`
	Order               []Order        `yaml:"order"`
	PaginationEnabled   *bool          `yaml:"paginationEnabled"`
	ItemsPerPage        int            `yaml:"itemsPerPage"`
	MaximumItemsPerPage int            `yaml:"maximumItemsPerPage"`
	ExtraProperties     map[string]any `yaml:"extraProperties"`
	CompositeIdentifier *bool          `yaml:"compositeIdentifier"`
	Links               []Link         `yaml:"links"`
	Operations          []Operation    `yaml:"operations"`
	GraphQLOperations   []Operation    `yaml:"graphQlOperations"`
}

// Operation is one declared operation. Type is the operation shorthand (Get,
// GetCollection, Post, Put, Patch, Delete, Query, QueryCollection, Mutation,
// DeleteMutation, Subscription); when empty the kind is derived from Method.
type Operation struct {
	Type                string               `yaml:"type"`
	Name                string               `yaml:"name"`
	Method              string               `yaml:"method"`
	URITemplate         string               `yaml:"uriTemplate"`
	RouteName           string               `yaml:"routeName"`
	Description         string               `yaml:"description"`
	URIVariables        []Link               `yaml:"uriVariables"`
	Provider            string               `yaml:"provider"`
	Processor           string               `yaml:"processor"`
	Filters             []string             `yaml:"filters"`
	Parameters          map[string]Parameter `yaml:"parameters"`
	StateOptions        *StateOptions        `yaml:"stateOptions"`
	Order               []Order              `yaml:"order"`
	PaginationEnabled   *bool                `yaml:"paginationEnabled"`
	ItemsPerPage        int                  `yaml:"itemsPerPage"`
	MaximumItemsPerPage int                  `yaml:"maximumItemsPerPage"`
	ExtraProperties     map[string]any       `yaml:"extraProperties"`
}

// Parameter is one declared operation parameter
type Parameter struct {
	Property    string         `yaml:"property"`
	Schema      map[string]any `yaml:"schema"`
	Required    bool           `yaml:"required"`
	FilterClass string         `yaml:"filterClass"`
	Filter      string         `yaml:"filter"`
	OpenAPI     *OpenAPI       `yaml:"openapi"`
	Priority    int            `yaml:"priority"`
	In          string         `yaml:"in"`
	Description string         `yaml:"description"`
}

// OpenAPI is the documentation part of a parameter declaration
type OpenAPI struct {
	Name            string `yaml:"name"`
	In              string `yaml:"in"`
	AllowEmptyValue *bool  `yaml:"allowEmptyValue"`
}

// StateOptions selects the backend of an operation and its alternate model class
type StateOptions struct {
	Backend     string `yaml:"backend"`
	Class       string `yaml:"class"`
	Index       string `yaml:"index"`
	HandleLinks string `yaml:"handleLinks"`
}

// Order is one default sort clause
type Order struct {
	Property  string `yaml:"property"`
	Direction string `yaml:"direction"`
}

// Link is a declared uri variable or relation
type Link struct {
	ParameterName string   `yaml:"parameterName"`
	FromClass     string   `yaml:"fromClass"`
	ToClass       string   `yaml:"toClass"`
	FromProperty  string   `yaml:"fromProperty"`
	ToProperty    string   `yaml:"toProperty"`
	Identifiers   []string `yaml:"identifiers"`
	Security      string   `yaml:"security"`
}

// Mapping is the class metadata a storage backend holds for a class
type Mapping struct {
	Backend      string        `yaml:"backend"`
	Table        string        `yaml:"table"`
	Identifiers  []string      `yaml:"identifiers"`
	ReadOnly     bool          `yaml:"readOnly"`
	Fields       []Field       `yaml:"fields"`
	Associations []Association `yaml:"associations"`
}

// Field is one scalar property of a mapped class
type Field struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Nullable bool     `yaml:"nullable"`
	Enum     []string `yaml:"enum"`
}

// Association is one relation property of a mapped class
type Association struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Target     string `yaml:"target"`
	MappedBy   string `yaml:"mappedBy"`
	InversedBy string `yaml:"inversedBy"`
	ForeignKey string `yaml:"foreignKey"`
	JoinTable  string `yaml:"joinTable"`
	Nullable   bool   `yaml:"nullable"`
}

// Filter configures a built-in filter. Descriptions, when set, replace the built-in
// description and Type may be left empty.
type Filter struct {
	Type          string            `yaml:"type"`
	Properties    []string          `yaml:"properties"`
	Strategies    map[string]string `yaml:"strategies"`
	ParameterName string            `yaml:"parameterName"`
	Descriptions  []FilterEntry     `yaml:"descriptions"`
}

// FilterEntry is one statically declared filter parameter
type FilterEntry struct {
	Key      string         `yaml:"key"`
	Property string         `yaml:"property"`
	Required bool           `yaml:"required"`
	Schema   map[string]any `yaml:"schema"`
	OpenAPI  *OpenAPI       `yaml:"openapi"`
}
