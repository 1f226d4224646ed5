package resource

import (
	"maps"
	"slices"
	"sort"
)

// ParameterLocation tells where a parameter is read from
type ParameterLocation int

const (
	LocationQuery ParameterLocation = iota
	LocationURIVariable
)

// String returns the string representation of the location
func (l ParameterLocation) String() string {
	if l == LocationURIVariable {
		return "path"
	}
	return "query"
}

// OpenAPIParameter is the documentation descriptor of a parameter.
// Only AllowEmptyValue takes part in resolution.
type OpenAPIParameter struct {
	Name            string
	In              string
	AllowEmptyValue *bool
}

// Parameter is one validated input of an operation
type Parameter struct {
	key         string
	property    string
	schema      map[string]any
	required    bool
	constraints []Constraint
	filterClass string
	filter      string
	openAPI     *OpenAPIParameter
	priority    int
	location    ParameterLocation
	description string
}

// NewParameter creates a query parameter with the given key
func NewParameter(key string) Parameter {
	return Parameter{key: key}
}

func (p Parameter) Key() string { return p.key }
func (p Parameter) Property() string { return p.property }
func (p Parameter) Required() bool { return p.required }
func (p Parameter) FilterClass() string { return p.filterClass }
func (p Parameter) Filter() string { return p.filter }
func (p Parameter) Priority() int { return p.priority }
func (p Parameter) Location() ParameterLocation { return p.location }
func (p Parameter) Description() string { return p.description }

// Schema returns a copy of the schema keyword bag
func (p Parameter) Schema() map[string]any { return maps.Clone(p.schema) }

// Constraints returns the derived constraints; nil means none were derived yet
func (p Parameter) Constraints() []Constraint { return slices.Clone(p.constraints) }

// HasConstraints reports whether constraints were set
func (p Parameter) HasConstraints() bool { return p.constraints != nil }

// OpenAPI returns the documentation descriptor, nil when unset
func (p Parameter) OpenAPI() *OpenAPIParameter {
	if p.openAPI == nil {
		return nil
	}
	cp := *p.openAPI
	return &cp
}

func (p Parameter) WithKey(key string) Parameter {
	p.key = key
	return p
}

func (p Parameter) WithProperty(property string) Parameter {
	p.property = property
	return p
}

func (p Parameter) WithSchema(schema map[string]any) Parameter {
	p.schema = maps.Clone(schema)
	return p
}

func (p Parameter) WithRequired(required bool) Parameter {
	p.required = required
	return p
}

// WithConstraints sets the derived constraints. Constraints are set at most once:
// a parameter that already carries constraints is returned unchanged.
func (p Parameter) WithConstraints(constraints []Constraint) Parameter {
	if p.constraints != nil || len(constraints) == 0 {
		return p
	}
	p.constraints = slices.Clone(constraints)
	return p
}

func (p Parameter) WithFilterClass(class string) Parameter {
	p.filterClass = class
	return p
}

func (p Parameter) WithFilter(filter string) Parameter {
	p.filter = filter
	return p
}

func (p Parameter) WithOpenAPI(openAPI *OpenAPIParameter) Parameter {
	if openAPI == nil {
		p.openAPI = nil
		return p
	}
	cp := *openAPI
	p.openAPI = &cp
	return p
}

func (p Parameter) WithPriority(priority int) Parameter {
	p.priority = priority
	return p
}

func (p Parameter) WithLocation(location ParameterLocation) Parameter {
	p.location = location
	return p
}

func (p Parameter) WithDescription(description string) Parameter {
	p.description = description
	return p
}

// Parameters is a keyed collection of parameters. It is a mutable container owned by
// the operation value that holds it; Operation accessors hand out clones.
type Parameters struct {
	keys   []string
	values map[string]Parameter
}

// NewParameters creates a collection from the given parameters
func NewParameters(params ...Parameter) *Parameters {
	ps := &Parameters{values: make(map[string]Parameter)}
	for _, p := range params {
		ps.Add(p)
	}
	return ps
}

// Add inserts or replaces the parameter stored under its key
func (ps *Parameters) Add(p Parameter) {
	if ps.values == nil {
		ps.values = make(map[string]Parameter)
	}
	if _, exists := ps.values[p.key]; !exists {
		ps.keys = append(ps.keys, p.key)
	}
	ps.values[p.key] = p
}

// Get retrieves a parameter by key
func (ps *Parameters) Get(key string) (Parameter, bool) {
	if ps == nil {
		return Parameter{}, false
	}
	p, ok := ps.values[key]
	return p, ok
}

// Has returns true if a parameter exists under key
func (ps *Parameters) Has(key string) bool {
	_, ok := ps.Get(key)
	return ok
}

// Remove deletes the parameter stored under key
func (ps *Parameters) Remove(key string) {
	if ps == nil {
		return
	}
	if _, ok := ps.values[key]; !ok {
		return
	}
	delete(ps.values, key)
	ps.keys = slices.DeleteFunc(ps.keys, func(k string) bool { return k == key })
}

// Len returns the number of parameters
func (ps *Parameters) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.keys)
}

// All returns the parameters sorted by priority, highest first.
// Parameters with equal priority keep their insertion order.
func (ps *Parameters) All() []Parameter {
	if ps == nil {
		return nil
	}
	result := make([]Parameter, 0, len(ps.keys))
	for _, k := range ps.keys {
		result = append(result, ps.values[k])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].priority > result[j].priority
	})
	return result
}

// Clone returns an independent copy of the collection
func (ps *Parameters) Clone() *Parameters {
	if ps == nil {
		return nil
	}
	return &Parameters{
		keys:   slices.Clone(ps.keys),
		values: maps.Clone(ps.values),
	}
}
