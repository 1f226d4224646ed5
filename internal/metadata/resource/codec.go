package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The codec snapshots the immutable model into exported mirror types so a resolved
// collection can be stored in a shared cache and restored unchanged. Floats are
// written with a fraction or exponent and decoded as json.Number, so ints and
// float64s keep their kind.

type collectionJSON struct {
	Class     string         `json:"class"`
	Resources []resourceJSON `json:"resources"`
}

type resourceJSON struct {
	Class             string          `json:"class"`
	ShortName         string          `json:"short_name,omitempty"`
	Description       string          `json:"description,omitempty"`
	URITemplate       string          `json:"uri_template,omitempty"`
	Operations        []operationJSON `json:"operations"`
	GraphQLOperations []operationJSON `json:"graphql_operations,omitempty"`
	HasGraphQL        bool            `json:"has_graphql,omitempty"`
}

type operationJSON struct {
	Name                string            `json:"name"`
	Class               string            `json:"class"`
	ShortName           string            `json:"short_name,omitempty"`
	Kind                string            `json:"kind"`
	Method              string            `json:"method"`
	URITemplate         string            `json:"uri_template,omitempty"`
	RouteName           string            `json:"route_name,omitempty"`
	Description         string            `json:"description,omitempty"`
	URIVariables        []Link            `json:"uri_variables,omitempty"`
	Links               []Link            `json:"links,omitempty"`
	Provider            string            `json:"provider,omitempty"`
	Processor           string            `json:"processor,omitempty"`
	Filters             []string          `json:"filters,omitempty"`
	Parameters          []parameterJSON   `json:"parameters,omitempty"`
	HasParameters       bool              `json:"has_parameters,omitempty"`
	StateOptions        *stateOptionsJSON `json:"state_options,omitempty"`
	Extra               map[string]any    `json:"extra,omitempty"`
	Order               []OrderBy         `json:"order,omitempty"`
	PaginationEnabled   *bool             `json:"pagination_enabled,omitempty"`
	ItemsPerPage        int               `json:"items_per_page,omitempty"`
	MaximumItemsPerPage int               `json:"maximum_items_per_page,omitempty"`
}

type parameterJSON struct {
	Key         string            `json:"key"`
	Property    string            `json:"property,omitempty"`
	Schema      map[string]any    `json:"schema,omitempty"`
	Required    bool              `json:"required,omitempty"`
	Constraints []constraintJSON  `json:"constraints,omitempty"`
	FilterClass string            `json:"filter_class,omitempty"`
	Filter      string            `json:"filter,omitempty"`
	OpenAPI     *OpenAPIParameter `json:"openapi,omitempty"`
	Priority    int               `json:"priority,omitempty"`
	Location    ParameterLocation `json:"location,omitempty"`
	Description string            `json:"description,omitempty"`
}

type constraintJSON struct {
	Kind      string `json:"kind"`
	Value     any    `json:"value,omitempty"`
	Min       *int   `json:"min,omitempty"`
	Max       *int   `json:"max,omitempty"`
	Choices   []any  `json:"choices,omitempty"`
	AllowNull bool   `json:"allow_null,omitempty"`
	Message   string `json:"message,omitempty"`
}

type stateOptionsJSON struct {
	Backend     string `json:"backend"`
	Class       string `json:"class,omitempty"`
	Index       string `json:"index,omitempty"`
	HandleLinks string `json:"handle_links,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c *Collection) MarshalJSON() ([]byte, error) {
	out := collectionJSON{Class: c.class, Resources: make([]resourceJSON, 0, len(c.resources))}
	for _, r := range c.resources {
		rj := resourceJSON{
			Class:       r.Class,
			ShortName:   r.ShortName,
			Description: r.Description,
			URITemplate: r.URITemplate,
			Operations:  encodeOperations(r.Operations),
			HasGraphQL:  r.GraphQLOperations != nil,
		}
		rj.GraphQLOperations = encodeOperations(r.GraphQLOperations)
		out.Resources = append(out.Resources, rj)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Collection) UnmarshalJSON(data []byte) error {
	var in collectionJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return err
	}
	c.class = in.Class
	c.resources = make([]Resource, 0, len(in.Resources))
	for _, rj := range in.Resources {
		ops, err := decodeOperations(rj.Operations)
		if err != nil {
			return err
		}
		r := Resource{
			Class:       rj.Class,
			ShortName:   rj.ShortName,
			Description: rj.Description,
			URITemplate: rj.URITemplate,
			Operations:  ops,
		}
		if rj.HasGraphQL {
			if r.GraphQLOperations, err = decodeOperations(rj.GraphQLOperations); err != nil {
				return err
			}
		}
		c.resources = append(c.resources, r)
	}
	return nil
}

func encodeOperations(set *Operations) []operationJSON {
	if set == nil {
		return nil
	}
	out := make([]operationJSON, 0, set.Len())
	for _, op := range set.All() {
		out = append(out, encodeOperation(op))
	}
	return out
}

func encodeOperation(op Operation) operationJSON {
	oj := operationJSON{
		Name:                op.name,
		Class:               op.class,
		ShortName:           op.shortName,
		Kind:                op.kind.String(),
		Method:              op.method,
		URITemplate:         op.uriTemplate,
		RouteName:           op.routeName,
		Description:         op.description,
		URIVariables:        op.uriVariables,
		Links:               op.links,
		Provider:            op.provider,
		Processor:           op.processor,
		Filters:             op.filters,
		HasParameters:       op.parameters != nil,
		Extra:               encodeMap(op.extra),
		Order:               op.order,
		PaginationEnabled:   op.paginationEnabled,
		ItemsPerPage:        op.itemsPerPage,
		MaximumItemsPerPage: op.maximumItemsPerPage,
	}
	for _, p := range op.parameters.All() {
		oj.Parameters = append(oj.Parameters, encodeParameter(p))
	}
	if op.stateOptions != nil {
		oj.StateOptions = encodeStateOptions(op.stateOptions)
	}
	return oj
}

// MarshalJSON implements json.Marshaler with the encoding used for collections
func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodeOperation(o))
}

func decodeOperations(in []operationJSON) (*Operations, error) {
	set := NewOperations()
	for _, oj := range in {
		kind, err := ParseOperationKind(oj.Kind)
		if err != nil {
			return nil, err
		}
		op := Operation{
			name:                oj.Name,
			class:               oj.Class,
			shortName:           oj.ShortName,
			kind:                kind,
			method:              oj.Method,
			uriTemplate:         oj.URITemplate,
			routeName:           oj.RouteName,
			description:         oj.Description,
			uriVariables:        oj.URIVariables,
			links:               oj.Links,
			provider:            oj.Provider,
			processor:           oj.Processor,
			filters:             oj.Filters,
			extra:               decodeMap(oj.Extra),
			order:               oj.Order,
			paginationEnabled:   oj.PaginationEnabled,
			itemsPerPage:        oj.ItemsPerPage,
			maximumItemsPerPage: oj.MaximumItemsPerPage,
		}
		if oj.HasParameters {
			op.parameters = NewParameters()
			for _, pj := range oj.Parameters {
				p, err := decodeParameter(pj)
				if err != nil {
					return nil, err
				}
				op.parameters.Add(p)
			}
		}
		if oj.StateOptions != nil {
			if op.stateOptions, err = decodeStateOptions(*oj.StateOptions); err != nil {
				return nil, err
			}
		}
		set.Add(op.name, op)
	}
	return set, nil
}

func encodeParameter(p Parameter) parameterJSON {
	pj := parameterJSON{
		Key:         p.key,
		Property:    p.property,
		Schema:      encodeMap(p.schema),
		Required:    p.required,
		FilterClass: p.filterClass,
		Filter:      p.filter,
		OpenAPI:     p.openAPI,
		Priority:    p.priority,
		Location:    p.location,
		Description: p.description,
	}
	for _, c := range p.constraints {
		pj.Constraints = append(pj.Constraints, constraintJSON{
			Kind:      c.Kind.String(),
			Value:     encodeValue(c.Value),
			Min:       c.Min,
			Max:       c.Max,
			Choices:   encodeSlice(c.Choices),
			AllowNull: c.AllowNull,
			Message:   c.Message,
		})
	}
	return pj
}

func decodeParameter(pj parameterJSON) (Parameter, error) {
	p := Parameter{
		key:         pj.Key,
		property:    pj.Property,
		schema:      decodeMap(pj.Schema),
		required:    pj.Required,
		filterClass: pj.FilterClass,
		filter:      pj.Filter,
		openAPI:     pj.OpenAPI,
		priority:    pj.Priority,
		location:    pj.Location,
		description: pj.Description,
	}
	for _, cj := range pj.Constraints {
		kind, err := parseConstraintKind(cj.Kind)
		if err != nil {
			return Parameter{}, err
		}
		choices := make([]any, len(cj.Choices))
		for i, choice := range cj.Choices {
			choices[i] = decodeValue(choice)
		}
		if cj.Choices == nil {
			choices = nil
		}
		p.constraints = append(p.constraints, Constraint{
			Kind:      kind,
			Value:     decodeValue(cj.Value),
			Min:       cj.Min,
			Max:       cj.Max,
			Choices:   choices,
			AllowNull: cj.AllowNull,
			Message:   cj.Message,
		})
	}
	return p, nil
}

func encodeStateOptions(o StateOptions) *stateOptionsJSON {
	out := &stateOptionsJSON{
		Backend:     o.Backend(),
		Class:       o.PersistenceClass(),
		HandleLinks: o.LinksHandler(),
	}
	if so, ok := o.(SearchOptions); ok {
		out.Index = so.Index
	}
	return out
}

func decodeStateOptions(in stateOptionsJSON) (StateOptions, error) {
	switch in.Backend {
	case BackendORM:
		return ORMOptions{EntityClass: in.Class, HandleLinks: in.HandleLinks}, nil
	case BackendDocument:
		return DocumentOptions{DocumentClass: in.Class, HandleLinks: in.HandleLinks}, nil
	case BackendSearch:
		return SearchOptions{Index: in.Index, HandleLinks: in.HandleLinks}, nil
	case BackendLite:
		return LiteOptions{ModelClass: in.Class, HandleLinks: in.HandleLinks}, nil
	}
	return nil, fmt.Errorf("unknown state options backend: %s", in.Backend)
}

// encodeValue marks floats so they cannot be read back as ints
func encodeValue(v any) any {
	switch t := v.(type) {
	case float64:
		return floatNumber(t)
	case float32:
		return floatNumber(float64(t))
	case []any:
		return encodeSlice(t)
	case map[string]any:
		return encodeMap(t)
	default:
		return v
	}
}

func floatNumber(f float64) json.Number {
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(text, ".eEn") {
		text += ".0"
	}
	return json.Number(text)
}

func encodeSlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, item := range s {
		out[i] = encodeValue(item)
	}
	return out
}

func encodeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = encodeValue(v)
	}
	return out
}

// decodeValue turns json.Number back into int or float64, depending on whether
// the literal carries a fraction or exponent
func decodeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		text := t.String()
		if !strings.ContainsAny(text, ".eE") {
			if n, err := strconv.Atoi(text); err == nil {
				return n
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return text
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = decodeValue(item)
		}
		return out
	case map[string]any:
		return decodeMap(t)
	default:
		return v
	}
}

func decodeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = decodeValue(v)
	}
	return out
}
