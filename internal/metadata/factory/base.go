package factory

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/resourcemeta/internal/metadata/declaration"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
	utilstrings "github.com/conduit-lang/resourcemeta/internal/util/strings"
)

// DeclarationSource serves the raw resource blocks declared for a class
type DeclarationSource interface {
	Declarations(resourceClass string) ([]declaration.Resource, bool)
}

// defaultKinds are created for a resource block that declares no operations
var defaultKinds = []resource.OperationKind{
	resource.KindGet,
	resource.KindGetCollection,
	resource.KindPost,
	resource.KindPut,
	resource.KindPatch,
	resource.KindDelete,
}

// BaseFactory builds the initial collection of a class from its declarations.
// Operations may still lack provider, processor, links and parameter constraints.
type BaseFactory struct {
	source DeclarationSource
	logger *zap.Logger
}

// NewBaseFactory creates a base factory reading from source
func NewBaseFactory(source DeclarationSource, logger *zap.Logger) *BaseFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseFactory{source: source, logger: logger}
}

// Create implements Factory
func (f *BaseFactory) Create(ctx context.Context, resourceClass string) (*resource.Collection, error) {
	blocks, ok := f.source.Declarations(resourceClass)
	if !ok {
		return nil, fmt.Errorf("%w: %s", resource.ErrResourceClassNotFound, resourceClass)
	}

	collection := resource.NewCollection(resourceClass)
	for i, block := range blocks {
		r, err := f.buildResource(resourceClass, block)
		if err != nil {
			return nil, fmt.Errorf("resource %s #%d: %w", resourceClass, i, err)
		}
		collection.Append(r)
	}

	f.logger.Debug("built resource metadata",
		zap.String("class", resourceClass),
		zap.Int("resources", collection.Len()),
	)
	return collection, nil
}

func (f *BaseFactory) buildResource(class string, block declaration.Resource) (resource.Resource, error) {
	r := resource.Resource{
		Class:       class,
		ShortName:   block.ShortName,
		Description: block.Description,
		URITemplate: block.URITemplate,
		Operations:  resource.NewOperations(),
	}
	if r.ShortName == "" {
		r.ShortName = utilstrings.ShortName(class)
	}

	declared := block.Operations
	if len(declared) == 0 {
		declared = make([]declaration.Operation, 0, len(defaultKinds))
		for _, kind := range defaultKinds {
			declared = append(declared, declaration.Operation{Type: kind.String()})
		}
	}

	for _, decl := range declared {
		op, err := f.buildOperation(r, block, decl)
		if err != nil {
			return r, err
		}
		if op.Kind().IsGraphQL() {
			return r, fmt.Errorf("%w: %s is a GraphQL operation, declare it under graphQlOperations",
				resource.ErrMisconfiguredOperation, op.Kind())
		}
		name, err := operationName(r.Operations, decl.Name, op)
		if err != nil {
			return r, err
		}
		r.Operations.Add(name, op)
	}

	if len(block.GraphQLOperations) > 0 {
		r.GraphQLOperations = resource.NewOperations()
		for _, decl := range block.GraphQLOperations {
			op, err := f.buildOperation(r, block, decl)
			if err != nil {
				return r, err
			}
			if !op.Kind().IsGraphQL() {
				return r, fmt.Errorf("%w: %s is not a GraphQL operation", resource.ErrMisconfiguredOperation, op.Kind())
			}
			name, err := operationName(r.GraphQLOperations, decl.Name, op)
			if err != nil {
				return r, err
			}
			r.GraphQLOperations.Add(name, op)
		}
	}

	return r, nil
}

func (f *BaseFactory) buildOperation(r resource.Resource, block declaration.Resource, decl declaration.Operation) (resource.Operation, error) {
	kind, err := operationKind(decl)
	if err != nil {
		return resource.Operation{}, err
	}

	op := resource.NewOperation(kind).
		WithClass(r.Class).
		WithShortName(r.ShortName).
		WithRouteName(decl.RouteName).
		WithDescription(decl.Description)

	if decl.Method != "" {
		op = op.WithMethod(strings.ToUpper(decl.Method))
	}

	if !kind.IsGraphQL() {
		op = op.WithURITemplate(uriTemplate(r, decl, kind))
	}

	if len(decl.URIVariables) > 0 {
		op = op.WithURIVariables(toLinks(r.Class, decl.URIVariables))
	}
	if len(block.Links) > 0 {
		op = op.WithLinks(toLinks(r.Class, block.Links))
	}

	op = op.
		WithProvider(firstNonEmpty(decl.Provider, block.Provider)).
		WithProcessor(firstNonEmpty(decl.Processor, block.Processor))

	filters := decl.Filters
	if filters == nil {
		filters = block.Filters
	}
	if len(filters) > 0 {
		op = op.WithFilters(filters)
	}

	if decl.Parameters != nil {
		params, err := toParameters(decl.Parameters)
		if err != nil {
			return resource.Operation{}, err
		}
		op = op.WithParameters(params)
	}

	stateOptions := decl.StateOptions
	if stateOptions == nil {
		stateOptions = block.StateOptions
	}
	if stateOptions != nil {
		so, err := toStateOptions(*stateOptions)
		if err != nil {
			return resource.Operation{}, err
		}
		op = op.WithStateOptions(so)
	}

	order := decl.Order
	if order == nil {
		order = block.Order
	}
	if len(order) > 0 {
		clauses := make([]resource.OrderBy, 0, len(order))
		for _, o := range order {
			clauses = append(clauses, resource.OrderBy{Property: o.Property, Direction: strings.ToUpper(o.Direction)})
		}
		op = op.WithOrder(clauses)
	}

	if enabled := firstBool(decl.PaginationEnabled, block.PaginationEnabled); enabled != nil {
		op = op.WithPaginationEnabled(*enabled)
	}
	op = op.
		WithItemsPerPage(firstPositive(decl.ItemsPerPage, block.ItemsPerPage)).
		WithMaximumItemsPerPage(firstPositive(decl.MaximumItemsPerPage, block.MaximumItemsPerPage))

	for _, extra := range []map[string]any{block.ExtraProperties, decl.ExtraProperties} {
		for _, key := range sortedKeys(extra) {
			op = op.WithExtraProperty(key, extra[key])
		}
	}
	if block.CompositeIdentifier != nil {
		op = op.WithExtraProperty(ExtraCompositeIdentifier, *block.CompositeIdentifier)
	}

	return op, nil
}

// operationKind resolves the kind from the declared type, or from the method when no
// type is declared. A GET addressing identifiers reads an item, any other GET a list.
func operationKind(decl declaration.Operation) (resource.OperationKind, error) {
	if decl.Type != "" {
		kind, err := resource.ParseOperationKind(decl.Type)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", resource.ErrMisconfiguredOperation, err)
		}
		return kind, nil
	}

	addressesItem := len(decl.URIVariables) > 0 || strings.Contains(decl.URITemplate, "{")

	switch strings.ToUpper(decl.Method) {
	case http.MethodGet:
		if addressesItem {
			return resource.KindGet, nil
		}
		return resource.KindGetCollection, nil
	case http.MethodPost:
		return resource.KindPost, nil
	case http.MethodPut:
		return resource.KindPut, nil
	case http.MethodPatch:
		return resource.KindPatch, nil
	case http.MethodDelete:
		return resource.KindDelete, nil
	case "":
		if decl.RouteName == "" {
			return 0, fmt.Errorf("%w: operation %q has neither a type, a method nor a route name",
				resource.ErrMisconfiguredOperation, decl.Name)
		}
		if addressesItem {
			return resource.KindGet, nil
		}
		return resource.KindGetCollection, nil
	default:
		return 0, fmt.Errorf("%w: unsupported method %q", resource.ErrMisconfiguredOperation, decl.Method)
	}
}

// operationName picks a unique name: the declared one, else the kind default, else
// the route based form _api_<uriTemplate>_<kind>.
func operationName(existing *resource.Operations, declared string, op resource.Operation) (string, error) {
	if declared != "" {
		if existing.Has(declared) {
			return "", fmt.Errorf("%w: %s", resource.ErrDuplicateOperation, declared)
		}
		return declared, nil
	}

	name := op.Kind().String()
	if !existing.Has(name) {
		return name, nil
	}

	name = fmt.Sprintf("_api_%s_%s", op.URITemplate(), op.Kind())
	if existing.Has(name) {
		return "", fmt.Errorf("%w: %s", resource.ErrDuplicateOperation, name)
	}
	return name, nil
}

func uriTemplate(r resource.Resource, decl declaration.Operation, kind resource.OperationKind) string {
	if decl.URITemplate != "" {
		return decl.URITemplate
	}

	base := r.URITemplate
	if base == "" {
		base = "/" + utilstrings.ResourcePath(r.ShortName)
	}
	if kind.IsItem() {
		return base + "/{id}"
	}
	return base
}

func toLinks(class string, decls []declaration.Link) []resource.Link {
	links := make([]resource.Link, 0, len(decls))
	for _, d := range decls {
		link := resource.Link{
			ParameterName: d.ParameterName,
			FromClass:     d.FromClass,
			ToClass:       d.ToClass,
			FromProperty:  d.FromProperty,
			ToProperty:    d.ToProperty,
			Security:      d.Security,
		}
		if link.FromClass == "" {
			link.FromClass = class
		}
		links = append(links, link.WithIdentifiers(d.Identifiers))
	}
	return links
}

func toParameters(decls map[string]declaration.Parameter) (*resource.Parameters, error) {
	params := resource.NewParameters()
	for _, key := range sortedKeys(decls) {
		d := decls[key]
		p := resource.NewParameter(key).
			WithProperty(d.Property).
			WithSchema(d.Schema).
			WithRequired(d.Required).
			WithFilterClass(d.FilterClass).
			WithFilter(d.Filter).
			WithPriority(d.Priority).
			WithDescription(d.Description)

		switch d.In {
		case "", "query":
		case "path":
			p = p.WithLocation(resource.LocationURIVariable)
		default:
			return nil, fmt.Errorf("%w: parameter %s has unsupported location %q",
				resource.ErrMisconfiguredOperation, key, d.In)
		}

		if d.OpenAPI != nil {
			p = p.WithOpenAPI(&resource.OpenAPIParameter{
				Name:            d.OpenAPI.Name,
				In:              d.OpenAPI.In,
				AllowEmptyValue: d.OpenAPI.AllowEmptyValue,
			})
		}
		params.Add(p)
	}
	return params, nil
}

func toStateOptions(d declaration.StateOptions) (resource.StateOptions, error) {
	switch d.Backend {
	case resource.BackendORM:
		return resource.ORMOptions{EntityClass: d.Class, HandleLinks: d.HandleLinks}, nil
	case resource.BackendDocument:
		return resource.DocumentOptions{DocumentClass: d.Class, HandleLinks: d.HandleLinks}, nil
	case resource.BackendSearch:
		return resource.SearchOptions{Index: d.Index, HandleLinks: d.HandleLinks}, nil
	case resource.BackendLite:
		return resource.LiteOptions{ModelClass: d.Class, HandleLinks: d.HandleLinks}, nil
	default:
		return nil, fmt.Errorf("%w: unknown state options backend %q", resource.ErrMisconfiguredOperation, d.Backend)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstBool(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
