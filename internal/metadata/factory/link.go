package factory

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
	"github.com/conduit-lang/resourcemeta/internal/orm/schema"
)

// ExtraCompositeIdentifier is the extra property disabling composite identifiers
// when set to false
const ExtraCompositeIdentifier = "composite_identifier"

var defaultIdentifiers = []string{"id"}

// ResourceClassResolver tells whether a class is exposed as a resource
type ResourceClassResolver interface {
	IsResourceClass(class string) bool
}

// LinkFactory resolves uri variables and relation links of operations
type LinkFactory struct {
	next     Factory
	resolver ResourceClassResolver
	managers *schema.ManagerRegistry
	logger   *zap.Logger
}

// NewLinkFactory creates a link factory decorating next
func NewLinkFactory(next Factory, resolver ResourceClassResolver, managers *schema.ManagerRegistry, logger *zap.Logger) *LinkFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkFactory{next: next, resolver: resolver, managers: managers, logger: logger}
}

// WithLinks returns a decorator adding a LinkFactory to a chain
func WithLinks(resolver ResourceClassResolver, managers *schema.ManagerRegistry, logger *zap.Logger) Decorator {
	return func(next Factory) Factory {
		return NewLinkFactory(next, resolver, managers, logger)
	}
}

// Create implements Factory
func (f *LinkFactory) Create(ctx context.Context, resourceClass string) (*resource.Collection, error) {
	collection, err := f.next.Create(ctx, resourceClass)
	if err != nil {
		return nil, err
	}

	err = MapOperations(collection, func(_ resource.Resource, op resource.Operation) (resource.Operation, bool, error) {
		return f.resolveLinks(op), true, nil
	})
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (f *LinkFactory) resolveLinks(op resource.Operation) resource.Operation {
	declared := op.URIVariables()
	variables := f.resourceLinks(op, declared)
	if len(variables) == 0 && op.Kind().IsItem() {
		variables = f.identifierLinks(op)
	}
	for i, link := range variables {
		variables[i] = f.completeLink(link)
	}
	if len(variables) > 0 || len(declared) > 0 {
		op = op.WithURIVariables(variables)
	}

	declaredLinks := op.Links()
	links := f.resourceLinks(op, declaredLinks)
	for i, link := range links {
		links[i] = f.completeLink(link)
	}
	for _, link := range f.CreateLinksFromRelations(op) {
		if !containsLink(links, link) {
			links = append(links, link)
		}
	}
	if len(links) > 0 || len(declaredLinks) > 0 {
		op = op.WithLinks(links)
	}
	return op
}

// resourceLinks drops links pointing to a class that is not exposed as a resource
func (f *LinkFactory) resourceLinks(op resource.Operation, links []resource.Link) []resource.Link {
	kept := links[:0]
	for _, link := range links {
		if link.ToClass != "" && !f.resolver.IsResourceClass(link.ToClass) {
			f.logger.Debug("discarding link to a non resource class",
				zap.String("class", op.Class()),
				zap.String("operation", op.Name()),
				zap.String("target", link.ToClass),
			)
			continue
		}
		kept = append(kept, link)
	}
	return kept
}

// identifierLinks binds the identifiers of the persistence class to uri variables.
// Several identifiers are folded into one composite "id" variable unless the
// operation disables composite identifiers.
func (f *LinkFactory) identifierLinks(op resource.Operation) []resource.Link {
	identifiers := f.identifiers(persistenceClass(op))

	composite := true
	if v, ok := op.ExtraProperty(ExtraCompositeIdentifier); ok {
		if b, isBool := v.(bool); isBool {
			composite = b
		}
	}

	if len(identifiers) > 1 && composite {
		return []resource.Link{{
			ParameterName:       "id",
			FromClass:           op.Class(),
			Identifiers:         identifiers,
			CompositeIdentifier: true,
		}}
	}

	links := make([]resource.Link, 0, len(identifiers))
	for _, id := range identifiers {
		links = append(links, resource.Link{
			ParameterName: id,
			FromClass:     op.Class(),
			Identifiers:   []string{id},
		})
	}
	return links
}

// CreateLinksFromRelations synthesizes one link per inverse side association of the
// operation's persistence class whose target is a resource class. Owning sides are
// skipped because their identifier link is declared explicitly.
func (f *LinkFactory) CreateLinksFromRelations(op resource.Operation) []resource.Link {
	class := persistenceClass(op)
	manager := f.managers.ManagerForClass(class)
	if manager == nil {
		return nil
	}

	properties, err := manager.PropertyNames(class)
	if err != nil {
		return nil
	}

	var links []resource.Link
	for _, property := range properties {
		if !manager.HasAssociation(class, property) {
			continue
		}
		mappedBy := manager.AssociationMappedBy(class, property)
		if mappedBy == "" {
			continue
		}
		target := manager.AssociationTarget(class, property)
		if target == "" || !f.resolver.IsResourceClass(target) {
			continue
		}

		link := f.completeLink(resource.Link{
			FromProperty: property,
			ToProperty:   mappedBy,
			FromClass:    op.Class(),
			ToClass:      target,
		})
		links = append(links, link)

		f.logger.Debug("synthesized inverse side link",
			zap.String("class", op.Class()),
			zap.String("property", property),
			zap.String("mapped_by", mappedBy),
			zap.String("target", target),
		)
	}
	return links
}

// completeLink fills missing identifiers from the class the link starts from
func (f *LinkFactory) completeLink(link resource.Link) resource.Link {
	if len(link.Identifiers) > 0 {
		return link
	}
	class := link.FromClass
	if class == "" {
		class = link.ToClass
	}
	return link.WithIdentifiers(f.identifiers(class))
}

func (f *LinkFactory) identifiers(class string) []string {
	if manager := f.managers.ManagerForClass(class); manager != nil {
		return slices.Clone(manager.Identifiers(class))
	}
	return slices.Clone(defaultIdentifiers)
}

// persistenceClass returns the class holding the operation's data: the alternate
// model class of the state options when set, else the resource class itself
func persistenceClass(op resource.Operation) string {
	if so := op.StateOptions(); so != nil && so.PersistenceClass() != "" {
		return so.PersistenceClass()
	}
	return op.Class()
}

func containsLink(links []resource.Link, link resource.Link) bool {
	for _, l := range links {
		if l.Equal(link) {
			return true
		}
	}
	return false
}
