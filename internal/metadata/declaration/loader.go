package declaration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/resourcemeta/internal/metadata/filter"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
	"github.com/conduit-lang/resourcemeta/internal/orm/schema"
)

// backendOrder is the priority in which backends claim a class
var backendOrder = []string{
	resource.BackendORM,
	resource.BackendDocument,
	resource.BackendSearch,
	resource.BackendLite,
}

// Set is everything built from a group of declaration files
type Set struct {
	Source   *Source
	Managers *schema.ManagerRegistry
	Filters  *filter.Locator
}

// Parse decodes one declaration document
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse declarations: %w", err)
	}
	return &doc, nil
}

// LoadFiles reads declaration files. A path naming a directory loads every
// *.yaml and *.yml file in it, in lexical order.
func LoadFiles(paths ...string) (*Set, error) {
	var docs []*Document
	for _, path := range paths {
		files, err := expand(path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", file, err)
			}
			doc, err := Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			docs = append(docs, doc)
		}
	}
	return Build(docs...)
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// Build merges documents into a declaration source, one schema registry per backend
// and a filter locator. A class declared in two documents is an error.
func Build(docs ...*Document) (*Set, error) {
	set := &Set{
		Source:   newSource(),
		Managers: schema.NewManagerRegistry(),
		Filters:  filter.NewLocator(),
	}

	registries := make(map[string]*schema.Registry, len(backendOrder))
	for _, backend := range backendOrder {
		registry := schema.NewRegistry(backend)
		registries[backend] = registry
		set.Managers.Add(registry)
	}

	var errs []error
	for _, doc := range docs {
		for _, class := range sortedKeys(doc.Resources) {
			if err := set.Source.add(class, doc.Resources[class]); err != nil {
				errs = append(errs, err)
			}
		}

		for _, class := range sortedKeys(doc.Mappings) {
			if err := register(registries, class, doc.Mappings[class]); err != nil {
				errs = append(errs, err)
			}
		}

		for _, id := range sortedKeys(doc.Filters) {
			f, err := buildFilter(doc.Filters[id])
			if err != nil {
				errs = append(errs, fmt.Errorf("filter %s: %w", id, err))
				continue
			}
			if err := set.Filters.Register(id, f); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, backend := range backendOrder {
		if err := registries[backend].ValidateAll(); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func register(registries map[string]*schema.Registry, class string, m Mapping) error {
	backend := m.Backend
	if backend == "" {
		backend = resource.BackendORM
	}
	registry, ok := registries[backend]
	if !ok {
		return fmt.Errorf("mapping %s: unknown backend %q", class, backend)
	}

	s := schema.NewResourceSchema(class)
	if m.Table != "" {
		s.TableName = m.Table
	}
	s.Identifiers = m.Identifiers
	s.ReadOnly = m.ReadOnly

	for _, f := range m.Fields {
		typ, err := schema.ParsePrimitiveType(f.Type)
		if err != nil {
			return fmt.Errorf("mapping %s.%s: %w", class, f.Name, err)
		}
		s.AddField(&schema.Field{Name: f.Name, Type: typ, Nullable: f.Nullable, EnumValues: f.Enum})
	}

	for _, a := range m.Associations {
		typ, err := schema.ParseRelationType(a.Type)
		if err != nil {
			return fmt.Errorf("mapping %s.%s: %w", class, a.Name, err)
		}
		s.AddRelationship(&schema.Relationship{
			Type:           typ,
			TargetResource: a.Target,
			FieldName:      a.Name,
			Nullable:       a.Nullable,
			ForeignKey:     a.ForeignKey,
			MappedBy:       a.MappedBy,
			InversedBy:     a.InversedBy,
			JoinTable:      a.JoinTable,
		})
	}

	return registry.Register(s)
}

func buildFilter(f Filter) (filter.Filter, error) {
	if len(f.Descriptions) > 0 {
		entries := make([]filter.Description, 0, len(f.Descriptions))
		for _, e := range f.Descriptions {
			entries = append(entries, filter.Description{
				Key:      e.Key,
				Property: e.Property,
				Required: e.Required,
				Schema:   e.Schema,
				OpenAPI:  e.OpenAPI.toResource(),
			})
		}
		return filter.NewStaticFilter(entries, f.Properties), nil
	}
	return filter.New(f.Type, f.Properties, f.Strategies, f.ParameterName)
}

func (o *OpenAPI) toResource() *resource.OpenAPIParameter {
	if o == nil {
		return nil
	}
	return &resource.OpenAPIParameter{Name: o.Name, In: o.In, AllowEmptyValue: o.AllowEmptyValue}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
