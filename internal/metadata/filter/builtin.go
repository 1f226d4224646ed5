package filter

import (
	"fmt"
	"slices"
)

// Search strategies
const (
	StrategyExact   = "exact"
	StrategyPartial = "partial"
	StrategyStart   = "start"
	StrategyEnd     = "end"
)

// SearchFilter matches properties by value with a per-property strategy
type SearchFilter struct {
	properties []string
	strategies map[string]string
}

// NewSearchFilter creates a search filter; properties keep the given order
func NewSearchFilter(properties []string, strategies map[string]string) *SearchFilter {
	f := &SearchFilter{properties: slices.Clone(properties), strategies: make(map[string]string)}
	for _, p := range properties {
		strategy := strategies[p]
		if strategy == "" {
			strategy = StrategyExact
		}
		f.strategies[p] = strategy
	}
	return f
}

// Strategy returns the matching strategy of a property
func (f *SearchFilter) Strategy(property string) string { return f.strategies[property] }

func (f *SearchFilter) Properties() []string { return slices.Clone(f.properties) }

func (f *SearchFilter) Description(string) []Description {
	return []Description{
		{
			Key:      PropertyPlaceholder,
			Property: PropertyPlaceholder,
			Type:     "string",
			Schema:   map[string]any{"type": "string"},
		},
		{
			Key:          PropertyPlaceholder + "[]",
			Property:     PropertyPlaceholder,
			Type:         "string",
			IsCollection: true,
			Schema:       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
}

// OrderFilter sorts collections by properties
type OrderFilter struct {
	parameterName string
	properties    []string
}

// NewOrderFilter creates an order filter reading "<parameterName>[<property>]"
func NewOrderFilter(parameterName string, properties []string) *OrderFilter {
	if parameterName == "" {
		parameterName = "order"
	}
	return &OrderFilter{parameterName: parameterName, properties: slices.Clone(properties)}
}

func (f *OrderFilter) Properties() []string { return slices.Clone(f.properties) }

func (f *OrderFilter) Description(string) []Description {
	return []Description{{
		Key:      fmt.Sprintf("%s[%s]", f.parameterName, PropertyPlaceholder),
		Property: PropertyPlaceholder,
		Type:     "string",
		Schema:   map[string]any{"type": "string", "enum": []any{"asc", "desc"}},
	}}
}

var rangeOperators = []string{"between", "gt", "gte", "lt", "lte"}

// RangeFilter compares numeric properties
type RangeFilter struct {
	properties []string
}

// NewRangeFilter creates a range filter
func NewRangeFilter(properties []string) *RangeFilter {
	return &RangeFilter{properties: slices.Clone(properties)}
}

func (f *RangeFilter) Properties() []string { return slices.Clone(f.properties) }

func (f *RangeFilter) Description(string) []Description {
	out := make([]Description, 0, len(rangeOperators))
	for _, op := range rangeOperators {
		d := Description{
			Key:      fmt.Sprintf("%s[%s]", PropertyPlaceholder, op),
			Property: PropertyPlaceholder,
			Type:     "string",
			Schema:   map[string]any{"type": "number"},
		}
		if op == "between" {
			d.Schema = map[string]any{"type": "string", "pattern": `^-?\d+(\.\d+)?\.\.-?\d+(\.\d+)?$`}
		}
		out = append(out, d)
	}
	return out
}

// BooleanFilter matches boolean properties
type BooleanFilter struct {
	properties []string
}

// NewBooleanFilter creates a boolean filter
func NewBooleanFilter(properties []string) *BooleanFilter {
	return &BooleanFilter{properties: slices.Clone(properties)}
}

func (f *BooleanFilter) Properties() []string { return slices.Clone(f.properties) }

func (f *BooleanFilter) Description(string) []Description {
	return []Description{{
		Key:      PropertyPlaceholder,
		Property: PropertyPlaceholder,
		Type:     "bool",
		Schema:   map[string]any{"type": "boolean"},
	}}
}

// ExistsFilter matches on the presence of nullable properties
type ExistsFilter struct {
	parameterName string
	properties    []string
}

// NewExistsFilter creates an exists filter reading "<parameterName>[<property>]"
func NewExistsFilter(parameterName string, properties []string) *ExistsFilter {
	if parameterName == "" {
		parameterName = "exists"
	}
	return &ExistsFilter{parameterName: parameterName, properties: slices.Clone(properties)}
}

func (f *ExistsFilter) Properties() []string { return slices.Clone(f.properties) }

func (f *ExistsFilter) Description(string) []Description {
	return []Description{{
		Key:      fmt.Sprintf("%s[%s]", f.parameterName, PropertyPlaceholder),
		Property: PropertyPlaceholder,
		Type:     "bool",
		Schema:   map[string]any{"type": "boolean"},
	}}
}

var dateOperators = []string{"before", "strictly_before", "after", "strictly_after"}

// DateFilter compares date properties
type DateFilter struct {
	properties []string
}

// NewDateFilter creates a date filter
func NewDateFilter(properties []string) *DateFilter {
	return &DateFilter{properties: slices.Clone(properties)}
}

func (f *DateFilter) Properties() []string { return slices.Clone(f.properties) }

func (f *DateFilter) Description(string) []Description {
	out := make([]Description, 0, len(dateOperators))
	for _, op := range dateOperators {
		out = append(out, Description{
			Key:      fmt.Sprintf("%s[%s]", PropertyPlaceholder, op),
			Property: PropertyPlaceholder,
			Type:     "string",
			Schema:   map[string]any{"type": "string", "format": "date-time"},
		})
	}
	return out
}

// StaticFilter returns a fixed description, for filters configured entirely by declaration
type StaticFilter struct {
	entries    []Description
	properties []string
}

// NewStaticFilter creates a filter with a fixed description
func NewStaticFilter(entries []Description, properties []string) *StaticFilter {
	return &StaticFilter{entries: slices.Clone(entries), properties: slices.Clone(properties)}
}

func (f *StaticFilter) Properties() []string { return slices.Clone(f.properties) }

func (f *StaticFilter) Description(string) []Description {
	out := make([]Description, len(f.entries))
	for i, d := range f.entries {
		d.Schema = cloneSchema(d.Schema)
		out[i] = d
	}
	return out
}

// New builds a built-in filter by type name
func New(kind string, properties []string, strategies map[string]string, parameterName string) (Filter, error) {
	switch kind {
	case "search":
		return NewSearchFilter(properties, strategies), nil
	case "order":
		return NewOrderFilter(parameterName, properties), nil
	case "range":
		return NewRangeFilter(properties), nil
	case "boolean":
		return NewBooleanFilter(properties), nil
	case "exists":
		return NewExistsFilter(parameterName, properties), nil
	case "date":
		return NewDateFilter(properties), nil
	default:
		return nil, fmt.Errorf("unknown filter type: %s", kind)
	}
}
