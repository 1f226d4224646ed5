package validation

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/resourcemeta/internal/metadata/filter"
	"github.com/conduit-lang/resourcemeta/internal/metadata/identifier"
	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// Engine evaluates the derived constraints of operation parameters against request input
type Engine struct {
	logger *zap.Logger

	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

// NewEngine creates a new validation engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:   logger,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Validate checks the query and uri variables of a request against the parameters of
// op. All violations are collected into one *ValidationErrors.
func (e *Engine) Validate(
	ctx context.Context,
	op resource.Operation,
	query url.Values,
	uriVariables map[string]string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	errors := NewValidationErrors()

	for _, p := range op.Parameters().All() {
		if !p.HasConstraints() {
			continue
		}

		if p.Location() == resource.LocationURIVariable {
			value, ok := uriVariables[p.Key()]
			in := Input{Present: ok}
			if ok {
				in.Values = []string{value}
			}
			e.validate(p, p.Key(), in, errors)
			continue
		}

		for _, entry := range lookup(p.Key(), query) {
			e.validate(p, entry.path, entry.input, errors)
		}
	}

	e.validateIdentifiers(op, uriVariables, errors)

	if errors.HasErrors() {
		e.logger.Debug("request parameters rejected",
			zap.String("class", op.Class()),
			zap.String("operation", op.Name()),
			zap.Strings("paths", errors.Paths()),
		)
		return errors
	}
	return nil
}

// validateIdentifiers checks that every composite identifier variable, such as
// id=room=b;position=3, names all the identifiers of its class
func (e *Engine) validateIdentifiers(op resource.Operation, uriVariables map[string]string, errors *ValidationErrors) {
	for _, link := range op.URIVariables() {
		if !link.CompositeIdentifier {
			continue
		}
		value, ok := uriVariables[link.ParameterName]
		if !ok {
			continue
		}
		if _, err := identifier.Normalize(value, link.Identifiers); err != nil {
			errors.Add(link.ParameterName, err.Error())
		}
	}
}

// validate applies the constraints in order. Presence constraints run first; the
// remaining ones only apply to values that were sent.
func (e *Engine) validate(p resource.Parameter, path string, in Input, errors *ValidationErrors) {
	for _, c := range p.Constraints() {
		if !in.Present && c.Kind != resource.ConstraintNotNull && c.Kind != resource.ConstraintNotBlank {
			continue
		}

		validator, err := e.validatorFor(c)
		if err != nil {
			errors.Add(path, err.Error())
			continue
		}
		if err := validator.Validate(in); err != nil {
			message := err.Error()
			if c.Message != "" {
				message = c.Message
			}
			errors.Add(path, message)

			if c.Kind == resource.ConstraintNotNull || c.Kind == resource.ConstraintNotBlank {
				return
			}
		}
	}
}

func (e *Engine) validatorFor(c resource.Constraint) (Validator, error) {
	switch c.Kind {
	case resource.ConstraintNotNull:
		return &NotNullValidator{}, nil
	case resource.ConstraintNotBlank:
		return &NotBlankValidator{AllowNull: c.AllowNull}, nil
	case resource.ConstraintGreaterThan, resource.ConstraintGreaterThanOrEqual,
		resource.ConstraintLessThan, resource.ConstraintLessThanOrEqual:
		return &ComparisonValidator{Kind: c.Kind, Bound: c.Value}, nil
	case resource.ConstraintRegex:
		pattern, err := e.compile(c.Value)
		if err != nil {
			return nil, err
		}
		return &PatternValidator{Pattern: pattern}, nil
	case resource.ConstraintLength:
		return &LengthValidator{Min: c.Min, Max: c.Max}, nil
	case resource.ConstraintCount:
		return &CountValidator{Min: c.Min, Max: c.Max}, nil
	case resource.ConstraintDivisibleBy:
		return &DivisibleByValidator{Factor: c.Value}, nil
	case resource.ConstraintUnique:
		return &UniqueValidator{}, nil
	case resource.ConstraintChoice:
		return &ChoiceValidator{Choices: c.Choices}, nil
	case resource.ConstraintType:
		return &TypeValidator{Type: fmt.Sprint(c.Value)}, nil
	default:
		return nil, fmt.Errorf("unsupported constraint %s", c.Kind)
	}
}

// compile caches compiled patterns; the pattern text is stored raw on the constraint
func (e *Engine) compile(value any) (*regexp.Regexp, error) {
	raw, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("invalid pattern constraint")
	}

	e.mu.RLock()
	pattern, ok := e.patterns[raw]
	e.mu.RUnlock()
	if ok {
		return pattern, nil
	}

	pattern, err := regexp.Compile(raw)
	if err != nil {
		e.logger.Warn("invalid parameter pattern", zap.String("pattern", raw), zap.Error(err))
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	e.mu.Lock()
	e.patterns[raw] = pattern
	e.mu.Unlock()
	return pattern, nil
}

type lookupEntry struct {
	path  string
	input Input
}

// lookup reads the input of a parameter key from the query. Keys holding the property
// placeholder, such as order[:property], match every sent key of that shape and each
// match is validated under its own path, e.g. order[title].
func lookup(key string, query url.Values) []lookupEntry {
	if !strings.Contains(key, filter.PropertyPlaceholder) {
		return []lookupEntry{{path: key, input: inputFor(key, query)}}
	}

	expr := strings.Replace(regexp.QuoteMeta(key), regexp.QuoteMeta(filter.PropertyPlaceholder), `[^\[\]]+`, 1)
	matcher := regexp.MustCompile("^" + expr + `(\[\])?$`)

	seen := make(map[string]bool)
	var entries []lookupEntry
	for _, sent := range sortedQueryKeys(query) {
		if !matcher.MatchString(sent) {
			continue
		}
		path := strings.TrimSuffix(sent, "[]")
		if seen[path] {
			continue
		}
		seen[path] = true
		entries = append(entries, lookupEntry{path: path, input: inputFor(path, query)})
	}

	if len(entries) == 0 {
		return []lookupEntry{{path: key, input: Input{}}}
	}
	return entries
}

func inputFor(key string, query url.Values) Input {
	base := strings.TrimSuffix(key, "[]")
	scalar, hasScalar := query[base]
	list, hasList := query[base+"[]"]

	in := Input{Present: hasScalar || hasList}
	in.Values = append(in.Values, scalar...)
	in.Values = append(in.Values, list...)
	in.Array = hasList || len(in.Values) > 1
	return in
}

func sortedQueryKeys(query url.Values) []string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
