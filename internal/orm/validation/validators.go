package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/conduit-lang/resourcemeta/internal/metadata/resource"
)

// Input is the raw request input of one parameter. A query string carries text only,
// so numeric validators parse the values themselves.
type Input struct {
	Values []string
	// Present is false when the parameter was not sent at all
	Present bool
	// Array is true when the parameter was sent with array notation or repeated
	Array bool
}

// Validator defines the interface for parameter validators
type Validator interface {
	Validate(in Input) error
}

// NotNullValidator requires the parameter to be sent
type NotNullValidator struct{}

// Validate implements the Validator interface
func (v *NotNullValidator) Validate(in Input) error {
	if !in.Present {
		return fmt.Errorf("is required")
	}
	return nil
}

// NotBlankValidator rejects empty values; AllowNull accepts an absent parameter
type NotBlankValidator struct {
	AllowNull bool
}

// Validate implements the Validator interface
func (v *NotBlankValidator) Validate(in Input) error {
	if !in.Present {
		if v.AllowNull {
			return nil
		}
		return fmt.Errorf("should not be blank")
	}
	for _, value := range in.Values {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("should not be blank")
		}
	}
	return nil
}

// ComparisonValidator compares numeric values with a bound
type ComparisonValidator struct {
	Kind  resource.ConstraintKind
	Bound any
}

// Validate implements the Validator interface
func (v *ComparisonValidator) Validate(in Input) error {
	bound, ok := toFloat64(v.Bound)
	if !ok {
		return fmt.Errorf("invalid %s constraint", v.Kind)
	}

	for _, value := range in.Values {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("expected numeric value")
		}

		switch v.Kind {
		case resource.ConstraintGreaterThan:
			if n <= bound {
				return fmt.Errorf("must be greater than %v", v.Bound)
			}
		case resource.ConstraintGreaterThanOrEqual:
			if n < bound {
				return fmt.Errorf("must be at least %v", v.Bound)
			}
		case resource.ConstraintLessThan:
			if n >= bound {
				return fmt.Errorf("must be less than %v", v.Bound)
			}
		case resource.ConstraintLessThanOrEqual:
			if n > bound {
				return fmt.Errorf("must be at most %v", v.Bound)
			}
		}
	}
	return nil
}

// PatternValidator validates values against a regex pattern
type PatternValidator struct {
	Pattern *regexp.Regexp
}

// Validate implements the Validator interface
func (v *PatternValidator) Validate(in Input) error {
	for _, value := range in.Values {
		if !v.Pattern.MatchString(value) {
			return fmt.Errorf("does not match required pattern")
		}
	}
	return nil
}

// LengthValidator bounds the character count of each value
type LengthValidator struct {
	Min *int
	Max *int
}

// Validate implements the Validator interface
func (v *LengthValidator) Validate(in Input) error {
	for _, value := range in.Values {
		n := utf8.RuneCountInString(value)
		if v.Min != nil && n < *v.Min {
			return fmt.Errorf("must be at least %d characters long", *v.Min)
		}
		if v.Max != nil && n > *v.Max {
			return fmt.Errorf("must be at most %d characters long", *v.Max)
		}
	}
	return nil
}

// CountValidator bounds the number of values of an array parameter
type CountValidator struct {
	Min *int
	Max *int
}

// Validate implements the Validator interface
func (v *CountValidator) Validate(in Input) error {
	n := len(in.Values)
	if v.Min != nil && n < *v.Min {
		return fmt.Errorf("must contain at least %d items", *v.Min)
	}
	if v.Max != nil && n > *v.Max {
		return fmt.Errorf("must contain at most %d items", *v.Max)
	}
	return nil
}

// DivisibleByValidator requires numeric values to be multiples of Factor
type DivisibleByValidator struct {
	Factor any
}

// Validate implements the Validator interface
func (v *DivisibleByValidator) Validate(in Input) error {
	factor, ok := toFloat64(v.Factor)
	if !ok || factor == 0 {
		return fmt.Errorf("invalid divisible_by constraint")
	}

	for _, value := range in.Values {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("expected numeric value")
		}
		remainder := math.Abs(math.Mod(n, factor))
		if remainder > 1e-9 && math.Abs(remainder-math.Abs(factor)) > 1e-9 {
			return fmt.Errorf("must be a multiple of %v", v.Factor)
		}
	}
	return nil
}

// UniqueValidator rejects repeated values
type UniqueValidator struct{}

// Validate implements the Validator interface
func (v *UniqueValidator) Validate(in Input) error {
	seen := make(map[string]bool, len(in.Values))
	for _, value := range in.Values {
		if seen[value] {
			return fmt.Errorf("contains duplicate value %q", value)
		}
		seen[value] = true
	}
	return nil
}

// ChoiceValidator restricts values to a fixed set
type ChoiceValidator struct {
	Choices []any
}

// Validate implements the Validator interface
func (v *ChoiceValidator) Validate(in Input) error {
	allowed := make([]string, len(v.Choices))
	for i, choice := range v.Choices {
		allowed[i] = fmt.Sprint(choice)
	}

	for _, value := range in.Values {
		found := false
		for _, a := range allowed {
			if value == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
		}
	}
	return nil
}

// TypeValidator checks the shape of the parameter. Only "array" can be told apart in
// a query string.
type TypeValidator struct {
	Type string
}

// Validate implements the Validator interface
func (v *TypeValidator) Validate(in Input) error {
	if v.Type == "array" && !in.Array {
		return fmt.Errorf("must be an array")
	}
	return nil
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
