package resource

import (
	"fmt"
	"strings"
)

// ConstraintKind represents the type of a derived validation rule
type ConstraintKind int

const (
	ConstraintNotNull ConstraintKind = iota
	ConstraintNotBlank
	ConstraintGreaterThan
	ConstraintLessThan
	ConstraintGreaterThanOrEqual
	ConstraintLessThanOrEqual
	ConstraintRegex
	ConstraintLength
	ConstraintCount
	ConstraintDivisibleBy
	ConstraintUnique
	ConstraintChoice
	ConstraintType
)

// String returns the string representation of the constraint kind
func (c ConstraintKind) String() string {
	switch c {
	case ConstraintNotNull:
		return "not_null"
	case ConstraintNotBlank:
		return "not_blank"
	case ConstraintGreaterThan:
		return "greater_than"
	case ConstraintLessThan:
		return "less_than"
	case ConstraintGreaterThanOrEqual:
		return "greater_than_or_equal"
	case ConstraintLessThanOrEqual:
		return "less_than_or_equal"
	case ConstraintRegex:
		return "regex"
	case ConstraintLength:
		return "length"
	case ConstraintCount:
		return "count"
	case ConstraintDivisibleBy:
		return "divisible_by"
	case ConstraintUnique:
		return "unique"
	case ConstraintChoice:
		return "choice"
	case ConstraintType:
		return "type"
	default:
		return "unknown"
	}
}

func parseConstraintKind(s string) (ConstraintKind, error) {
	for k := ConstraintNotNull; k <= ConstraintType; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown constraint kind: %s", s)
}

// Constraint is a validation rule derived from a parameter schema.
// Value holds the comparison operand, the regex pattern or the expected type;
// Min/Max hold length and count bounds.
type Constraint struct {
	Kind      ConstraintKind
	Value     any
	Min       *int
	Max       *int
	Choices   []any
	AllowNull bool
	Message   string
}

// String renders the constraint for display, e.g. "greater_than_or_equal(5)"
func (c Constraint) String() string {
	switch c.Kind {
	case ConstraintNotNull, ConstraintUnique:
		return c.Kind.String()
	case ConstraintNotBlank:
		if c.AllowNull {
			return "not_blank(allow_null)"
		}
		return c.Kind.String()
	case ConstraintLength, ConstraintCount:
		return fmt.Sprintf("%s(%s..%s)", c.Kind, bound(c.Min), bound(c.Max))
	case ConstraintChoice:
		parts := make([]string, len(c.Choices))
		for i, choice := range c.Choices {
			parts[i] = fmt.Sprint(choice)
		}
		return fmt.Sprintf("%s(%s)", c.Kind, strings.Join(parts, "|"))
	case ConstraintRegex:
		return fmt.Sprintf("%s(#%v#)", c.Kind, c.Value)
	default:
		return fmt.Sprintf("%s(%v)", c.Kind, c.Value)
	}
}

func bound(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}
