// Package identifier parses composite identifier strings of the form key=value;key=value.
package identifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned when a composite identifier does not parse or lacks a key
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ParseComposite splits "ida=1;idb=2" into {"ida": "1", "idb": "2"}.
// Values may contain "=" after the first one; an empty segment or a segment without
// "=" makes the whole identifier invalid.
func ParseComposite(value string) (map[string]string, error) {
	result := make(map[string]string)
	if value == "" {
		return nil, fmt.Errorf("%w %q: empty value", ErrInvalidIdentifier, value)
	}

	for _, segment := range strings.Split(value, ";") {
		key, val, ok := strings.Cut(segment, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w %q: segment %q is not key=value", ErrInvalidIdentifier, value, segment)
		}
		result[key] = val
	}

	return result, nil
}

// Normalize parses a composite identifier and checks that every expected identifier
// is present. The error names the first missing key in the order of identifiers.
func Normalize(value string, identifiers []string) (map[string]string, error) {
	parsed, err := ParseComposite(value)
	if err != nil {
		return nil, err
	}

	for _, id := range identifiers {
		if _, ok := parsed[id]; !ok {
			return nil, fmt.Errorf("%w %q, %q was not found", ErrInvalidIdentifier, value, id)
		}
	}

	return parsed, nil
}

// Format builds a composite identifier string from values, in the order of identifiers
func Format(values map[string]string, identifiers []string) string {
	parts := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		parts = append(parts, id+"="+values[id])
	}
	return strings.Join(parts, ";")
}
