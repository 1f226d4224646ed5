package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors holds every violation found in one request, keyed by the
// property path of the parameter that caused it, e.g. order[title]
type ValidationErrors struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationErrors returns an empty violation set
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Fields: make(map[string][]string)}
}

// AsValidationErrors extracts the violations carried by err
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Add records a violation; a message already recorded for path is not repeated
func (ve *ValidationErrors) Add(path, message string) {
	if ve.Fields == nil {
		ve.Fields = make(map[string][]string)
	}
	for _, existing := range ve.Fields[path] {
		if existing == message {
			return
		}
	}
	ve.Fields[path] = append(ve.Fields[path], message)
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Fields) > 0
}

// Count is the number of violations over all paths
func (ve *ValidationErrors) Count() int {
	n := 0
	for _, messages := range ve.Fields {
		n += len(messages)
	}
	return n
}

// Paths returns the violated property paths in lexical order
func (ve *ValidationErrors) Paths() []string {
	paths := make([]string, 0, len(ve.Fields))
	for path := range ve.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Error lists the violations on one line, ordered by path:
// "2 invalid parameters: page must be at least 1; q should not be blank"
func (ve *ValidationErrors) Error() string {
	var b strings.Builder
	switch n := ve.Count(); n {
	case 0:
		return "no invalid parameters"
	case 1:
		b.WriteString("1 invalid parameter: ")
	default:
		fmt.Fprintf(&b, "%d invalid parameters: ", n)
	}

	first := true
	for _, path := range ve.Paths() {
		for _, message := range ve.Fields[path] {
			if !first {
				b.WriteString("; ")
			}
			first = false
			b.WriteString(path)
			b.WriteByte(' ')
			b.WriteString(message)
		}
	}
	return b.String()
}

// MarshalJSON writes the problem body returned for a rejected request
func (ve *ValidationErrors) MarshalJSON() ([]byte, error) {
	fields := ve.Fields
	if fields == nil {
		fields = map[string][]string{}
	}
	return json.Marshal(struct {
		Error      string              `json:"error"`
		Violations int                 `json:"violations"`
		Fields     map[string][]string `json:"fields"`
	}{
		Error:      "validation_failed",
		Violations: ve.Count(),
		Fields:     fields,
	})
}
