package identifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComposite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
		wantErr  bool
	}{
		{
			name:     "two keys",
			input:    "ida=1;idb=2",
			expected: map[string]string{"ida": "1", "idb": "2"},
		},
		{
			name:     "value containing equals",
			input:    "a=x=y;b=2",
			expected: map[string]string{"a": "x=y", "b": "2"},
		},
		{
			name:     "empty value is allowed",
			input:    "a=;b=2",
			expected: map[string]string{"a": "", "b": "2"},
		},
		{name: "empty string", input: "", wantErr: true},
		{name: "segment without equals", input: "a=1;b", wantErr: true},
		{name: "trailing separator", input: "a=1;", wantErr: true},
		{name: "missing key", input: "=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseComposite(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidIdentifier))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("all identifiers present", func(t *testing.T) {
		got, err := Normalize("ida=1;idb=2", []string{"ida", "idb"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ida": "1", "idb": "2"}, got)
	})

	t.Run("names the first missing key", func(t *testing.T) {
		_, err := Normalize("idbad=1;idb=2", []string{"ida", "idb"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
		assert.Contains(t, err.Error(), `"ida" was not found`)
	})

	t.Run("round trip through format", func(t *testing.T) {
		ids := []string{"ida", "idb"}
		value := Format(map[string]string{"idb": "2", "ida": "1"}, ids)
		assert.Equal(t, "ida=1;idb=2", value)

		got, err := Normalize(value, ids)
		require.NoError(t, err)
		assert.Equal(t, "1", got["ida"])
	})
}
