package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "book", 4},
		{"book", "", 4},
		{"book", "book", 0},
		{"bok", "book", 1},
		{"kitten", "sitting", 3},
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestSuggest(t *testing.T) {
	classes := []string{"Author", "Book", "BookReview", "BookSummary", "Shelf"}

	assert.Equal(t, []string{"Book"}, Suggest("bok", classes))
	assert.Equal(t, []string{"Book", "BookReview", "BookSummary"}, Suggest("book", classes))
	assert.Equal(t, []string{"Author"}, Suggest("Autor", classes))
	assert.Equal(t, []string{"BookReview"}, Suggest("review", classes))
	assert.Empty(t, Suggest("Publisher", classes))
	assert.Empty(t, Suggest("Book", nil))
}
