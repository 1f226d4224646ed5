package ui

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxSuggestions bounds the number of names returned by Suggest
const MaxSuggestions = 3

// Suggest returns the candidates closest to target, closest first. A candidate is
// close when its edit distance is at most a third of its length (and at least 1),
// or when one name contains the other. Matching ignores case.
//
// Example:
//
//	Suggest("book", []string{"Author", "Book", "BookReview"}) // ["Book", "BookReview"]
func Suggest(target string, candidates []string) []string {
	type match struct {
		name     string
		distance int
	}

	lower := strings.ToLower(target)
	var matches []match
	for _, candidate := range candidates {
		c := strings.ToLower(candidate)
		d := Distance(lower, c)

		limit := utf8.RuneCountInString(c) / 3
		if limit < 1 {
			limit = 1
		}
		if d <= limit || (lower != "" && (strings.Contains(c, lower) || strings.Contains(lower, c))) {
			matches = append(matches, match{name: candidate, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].name < matches[j].name
	})

	out := make([]string, 0, MaxSuggestions)
	for i := 0; i < len(matches) && i < MaxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// Distance returns the Levenshtein distance between a and b, counted in runes
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
