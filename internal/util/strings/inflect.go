package strings

import (
	"strings"
	"unicode"
)

var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
	"goose":  "geese",
}

// Pluralize returns the English plural of a lower case word
func Pluralize(word string) string {
	if word == "" {
		return word
	}

	if plural, ok := irregularPlurals[word]; ok {
		return plural
	}

	switch {
	case strings.HasSuffix(word, "y"):
		if len(word) > 1 && !isVowel(word[len(word)-2]) {
			return word[:len(word)-1] + "ies"
		}
		return word + "s"
	case strings.HasSuffix(word, "s") || strings.HasSuffix(word, "x") ||
		strings.HasSuffix(word, "z") || strings.HasSuffix(word, "ch") ||
		strings.HasSuffix(word, "sh"):
		return word + "es"
	case strings.HasSuffix(word, "fe"):
		return word[:len(word)-2] + "ves"
	case strings.HasSuffix(word, "f"):
		return word[:len(word)-1] + "ves"
	default:
		return word + "s"
	}
}

// ResourcePath converts a short name to its collection path segment:
// BookReview -> book_reviews
func ResourcePath(shortName string) string {
	snake := ToSnakeCase(shortName)
	idx := strings.LastIndex(snake, "_")
	return snake[:idx+1] + Pluralize(snake[idx+1:])
}

// ShortName returns the last segment of a namespaced class name:
// App\Entity\Book and app.entity.Book both give Book
func ShortName(class string) string {
	idx := strings.LastIndexFunc(class, func(r rune) bool {
		return r == '\\' || r == '.' || r == '/'
	})
	return class[idx+1:]
}

func isVowel(b byte) bool {
	return strings.ContainsRune("aeiou", unicode.ToLower(rune(b)))
}
