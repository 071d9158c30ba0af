package service

import (
	"strings"
	"unicode"
)

// Slugify derives the URL-safe article key from a title: the title is split
// on every non-alphanumeric character, empty fragments are dropped, each
// fragment is lowercased (ASCII lowering only) and the fragments are joined
// with hyphens. Pure and deterministic, so identical titles always produce
// identical slugs.
func Slugify(title string) string {
	fragments := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, fragment := range fragments {
		fragments[i] = asciiLower(fragment)
	}

	return strings.Join(fragments, "-")
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
