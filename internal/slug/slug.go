// Package slug turns free text into URL and object-key safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^\w-]`)
)

// Make lowercases s, joins whitespace runs with hyphens and drops accents
// and every character that is not a letter, digit, underscore or hyphen.
func Make(s string) string {
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	return strings.ToLower(nonWord.ReplaceAllString(s, ""))
}
