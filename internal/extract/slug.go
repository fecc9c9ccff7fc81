package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	slugTokens      = 3
	placeholderSlug = "note"
)

var lower = cases.Lower(language.Und)

// Slug returns the first three alphanumeric tokens of text, lower-cased,
// stripped of accents and hyphen-joined. It returns "" when text has none.
func Slug(text string) string {
	tokens := tokens(fold(text))
	if len(tokens) > slugTokens {
		tokens = tokens[:slugTokens]
	}
	return strings.Join(tokens, "-")
}

// fold lower-cases s and removes combining marks, so "Émile" becomes "emile".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return lower.String(out)
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// slugFor picks the slug of a new child: from the extracted text, else from
// the destination name without its identifier, else the placeholder.
func slugFor(text string, dest Destination) string {
	if s := Slug(text); s != "" {
		return s
	}
	name := dest.Name
	if _, ok := ParseIdentifier(name); ok {
		name = strings.TrimLeft(name, "0123456789.")
	}
	if s := Slug(name); s != "" {
		return s
	}
	return placeholderSlug
}
