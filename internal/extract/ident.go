package extract

import (
	"strconv"
	"strings"
	"unicode"
)

// Identifier is a hierarchical child identifier such as 2.1. Segments are
// positive. The zero value is the empty (top-level) identifier.
type Identifier []int

// ParseIdentifier reads the identifier of a child file or folder name. Only
// the shape children are created with counts: "<id>-<slug>.md" for a file and
// "<id>-<slug>" for its folder, where the slug is lower-case letters and digits
// joined by single hyphens. "2.1-some-slug.md" yields 2.1; "2024 journal.md",
// "2.md" and "3-Notes.txt" yield nothing.
func ParseIdentifier(name string) (id Identifier, ok bool) {
	stem := strings.TrimSuffix(name, childExt)
	token, slug, found := strings.Cut(stem, "-")
	if !found || !isSlug(slug) {
		return nil, false
	}

	parts := strings.Split(token, ".")
	id = make(Identifier, 0, len(parts))
	for _, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return nil, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, false
		}
		id = append(id, n)
	}
	return id, true
}

const childExt = ".md"

// isSlug reports whether s has the shape Slug produces.
func isSlug(s string) bool {
	if s == "" || strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if r == '-' {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// String returns the dot-joined form.
func (id Identifier) String() string {
	parts := make([]string, len(id))
	for i, n := range id {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// IsZero reports whether id is the top-level identifier.
func (id Identifier) IsZero() bool { return len(id) == 0 }

// Child returns id extended by n. id is not modified.
func (id Identifier) Child(n int) Identifier {
	out := make(Identifier, len(id), len(id)+1)
	copy(out, id)
	return append(out, n)
}

// HasPrefix reports whether p is a prefix of id.
func (id Identifier) HasPrefix(p Identifier) bool {
	if len(p) > len(id) {
		return false
	}
	for i := range p {
		if id[i] != p[i] {
			return false
		}
	}
	return true
}

// Less orders identifiers numerically segment by segment; 2 < 10 and a
// prefix sorts before its children.
func (id Identifier) Less(other Identifier) bool {
	for i := 0; i < len(id) && i < len(other); i++ {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return len(id) < len(other)
}

// Last returns the final segment, or 0 for the top level.
func (id Identifier) Last() int {
	if len(id) == 0 {
		return 0
	}
	return id[len(id)-1]
}
