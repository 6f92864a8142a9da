package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 100

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	separatorRun = regexp.MustCompile(`[\s-]+`)
)

// Slug derives the URL slug from title and brand: transliterated to
// base Latin, lowercased, non-alphanumerics stripped, separator runs
// collapsed to single hyphens, capped at 100 characters. Deterministic;
// uniqueness is the storage layer's problem.
func Slug(title, brand string) string {
	full := title
	if brand != "" {
		full = brand + " " + title
	}

	// The transform chain carries internal buffers, so build it per
	// call; Slug must stay safe for concurrent normalization workers.
	deaccent := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(deaccent, full); err == nil {
		full = out
	}

	s := strings.ToLower(full)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = separatorRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	return s
}
