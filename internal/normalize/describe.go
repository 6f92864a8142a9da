package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// shortDescriptionLen is the threshold below which a source description
// is considered too thin to publish and gets synthesized instead.
const shortDescriptionLen = 50

// specPrefix marks CSV columns that carry specification pairs, e.g.
// "spec_voltaj" → "voltaj".
const specPrefix = "spec_"

const maxSpecs = 3

type Spec struct {
	Key   string
	Value string
}

// FlattenHTML reduces an HTML description to its text content. Plain
// text passes through untouched.
func FlattenHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

// Enrich produces the published description. Short sources get a
// templated text from title, brand and up to three specification pairs
// in feed order; longer ones are wrapped with the promo prefix and
// suffix. A pure text transform, nothing more.
func Enrich(description, title, brand string, specs []Spec) string {
	if utf8.RuneCountInString(description) < shortDescriptionLen {
		var b strings.Builder
		b.WriteString("Descoperă " + title)
		if brand != "" {
			b.WriteString(" de la " + brand)
		}
		b.WriteString(". ")
		if len(specs) > 0 {
			b.WriteString("Caracteristici principale: ")
			n := len(specs)
			if n > maxSpecs {
				n = maxSpecs
			}
			parts := make([]string, 0, n)
			for _, sp := range specs[:n] {
				parts = append(parts, sp.Key+": "+sp.Value)
			}
			b.WriteString(strings.Join(parts, ", "))
		}
		return b.String()
	}

	return "🛒 " + description + "\n\nComandă " + title + " acum și beneficiezi de livrare rapidă."
}
