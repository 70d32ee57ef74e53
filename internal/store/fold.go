package store

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldQuery reduces a query to a comparison key: accents stripped, lower
// case, inner whitespace collapsed. "Café  Society" and "cafe society" fold
// to the same key.
func FoldQuery(q string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, q)
	if err != nil {
		folded = q
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
