package access

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "João" -> "Joao").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// CanonicalName normalizes a subject name for storage: diacritics removed,
// surrounding whitespace trimmed, internal runs of whitespace collapsed to a
// single space. The identities table holds canonical names, so two
// enrollments of "João " and "joao" differ only in case.
func CanonicalName(name string) string {
	name = RemoveDiacritics(name)
	return strings.Join(strings.Fields(name), " ")
}
