package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics, so "Balcón" and "balcon" compare
// equal. Listing text is written by hand and accents are used inconsistently.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

// ContainsAny reports whether the folded haystack contains any of the folded
// needles.
func ContainsAny(haystack string, needles ...string) bool {
	h := Fold(haystack)
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(h, Fold(n)) {
			return true
		}
	}
	return false
}
