// Package textnorm holds the small text normalizers shared by the cipher packages.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// LettersOnly drops every rune that is not a Unicode letter.
func LettersOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripWhitespace removes all whitespace, keeping punctuation and digits.
func StripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Canonical returns s in Unicode NFC so that composed and decomposed
// spellings of the same letter are treated as one rune.
func Canonical(s string) string {
	return norm.NFC.String(s)
}
