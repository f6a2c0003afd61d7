// Package textnorm cleans complaint text before it reaches a sentiment classifier.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s, removes every rune that is not an ASCII letter or
// Unicode whitespace, collapses whitespace runs to a single space and trims
// the ends.
// It never fails and Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokens splits normalized text into words.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
