package textproc

import (
	"strings"
	"unicode"
)

// Normalize collapses whitespace runs into single spaces, drops
// non-printable runes and trims the result. Printable non-Latin
// scripts pass through untouched. Total function: "" in, "" out.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
