// Package textx holds small string helpers shared by the extraction code.
package textx

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText drops control characters other than tab, newline and carriage
// return, then trims surrounding whitespace. OCR and PDF text layers both
// emit stray NULs and form feeds.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127 && r != utf8.RuneError) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Truncate cuts s to at most n bytes without splitting a rune and marks the
// cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// JoinPages joins per-page text with a blank line, skipping pages that are
// empty after trimming.
func JoinPages(pages []string) string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
