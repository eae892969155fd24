package heuristics

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var wordRunRe = regexp.MustCompile(`[\p{L}\p{N}_]\S*`)

// ProperCase upper-cases the first letter of every word and lower-cases the
// rest of it. A word starts at a letter, digit or underscore and runs to the
// next whitespace.
func ProperCase(s string) string {
	return wordRunRe.ReplaceAllStringFunc(s, func(w string) string {
		r, size := utf8.DecodeRuneInString(w)
		return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	})
}

// keywordRe compiles a case-insensitive alternation of literal keywords.
// With whole set, each keyword must stand as its own token.
func keywordRe(words []string, whole bool) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		return regexp.MustCompile(`[^\x00-\x{10FFFF}]`)
	}
	alt := `(?:` + strings.Join(quoted, "|") + `)`
	if whole {
		alt = `\b` + alt + `\b`
	}
	return regexp.MustCompile(`(?i)` + alt)
}

func lowerSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			m[w] = true
		}
	}
	return m
}
