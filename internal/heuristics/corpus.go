package heuristics

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/cv-autofill/pkg/textx"
)

var lineBreakRe = regexp.MustCompile(`\r?\n`)

// LineCorpus is extracted text split into trimmed, non-empty lines in
// document order. It is shared read-only by every field extractor.
type LineCorpus []string

// NewLineCorpus splits raw extracted text into a LineCorpus.
func NewLineCorpus(text string) LineCorpus {
	text = textx.SanitizeText(text)
	if text == "" {
		return LineCorpus{}
	}
	parts := lineBreakRe.Split(text, -1)
	out := make(LineCorpus, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Text joins the corpus back into newline-separated text.
func (c LineCorpus) Text() string { return strings.Join(c, "\n") }
