package heuristics

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

const educationWindow = 1500

var (
	skillSplitRe       = regexp.MustCompile(`[,•\-–—]`)
	educationHeaderRe  = regexp.MustCompile(`(?i)education|academic background`)
	yearRe             = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	experienceHeadRe   = regexp.MustCompile(`(?s)([A-Z][A-Z\s\-.&]+?),\s*(.*?),\s*([A-Z]{2,}(?: [A-Z]{2,})*|[A-Z][a-z\s]+)?\s*(20\d{2})\s*[-–]\s*(20\d{2}|Present)\s*\n`)
	experienceBoundary = regexp.MustCompile(`\n[A-Z\s]+,\s`)
	whitespaceRe       = regexp.MustCompile(`\s+`)
)

// Skills matches the closed soft-skill vocabulary in two passes: exact
// fragments of skills-section lines first, then phrase containment anywhere.
// The union keeps first-seen order.
func (e *Extractor) Skills(lines LineCorpus) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, l := range lines {
		low := strings.ToLower(l)
		if !containsAny(low, e.sectionWords) {
			continue
		}
		for _, frag := range skillSplitRe.Split(low, -1) {
			if i := strings.LastIndexByte(frag, ':'); i >= 0 {
				frag = frag[i+1:]
			}
			if frag = strings.TrimSpace(frag); e.softSkills[frag] {
				add(frag)
			}
		}
	}
	for _, l := range lines {
		low := strings.ToLower(l)
		for _, s := range e.skillPhrases {
			if strings.Contains(low, s) {
				add(s)
			}
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Education scans the window after the first education header pairwise. Any
// pair carrying a year, degree keyword or institution keyword becomes an
// entry holding the first match of each, and the scan skips the pair's
// second line.
func (e *Extractor) Education(text string) []domain.Education {
	loc := educationHeaderRe.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	block := []rune(text[loc[1]:])
	if len(block) > educationWindow {
		block = block[:educationWindow]
	}
	lines := NewLineCorpus(string(block))

	var out []domain.Education
	for i := 0; i+1 < len(lines); i++ {
		group := lines[i] + " " + lines[i+1]
		entry := domain.Education{
			Institution: e.institutionRe.FindString(group),
			Degree:      e.degreeRe.FindString(group),
			Year:        yearRe.FindString(group),
		}
		if entry == (domain.Education{}) {
			continue
		}
		out = append(out, entry)
		i++
	}
	return out
}

// Experience matches "COMPANY, CITY, COUNTRY YEAR - YEAR" headers in the raw
// text. Each description runs to the next company-like line or the end of
// the text.
func (e *Extractor) Experience(text string) []domain.Experience {
	var out []domain.Experience
	pos := 0
	for pos < len(text) {
		m := experienceHeadRe.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		group := func(n int) string {
			if m[2*n] < 0 {
				return ""
			}
			return text[pos+m[2*n] : pos+m[2*n+1]]
		}
		descStart := pos + m[1]
		if descStart >= len(text) {
			break
		}
		descEnd := len(text)
		if b := experienceBoundary.FindStringIndex(text[descStart+1:]); b != nil {
			descEnd = descStart + 1 + b[0]
		}
		out = append(out, e.experienceEntry(group(1), group(2), group(3), group(4), group(5), text[descStart:descEnd]))
		pos = descEnd
	}
	return out
}

func (e *Extractor) experienceEntry(companyRaw, city, country, start, end, roleAndDesc string) domain.Experience {
	company := companyRaw
	if i := strings.LastIndexByte(company, '\n'); i >= 0 {
		company = company[i+1:]
	}

	positionLine := strings.SplitN(roleAndDesc, ".", 2)[0]
	positionLine = strings.SplitN(positionLine, "\n", 2)[0]
	position := ""
	if e.jobTitleRe.MatchString(positionLine) {
		position = strings.TrimSpace(positionLine)
	}

	rest := roleAndDesc
	if positionLine != "" {
		rest = strings.Replace(roleAndDesc, positionLine, "", 1)
	}
	rest = whitespaceRe.ReplaceAllString(rest, " ")

	var where []string
	for _, p := range []string{city, country} {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			where = append(where, p)
		}
	}

	return domain.Experience{
		Company:          ProperCase(strings.Join(strings.Fields(company), " ")),
		Position:         ProperCase(position),
		Duration:         start + " - " + end,
		Location:         ProperCase(strings.Join(where, ", ")),
		Responsibilities: strings.TrimSpace(rest),
	}
}
