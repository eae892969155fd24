package heuristics

import (
	"regexp"
	"strings"
)

var (
	nameLabelRe = regexp.MustCompile(`(?i)^(?:full\s+name|name)\b\s*[:\-]?\s*(.*)$`)

	emailRe        = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	emailKeywordRe = regexp.MustCompile(`(?i)email|e-mail`)

	phoneRe        = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?(?:\(?\d{2,4}\)?[\s.-]?)?\d{3,4}[\s.-]?\d{3,4}`)
	phoneKeywordRe = regexp.MustCompile(`(?i)phone|contact|mobile`)
	phoneTokenRe   = regexp.MustCompile(`\+?\d[\d\s().-]{8,}`)
	threeDigitsRe  = regexp.MustCompile(`\d{3}`)
	nonDigitRe     = regexp.MustCompile(`\D`)
)

// Name resolves the candidate name: a "Name:"/"Full Name:" labelled line
// first, then the first person entity. Empty when neither is present.
func (e *Extractor) Name(lines LineCorpus) (first, last, full string) {
	full = labelledName(lines)
	if full == "" {
		full = firstEntity(e.ner, lines, EntityPerson)
	}
	full = ProperCase(strings.Join(strings.Fields(full), " "))
	first, last = SplitName(full)
	return first, last, full
}

func labelledName(lines LineCorpus) string {
	for _, l := range lines {
		if m := nameLabelRe.FindStringSubmatch(l); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// SplitName splits a full name into the last token and everything before it.
// A single token is the first name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

// Email picks the address on the first line mentioning "email", otherwise the
// first consumer-domain address, otherwise the first address at all.
func (e *Extractor) Email(lines LineCorpus) string {
	for _, l := range lines {
		if emailKeywordRe.MatchString(l) && strings.Contains(l, "@") {
			return strings.ToLower(emailRe.FindString(l))
		}
	}
	var all []string
	for _, l := range lines {
		all = append(all, emailRe.FindAllString(l, -1)...)
	}
	for _, c := range all {
		domain := strings.ToLower(c[strings.LastIndexByte(c, '@')+1:])
		if e.consumerDomains[domain] {
			return strings.ToLower(c)
		}
	}
	if len(all) > 0 {
		return strings.ToLower(all[0])
	}
	return ""
}

// Phone picks the longest number on the first phone/contact/mobile line with
// three consecutive digits. Otherwise the first candidate with at least ten
// digits wins, then the first candidate.
func (e *Extractor) Phone(lines LineCorpus) string {
	for _, l := range lines {
		if !phoneKeywordRe.MatchString(l) || !threeDigitsRe.MatchString(l) {
			continue
		}
		best := ""
		for _, tok := range phoneTokenRe.FindAllString(l, -1) {
			if tok = strings.TrimSpace(tok); len(tok) > len(best) {
				best = tok
			}
		}
		return best
	}
	var all []string
	for _, l := range lines {
		for _, c := range phoneRe.FindAllString(l, -1) {
			all = append(all, strings.TrimSpace(c))
		}
	}
	for _, c := range all {
		if len(nonDigitRe.ReplaceAllString(c, "")) >= 10 {
			return c
		}
	}
	if len(all) > 0 {
		return all[0]
	}
	return ""
}

// Location returns the first line carrying an address keyword or a place entity.
func (e *Extractor) Location(lines LineCorpus) string {
	for _, l := range lines {
		if e.addressRe.MatchString(l) || hasEntity(e.ner, l, EntityPlace) {
			return l
		}
	}
	return ""
}
