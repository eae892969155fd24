package heuristics

import (
	"regexp"
	"strings"
)

// EntityKind classifies a recognized entity.
type EntityKind string

const (
	EntityPerson EntityKind = "PERSON"
	EntityPlace  EntityKind = "PLACE"
)

// Entity is a span of a line recognized as a person or a place.
type Entity struct {
	Text string
	Kind EntityKind
}

// EntityRecognizer finds person and place entities in a single line.
type EntityRecognizer interface {
	Entities(line string) []Entity
}

var (
	nameTokenRe   = regexp.MustCompile(`^(?:[A-Z][a-z]+(?:[-'][A-Z]?[a-z]+)*|[A-Z]\.)$`)
	honorificRe   = regexp.MustCompile(`^(?:Mr|Mrs|Ms|Miss|Dr|Engr|Atty)\.?$`)
	segmentSplit  = regexp.MustCompile(`\s*[|,•;]\s*`)
	nonPersonLine = regexp.MustCompile(`[0-9@:/\\]`)
)

// LexiconRecognizer is a deterministic recognizer built from capitalization
// rules and the place gazetteer of a Vocabulary.
type LexiconRecognizer struct {
	places  *regexp.Regexp
	exclude map[string]bool
}

// NewLexiconRecognizer builds a recognizer from v. Words that belong to any
// section, skill, title, address or place list never count as name tokens.
func NewLexiconRecognizer(v Vocabulary) *LexiconRecognizer {
	return &LexiconRecognizer{places: keywordRe(v.Places, true), exclude: nonNameWords(v)}
}

func nonNameWords(v Vocabulary) map[string]bool {
	exclude := lowerSet(v.NonNameWords)
	for _, list := range [][]string{
		v.AddressKeywords, v.SoftSkills, v.SkillSectionKeywords,
		v.DegreeKeywords, v.InstitutionKeywords, v.JobTitleKeywords, v.Places,
	} {
		for _, phrase := range list {
			for _, w := range strings.Fields(strings.ToLower(phrase)) {
				exclude[w] = true
			}
		}
	}
	return exclude
}

// Entities returns person entities first, then places, each in line order.
func (r *LexiconRecognizer) Entities(line string) []Entity {
	var out []Entity
	for _, seg := range segmentSplit.Split(line, -1) {
		if p := r.person(seg); p != "" {
			out = append(out, Entity{Text: p, Kind: EntityPerson})
		}
	}
	for _, loc := range r.places.FindAllStringIndex(line, -1) {
		text := line[loc[0]:loc[1]]
		if text[0] >= 'A' && text[0] <= 'Z' {
			out = append(out, Entity{Text: text, Kind: EntityPlace})
		}
	}
	return out
}

func (r *LexiconRecognizer) person(seg string) string {
	if nonPersonLine.MatchString(seg) {
		return ""
	}
	tokens := strings.Fields(seg)
	if len(tokens) > 0 && honorificRe.MatchString(tokens[0]) {
		tokens = tokens[1:]
	}
	if len(tokens) < 2 || len(tokens) > 4 {
		return ""
	}
	for _, t := range tokens {
		if !nameTokenRe.MatchString(t) || r.exclude[strings.ToLower(strings.TrimSuffix(t, "."))] {
			return ""
		}
	}
	return strings.Join(tokens, " ")
}

func firstEntity(ner EntityRecognizer, lines LineCorpus, kind EntityKind) string {
	if ner == nil {
		return ""
	}
	for _, l := range lines {
		for _, e := range ner.Entities(l) {
			if e.Kind == kind {
				return e.Text
			}
		}
	}
	return ""
}

func hasEntity(ner EntityRecognizer, line string, kind EntityKind) bool {
	if ner == nil {
		return false
	}
	for _, e := range ner.Entities(line) {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
