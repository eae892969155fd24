package heuristics

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseRecognizer tags entities with prose's averaged-perceptron NER model.
// PERSON and GPE spans are kept. A line the model finds nothing in, or
// cannot tokenize, is handed to the fallback.
//
// prose tags every document from scratch, so each line costs a model pass.
// The field extractors stop at the first hit, which keeps this bounded.
type ProseRecognizer struct {
	fallback EntityRecognizer
	exclude  map[string]bool
}

// NewProseRecognizer builds a recognizer that drops person spans made only of
// vocabulary words ("Curriculum Vitae", "Makati City"). fallback may
// be nil.
func NewProseRecognizer(v Vocabulary, fallback EntityRecognizer) *ProseRecognizer {
	return &ProseRecognizer{fallback: fallback, exclude: nonNameWords(v)}
}

// Entities returns person entities first, then places, each in line order.
func (r *ProseRecognizer) Entities(line string) []Entity {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	doc, err := prose.NewDocument(line, prose.WithSegmentation(false))
	if err != nil {
		return r.fallbackEntities(line)
	}

	var people, places []Entity
	for _, ent := range doc.Entities() {
		kind, ok := proseKind(ent.Label)
		if !ok {
			continue
		}
		text := strings.TrimSpace(ent.Text)
		switch {
		case text == "":
		case kind == EntityPerson && r.vocabularyOnly(text):
		case kind == EntityPerson && nonPersonLine.MatchString(text):
		case kind == EntityPerson:
			people = append(people, Entity{Text: text, Kind: kind})
		default:
			places = append(places, Entity{Text: text, Kind: kind})
		}
	}
	if len(people)+len(places) == 0 {
		return r.fallbackEntities(line)
	}
	return append(people, places...)
}

func (r *ProseRecognizer) fallbackEntities(line string) []Entity {
	if r.fallback == nil {
		return nil
	}
	return r.fallback.Entities(line)
}

func (r *ProseRecognizer) vocabularyOnly(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if !r.exclude[strings.Trim(w, ".,")] {
			return false
		}
	}
	return true
}

func proseKind(label string) (EntityKind, bool) {
	switch label {
	case "PERSON":
		return EntityPerson, true
	case "GPE":
		return EntityPlace, true
	}
	return "", false
}
