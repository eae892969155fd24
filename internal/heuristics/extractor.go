// Package heuristics turns extracted resume text into a StructuredProfile
// with deterministic, independently testable rules.
package heuristics

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/pkg/textx"
)

// Extractor runs the field heuristics. It holds only read-only state and is
// safe for concurrent use.
type Extractor struct {
	vocab           Vocabulary
	ner             EntityRecognizer
	consumerDomains map[string]bool
	softSkills      map[string]bool
	skillPhrases    []string
	sectionWords    []string
	addressRe       *regexp.Regexp
	degreeRe        *regexp.Regexp
	institutionRe   *regexp.Regexp
	jobTitleRe      *regexp.Regexp
}

// New builds an Extractor from a vocabulary. ner may be nil, in which case
// no person or place entities are recognized.
func New(v Vocabulary, ner EntityRecognizer) *Extractor {
	e := &Extractor{
		vocab:           v,
		ner:             ner,
		consumerDomains: lowerSet(v.ConsumerEmailDomains),
		softSkills:      lowerSet(v.SoftSkills),
		addressRe:       keywordRe(v.AddressKeywords, false),
		degreeRe:        keywordRe(v.DegreeKeywords, false),
		institutionRe:   keywordRe(v.InstitutionKeywords, false),
		jobTitleRe:      keywordRe(v.JobTitleKeywords, false),
	}
	for _, s := range v.SoftSkills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			e.skillPhrases = append(e.skillPhrases, s)
		}
	}
	for _, s := range v.SkillSectionKeywords {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			e.sectionWords = append(e.sectionWords, s)
		}
	}
	return e
}

// NewDefault returns an Extractor over the built-in vocabulary and the
// lexicon entity recognizer.
func NewDefault() *Extractor {
	v := DefaultVocabulary()
	return New(v, NewLexiconRecognizer(v))
}

// Extract runs every field extractor over text and returns the normalized
// profile. Extractors run independently: a panic in one leaves that field at
// its empty default and is reported as domain.ErrFieldExtraction alongside a
// usable profile.
func (e *Extractor) Extract(text string) (domain.StructuredProfile, error) {
	raw := textx.SanitizeText(text)
	lines := NewLineCorpus(raw)

	var p domain.StructuredProfile
	var errs []error
	run := func(field string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", domain.ErrFieldExtraction, field, r))
			}
		}()
		fn()
	}

	run("name", func() { p.FirstName, p.LastName, p.FullName = e.Name(lines) })
	run("email", func() { p.Email = e.Email(lines) })
	run("phone", func() { p.Phone = e.Phone(lines) })
	run("location", func() { p.Location = e.Location(lines) })
	run("skills", func() { p.Skills = e.Skills(lines) })
	run("education", func() { p.Education = e.Education(raw) })
	run("experience", func() { p.Experience = e.Experience(raw) })

	return Normalize(p), errors.Join(errs...)
}
