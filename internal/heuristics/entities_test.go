package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexiconRecognizer_Entities(t *testing.T) {
	r := NewLexiconRecognizer(DefaultVocabulary())

	tests := []struct {
		line string
		want []Entity
	}{
		{"Juan Dela Cruz", []Entity{{"Juan Dela Cruz", EntityPerson}}},
		{"Mr. John Neil-Smith | Manila", []Entity{{"John Neil-Smith", EntityPerson}, {"Manila", EntityPlace}}},
		{"Makati City, Philippines", []Entity{{"Makati", EntityPlace}, {"Philippines", EntityPlace}}},
		{"Software Developer", nil},
		{"Curriculum Vitae", nil},
		{"john doe", nil},
		{"Jane Doe 2019", nil},
		{"living in manila", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Entities(tt.line))
		})
	}
}

func TestKeywordRe_EmptyNeverMatches(t *testing.T) {
	re := keywordRe(nil, true)
	assert.False(t, re.MatchString("anything at all"))
	assert.False(t, re.MatchString(""))
}

func TestVocabulary_Merge(t *testing.T) {
	base := DefaultVocabulary()
	got := base.Merge(Vocabulary{SoftSkills: []string{"grit"}})
	assert.Equal(t, []string{"grit"}, got.SoftSkills)
	assert.Equal(t, base.Places, got.Places)
}

func TestNewLineCorpus(t *testing.T) {
	c := NewLineCorpus("  first \r\n\n\tsecond\x00 line \n   \n")
	assert.Equal(t, LineCorpus{"first", "second line"}, c)
	assert.Equal(t, "first\nsecond line", c.Text())
	assert.Empty(t, NewLineCorpus(""))
}
