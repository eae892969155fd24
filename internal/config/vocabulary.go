package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/cv-autofill/internal/heuristics"
)

// LoadVocabulary reads a YAML keyword override and merges it over the
// built-in lists. An empty path returns the defaults.
func LoadVocabulary(path string) (heuristics.Vocabulary, error) {
	def := heuristics.DefaultVocabulary()
	if path == "" {
		return def, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return heuristics.Vocabulary{}, fmt.Errorf("op=config.LoadVocabulary: %w", err)
	}
	var over heuristics.Vocabulary
	if err := yaml.Unmarshal(b, &over); err != nil {
		return heuristics.Vocabulary{}, fmt.Errorf("op=config.LoadVocabulary: parse %s: %w", path, err)
	}
	return def.Merge(over), nil
}
