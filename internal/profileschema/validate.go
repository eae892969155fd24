// Package profileschema validates emitted profiles against the published
// JSON Schema for StructuredProfile.
package profileschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

//go:embed profile.schema.json
var schemaJSON []byte

const schemaURL = "profile.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Schema returns the raw JSON Schema document.
func Schema() []byte { return schemaJSON }

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat = true
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// ValidateJSON checks a serialized profile.
func ValidateJSON(data []byte) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("op=profileschema.Validate: compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("op=profileschema.Validate: %w: %v", domain.ErrInvalidArgument, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("op=profileschema.Validate: %w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// Validate serializes p and checks it.
func Validate(p domain.StructuredProfile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("op=profileschema.Validate: %w", err)
	}
	return ValidateJSON(b)
}
