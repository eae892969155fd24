// Package pdflayer reads the embedded text layer of PDF documents.
package pdflayer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/pkg/textx"
)

// Extractor implements domain.TextLayerExtractor.
type Extractor struct{}

// New returns a text-layer extractor.
func New() *Extractor { return &Extractor{} }

var _ domain.TextLayerExtractor = (*Extractor)(nil)

// ExtractText concatenates the plain text of every page in page order. A
// document whose text layer is blank returns domain.ErrEmptyExtraction.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	_, span := otel.Tracer("textextractor.pdflayer").Start(ctx, "pdflayer.ExtractText")
	defer span.End()

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("op=pdflayer.ExtractText: malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("op=pdflayer.ExtractText: %w", err)
	}
	n := r.NumPage()
	span.SetAttributes(attribute.Int("pdf.pages", n))

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("op=pdflayer.ExtractText page=%d: %w", i, err)
		}
		pages = append(pages, s)
	}

	text = textx.SanitizeText(strings.Join(pages, "\n"))
	if text == "" {
		return "", fmt.Errorf("op=pdflayer.ExtractText: %w", domain.ErrEmptyExtraction)
	}
	return text, nil
}
