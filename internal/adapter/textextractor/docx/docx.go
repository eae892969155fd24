// Package docx reads raw text out of .docx containers.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/observability"
	"github.com/fairyhunter13/cv-autofill/pkg/textx"
)

// Extractor implements domain.ContainerExtractor on top of docconv.
type Extractor struct{}

// New returns a .docx extractor.
func New() *Extractor { return &Extractor{} }

var _ domain.ContainerExtractor = (*Extractor)(nil)

// ExtractText returns the trimmed document text. An empty document is a
// valid, if degenerate, result.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	ctx, span := otel.Tracer("textextractor.docx").Start(ctx, "docx.ExtractText")
	defer span.End()

	body, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("op=docx.ExtractText: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := strings.Split(textx.SanitizeText(body), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	text := strings.Join(kept, "\n")
	if text == "" {
		observability.LoggerFromContext(ctx).Warn("docx: extracted empty text", "bytes", len(data))
	}
	return text, nil
}
