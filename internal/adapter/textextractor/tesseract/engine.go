// Package tesseract runs OCR through the tesseract command-line tool.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/pkg/execx"
)

// Options configures the engine.
type Options struct {
	Bin         string
	Lang        string
	TessdataDir string
}

// Engine implements domain.OCREngine. The CLI runs one image per process so
// the engine reports only the start and end of recognition.
type Engine struct {
	runner execx.Runner
	opts   Options
}

var _ domain.OCREngine = (*Engine)(nil)

// New builds an Engine with "tesseract" and English as defaults.
func New(runner execx.Runner, opts Options) *Engine {
	if opts.Bin == "" {
		opts.Bin = "tesseract"
	}
	if opts.Lang == "" {
		opts.Lang = "eng"
	}
	return &Engine{runner: runner, opts: opts}
}

// Recognize writes image to a temp file and returns tesseract's stdout.
func (e *Engine) Recognize(ctx context.Context, image []byte, onProgress func(float64)) (string, error) {
	ctx, span := otel.Tracer("textextractor.tesseract").Start(ctx, "tesseract.Recognize")
	defer span.End()

	report := func(p float64) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	report(0)

	ext := mimetype.Detect(image).Extension()
	if ext == "" {
		ext = ".png"
	}
	span.SetAttributes(attribute.String("ocr.image_ext", ext), attribute.Int("ocr.image_bytes", len(image)))

	dir, err := os.MkdirTemp("", "cvx-ocr-*")
	if err != nil {
		return "", fmt.Errorf("op=tesseract.Recognize: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "image"+ext)
	if err := os.WriteFile(path, image, 0o600); err != nil {
		return "", fmt.Errorf("op=tesseract.Recognize: %w", err)
	}

	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", e.opts.Lang}
	if e.opts.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.opts.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.opts.Bin, args...)
	if err != nil {
		return "", fmt.Errorf("op=tesseract.Recognize: %w (%s)", err, string(errb))
	}
	report(1)
	return string(out), nil
}
