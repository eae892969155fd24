package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/observability"
)

// Status messages emitted on each orchestrator transition.
const (
	StatusDetecting         = "Detecting document format..."
	StatusPDFLayer          = "Extracting text from PDF..."
	StatusPDFLayerDone      = "Successfully extracted PDF text."
	StatusPDFFallback       = "Falling back to OCR (PDF text unreadable)..."
	StatusPDFFallbackDone   = "OCR completed from PDF."
	StatusImageOCR          = "Running OCR on image..."
	StatusImageOCRDone      = "OCR completed from image."
	StatusDocx              = "Extracting text from DOCX..."
	StatusDocxDone          = "Successfully extracted DOCX content."
	StatusFields            = "Extracting profile fields..."
	StatusDone              = "Structured extraction completed."
	StatusFailedLegacyDoc   = "Upload failed: unsupported DOC format."
	StatusFailedUnsupported = "Upload failed: unsupported file type."
	StatusFailed            = "Processing failed."
)

// FieldExtractor turns extracted text into a profile. A non-nil error next to
// a profile reports recovered field defects; the profile is still usable.
type FieldExtractor interface {
	Extract(text string) (domain.StructuredProfile, error)
}

// Metrics receives pipeline measurements.
type Metrics interface {
	ObserveRun(method domain.ExtractionMethod, outcome string, d time.Duration)
	OCRPage()
	Fallback()
	FieldFailure()
	Supersede()
}

type nopMetrics struct{}

func (nopMetrics) ObserveRun(domain.ExtractionMethod, string, time.Duration) {}
func (nopMetrics) OCRPage()                                                  {}
func (nopMetrics) Fallback()                                                 {}
func (nopMetrics) FieldFailure()                                             {}
func (nopMetrics) Supersede()                                                {}

// ExtractionService runs one document through format detection, text
// extraction with fallback and field extraction.
type ExtractionService struct {
	TextLayer  domain.TextLayerExtractor
	Container  domain.ContainerExtractor
	Rasterizer domain.PageRasterizer
	OCR        domain.OCREngine
	Fields     FieldExtractor
	Metrics    Metrics
	// OCRTimeout bounds a single recognition call. Zero disables it.
	OCRTimeout time.Duration
	Now        func() time.Time
}

// NewExtractionService wires an ExtractionService with no-op metrics.
func NewExtractionService(tl domain.TextLayerExtractor, c domain.ContainerExtractor, r domain.PageRasterizer, ocr domain.OCREngine, f FieldExtractor) ExtractionService {
	return ExtractionService{TextLayer: tl, Container: c, Rasterizer: r, OCR: ocr, Fields: f, Metrics: nopMetrics{}, Now: time.Now}
}

// tracker keeps progress monotonic within a run and fans events out to emit.
type tracker struct {
	emit     func(domain.ProgressEvent)
	progress float64
	usedOCR  bool
}

func (t *tracker) step(state domain.RunState, msg string, p float64) {
	p = clamp01(p)
	if p > t.progress {
		t.progress = p
	}
	t.emit(domain.ProgressEvent{State: state, Message: msg, Progress: t.progress, UsedOCR: t.usedOCR})
}

func (t *tracker) fail(err error) {
	msg := StatusFailed
	var fe *domain.FormatError
	if errors.As(err, &fe) {
		msg = StatusFailedUnsupported
		if fe.Format == domain.FormatLegacyDoc {
			msg = StatusFailedLegacyDoc
		}
	}
	t.emit(domain.ProgressEvent{State: domain.RunFailed, Message: msg, Progress: t.progress, UsedOCR: t.usedOCR, Err: err})
}

func clamp01(p float64) float64 {
	switch {
	case p < 0 || math.IsNaN(p):
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Run executes the state machine for doc. emit is called synchronously on
// every transition and may be nil. The returned error is the same one carried
// by the final Failed event.
func (s ExtractionService) Run(ctx context.Context, doc domain.SourceDocument, emit func(domain.ProgressEvent)) (domain.RunResult, error) {
	if emit == nil {
		emit = func(domain.ProgressEvent) {}
	}
	m := s.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	lg := observability.LoggerFromContext(ctx)

	ctx, span := otel.Tracer("usecase.extract").Start(ctx, "ExtractionService.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.filename", doc.Filename),
		attribute.String("document.mime", doc.MIME),
		attribute.Int("document.bytes", len(doc.Data)),
	)

	t := &tracker{emit: emit}
	t.step(domain.RunDetecting, StatusDetecting, 0)

	format := domain.ClassifyFormat(doc.MIME, doc.Filename)
	span.SetAttributes(attribute.String("document.format", string(format)))

	var (
		outcome domain.ExtractionOutcome
		err     error
	)
	switch format {
	case domain.FormatPDF:
		outcome, err = s.extractPDF(ctx, doc.Data, t, m)
	case domain.FormatImage:
		outcome, err = s.extractImage(ctx, doc.Data, t)
	case domain.FormatDocx:
		outcome, err = s.extractDocx(ctx, doc.Data, t)
	default:
		err = &domain.FormatError{Format: format}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.ObserveRun(outcome.Method, "failed", now().Sub(start))
		lg.Warn("extraction failed", "filename", doc.Filename, "format", string(format), "method", string(outcome.Method), "error", err)
		t.fail(err)
		return domain.RunResult{}, err
	}

	t.step(domain.RunExtractingFields, StatusFields, t.progress)
	profile, ferr := s.Fields.Extract(outcome.Text)
	if ferr != nil {
		m.FieldFailure()
		lg.Error("field extraction defect", "filename", doc.Filename, "error", ferr)
	}

	sum := sha256.Sum256(doc.Data)
	res := domain.RunResult{
		DocumentSHA256: hex.EncodeToString(sum[:]),
		Filename:       doc.Filename,
		MIME:           doc.MIME,
		Outcome:        outcome,
		TextLength:     len(outcome.Text),
		Profile:        profile,
		CreatedAt:      now().UTC(),
	}
	span.SetAttributes(attribute.String("extraction.method", string(outcome.Method)), attribute.Bool("extraction.used_fallback", outcome.UsedFallback))
	m.ObserveRun(outcome.Method, "done", now().Sub(start))
	lg.Info("extraction completed",
		"filename", doc.Filename,
		"method", string(outcome.Method),
		"used_fallback", outcome.UsedFallback,
		"text_length", res.TextLength,
		"duration_ms", now().Sub(start).Milliseconds(),
	)
	t.step(domain.RunDone, StatusDone, 1)
	return res, nil
}

func (s ExtractionService) extractPDF(ctx context.Context, data []byte, t *tracker, m Metrics) (domain.ExtractionOutcome, error) {
	t.step(domain.RunExtractingText, StatusPDFLayer, 0)
	text, err := s.TextLayer.ExtractText(ctx, data)
	if err == nil && strings.TrimSpace(text) != "" {
		t.step(domain.RunExtractingText, StatusPDFLayerDone, 0)
		return domain.ExtractionOutcome{Text: text, Method: domain.MethodPdfLayer}, nil
	}
	observability.LoggerFromContext(ctx).Info("pdf text layer unusable, falling back to ocr", "error", err)

	m.Fallback()
	t.usedOCR = true
	t.step(domain.RunExtractingText, StatusPDFFallback, 0)

	text, err = s.ocrPDF(ctx, data, t, m)
	if err != nil {
		return domain.ExtractionOutcome{Method: domain.MethodPdfOcrFallback, UsedFallback: true}, err
	}
	t.step(domain.RunExtractingText, StatusPDFFallbackDone, 1)
	return domain.ExtractionOutcome{Text: text, Method: domain.MethodPdfOcrFallback, UsedFallback: true}, nil
}

// ocrPDF renders and recognizes pages strictly one after another.
func (s ExtractionService) ocrPDF(ctx context.Context, data []byte, t *tracker, m Metrics) (string, error) {
	ctx, span := otel.Tracer("usecase.extract").Start(ctx, "ExtractionService.ocrPDF")
	defer span.End()

	rd, err := s.Rasterizer.Open(ctx, data)
	if err != nil {
		return "", &domain.OCRError{Method: domain.MethodPdfOcrFallback, Err: err}
	}
	defer func() { _ = rd.Close() }()

	n := rd.Pages()
	span.SetAttributes(attribute.Int("pdf.pages", n))
	if n <= 0 {
		return "", &domain.OCRError{Method: domain.MethodPdfOcrFallback, Err: errors.New("pdf has no pages")}
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		img, err := rd.Render(ctx, i)
		if err != nil {
			return "", &domain.OCRError{Method: domain.MethodPdfOcrFallback, Err: fmt.Errorf("render page %d: %w", i, err)}
		}
		page := i
		txt, err := s.recognize(ctx, img, func(p float64) {
			t.step(domain.RunExtractingText, StatusPDFFallback, (float64(page-1)+clamp01(p))/float64(n))
		})
		if err != nil {
			return "", &domain.OCRError{Method: domain.MethodPdfOcrFallback, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		m.OCRPage()
		b.WriteString(txt)
		b.WriteString("\n\n")
		if i < n {
			t.step(domain.RunExtractingText, StatusPDFFallback, float64(i)/float64(n))
		}
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", &domain.OCRError{Method: domain.MethodPdfOcrFallback}
	}
	return text, nil
}

func (s ExtractionService) extractImage(ctx context.Context, data []byte, t *tracker) (domain.ExtractionOutcome, error) {
	t.step(domain.RunExtractingText, StatusImageOCR, 0)
	text, err := s.recognize(ctx, data, func(p float64) {
		t.step(domain.RunExtractingText, StatusImageOCR, p)
	})
	if err != nil {
		return domain.ExtractionOutcome{Method: domain.MethodImageOcr}, &domain.OCRError{Method: domain.MethodImageOcr, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return domain.ExtractionOutcome{Method: domain.MethodImageOcr}, &domain.OCRError{Method: domain.MethodImageOcr}
	}
	t.step(domain.RunExtractingText, StatusImageOCRDone, 1)
	return domain.ExtractionOutcome{Text: text, Method: domain.MethodImageOcr}, nil
}

func (s ExtractionService) extractDocx(ctx context.Context, data []byte, t *tracker) (domain.ExtractionOutcome, error) {
	t.step(domain.RunExtractingText, StatusDocx, 0)
	text, err := s.Container.ExtractText(ctx, data)
	if err != nil {
		return domain.ExtractionOutcome{Method: domain.MethodContainerExtract}, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
	t.step(domain.RunExtractingText, StatusDocxDone, 0)
	return domain.ExtractionOutcome{Text: strings.TrimSpace(text), Method: domain.MethodContainerExtract}, nil
}

func (s ExtractionService) recognize(ctx context.Context, img []byte, onProgress func(float64)) (string, error) {
	if s.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.OCRTimeout)
		defer cancel()
	}
	return s.OCR.Recognize(ctx, img, onProgress)
}
