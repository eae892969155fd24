// Package domain holds the core types, ports and error taxonomy of the
// document-to-profile pipeline.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrInternal        = errors.New("internal error")

	// ErrUnsupportedFormat rejects a MIME/extension combination, legacy .doc included.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmptyExtraction is a blank text-extraction result. On the PDF text layer
	// it triggers the OCR fallback and is never surfaced.
	ErrEmptyExtraction = errors.New("empty extraction")
	// ErrOCREngineFailure is an engine error or blank OCR output on a path with no
	// further fallback.
	ErrOCREngineFailure = errors.New("ocr engine failure")
	// ErrFieldExtraction reports a defect inside a field extractor. It never
	// fails a run.
	ErrFieldExtraction = errors.New("field extraction failure")
)

// Context is an alias so ports can be declared without importing context everywhere.
type Context = context.Context

// SourceDocument is one uploaded file. It is treated as immutable.
type SourceDocument struct {
	Data     []byte
	MIME     string
	Filename string
}

// ExtractionMethod tags which path produced the text of an ExtractionOutcome.
type ExtractionMethod string

const (
	MethodPdfLayer         ExtractionMethod = "pdf-layer"
	MethodPdfOcrFallback   ExtractionMethod = "pdf-ocr-fallback"
	MethodImageOcr         ExtractionMethod = "image-ocr"
	MethodContainerExtract ExtractionMethod = "container-extract"
)

// ExtractionOutcome is the result of the text-extraction phase.
// Invariant: UsedFallback is true only after a failed primary attempt.
type ExtractionOutcome struct {
	Text         string           `json:"-"`
	Method       ExtractionMethod `json:"method"`
	UsedFallback bool             `json:"usedFallback"`
}

// RunState is the orchestrator state of one document slot.
type RunState string

const (
	RunIdle             RunState = "idle"
	RunDetecting        RunState = "detecting"
	RunExtractingText   RunState = "extracting_text"
	RunExtractingFields RunState = "extracting_fields"
	RunDone             RunState = "done"
	RunFailed           RunState = "failed"
)

// Terminal reports whether no further transition follows s for the same document.
func (s RunState) Terminal() bool { return s == RunDone || s == RunFailed }

// ProgressEvent is emitted synchronously by the orchestrator after each step.
type ProgressEvent struct {
	State    RunState
	Message  string
	Progress float64
	UsedOCR  bool
	Err      error
}

// Status is the progress/status value exposed to notice and form collaborators.
type Status struct {
	RunID         string   `json:"runId,omitempty"`
	State         RunState `json:"state"`
	StatusMessage string   `json:"statusMessage"`
	Progress      float64  `json:"progress"`
	UsedOCR       bool     `json:"usedOCR"`
	Error         string   `json:"error,omitempty"`
	Loading       bool     `json:"loading"`
}

// Education is one education entry. Empty fields are allowed.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
}

// Experience is one work-experience entry.
type Experience struct {
	Company          string `json:"company"`
	Position         string `json:"position"`
	Duration         string `json:"duration"`
	Location         string `json:"location"`
	Responsibilities string `json:"responsibilities"`
}

// StructuredProfile is the candidate profile produced atomically at the end of
// the field-extraction phase.
type StructuredProfile struct {
	FirstName  string       `json:"firstName" validate:"required"`
	LastName   string       `json:"lastName"`
	FullName   string       `json:"fullName" validate:"required"`
	Email      string       `json:"email" validate:"required,email"`
	Phone      string       `json:"phone" validate:"required"`
	Location   string       `json:"location"`
	Skills     []string     `json:"skills"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
}

// RunResult is a completed run as cached, stored and published.
type RunResult struct {
	ID             string            `json:"id"`
	DocumentSHA256 string            `json:"documentSha256"`
	Filename       string            `json:"filename"`
	MIME           string            `json:"mime"`
	Outcome        ExtractionOutcome `json:"outcome"`
	TextLength     int               `json:"textLength"`
	Profile        StructuredProfile `json:"profile"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ProfileExtractedEvent is published after a run completes.
type ProfileExtractedEvent struct {
	ID             string           `json:"id"`
	DocumentSHA256 string           `json:"document_sha256"`
	Filename       string           `json:"filename"`
	Method         ExtractionMethod `json:"method"`
	UsedFallback   bool             `json:"used_fallback"`
	FullName       string           `json:"full_name"`
	Email          string           `json:"email"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// Text extraction ports

// TextLayerExtractor reads the embedded text layer of a PDF.
type TextLayerExtractor interface {
	ExtractText(ctx Context, pdf []byte) (string, error)
}

// ContainerExtractor reads raw text from a word-processing container (.docx).
type ContainerExtractor interface {
	ExtractText(ctx Context, data []byte) (string, error)
}

// RasterDocument is an opened PDF ready for page-by-page rendering.
type RasterDocument interface {
	Pages() int
	// Render returns the PNG bytes of a 1-based page.
	Render(ctx Context, page int) ([]byte, error)
	Close() error
}

// PageRasterizer opens PDFs for rendering at a fixed scale.
type PageRasterizer interface {
	Open(ctx Context, pdf []byte) (RasterDocument, error)
}

// OCREngine recognizes text in an image. onProgress may be nil; values passed
// to it are fractions in [0,1].
type OCREngine interface {
	Recognize(ctx Context, image []byte, onProgress func(float64)) (string, error)
}

// Persistence, cache and event ports

// ProfileRepository stores completed runs.
type ProfileRepository interface {
	Save(ctx Context, r RunResult) (string, error)
	Get(ctx Context, id string) (RunResult, error)
	List(ctx Context, limit int) ([]RunResult, error)
	// DeleteOlderThan removes results created more than days ago.
	DeleteOlderThan(ctx Context, days int) (int64, error)
}

// ProfileCache memoizes completed runs by document digest.
type ProfileCache interface {
	Get(ctx Context, sha string) (RunResult, bool, error)
	Set(ctx Context, sha string, r RunResult) error
}

// EventPublisher announces completed runs.
type EventPublisher interface {
	PublishProfileExtracted(ctx Context, evt ProfileExtractedEvent) error
}
