package domain

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format is the handling strategy chosen for a SourceDocument.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatImage       Format = "image"
	FormatDocx        Format = "docx"
	FormatLegacyDoc   Format = "doc"
	FormatUnsupported Format = "unsupported"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDoc  = "application/msword"
)

// genericMIME lists declared types that say nothing about the content.
var genericMIME = map[string]bool{
	"":                             true,
	"application/octet-stream":     true,
	"binary/octet-stream":          true,
	"application/zip":              true,
	"application/x-zip-compressed": true,
}

var imageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// IsGenericMIME reports whether mime carries no usable type information.
func IsGenericMIME(mime string) bool { return genericMIME[normalizeMIME(mime)] }

// ClassifyFormat maps a declared MIME type and filename to a Format. A
// recognized MIME wins; the extension decides when the MIME is generic or
// unknown, and always separates .doc from .docx.
func ClassifyFormat(mime, filename string) Format {
	m := normalizeMIME(mime)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case m == MIMEPDF:
		return FormatPDF
	case strings.HasPrefix(m, "image/"):
		if imageExt[ext] {
			return FormatImage
		}
		return FormatUnsupported
	case m == MIMEDocx:
		return FormatDocx
	case m == MIMEDoc:
		if ext == ".docx" {
			return FormatDocx
		}
		return FormatLegacyDoc
	}

	switch ext {
	case ".docx":
		return FormatDocx
	case ".doc":
		return FormatLegacyDoc
	}
	if !genericMIME[m] {
		return FormatUnsupported
	}
	switch {
	case ext == ".pdf":
		return FormatPDF
	case imageExt[ext]:
		return FormatImage
	}
	return FormatUnsupported
}

func normalizeMIME(mime string) string {
	m := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}

// FormatError is returned when a document is rejected before extraction.
type FormatError struct {
	Format Format
}

func (e *FormatError) Error() string {
	if e.Format == FormatLegacyDoc {
		return "legacy .doc format is not supported"
	}
	return "unsupported file type"
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

// User-facing messages for failed runs.
const (
	MsgLegacyDoc   = "DOC files are not supported. Please convert to .docx or PDF."
	MsgUnsupported = "Unsupported file type. Please upload a PDF, DOCX, or image."
	MsgNoImageText = "No text detected in image. Try uploading a clearer resume."
	MsgGeneric     = "Failed to process file. Try a different format or clearer version."
)

// UserMessage converts a run error into the message shown to the user.
func UserMessage(err error) string {
	var fe *FormatError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe) && fe.Format == FormatLegacyDoc:
		return MsgLegacyDoc
	case errors.Is(err, ErrUnsupportedFormat):
		return MsgUnsupported
	case errors.Is(err, ErrOCREngineFailure):
		var oe *OCRError
		if errors.As(err, &oe) && oe.Method == MethodImageOcr {
			return MsgNoImageText
		}
		return MsgGeneric
	default:
		return MsgGeneric
	}
}

// OCRError records which OCR path failed terminally.
type OCRError struct {
	Method ExtractionMethod
	Err    error
}

func (e *OCRError) Error() string {
	if e.Err == nil {
		return string(e.Method) + ": no text recognized"
	}
	return string(e.Method) + ": " + e.Err.Error()
}

// Unwrap exposes both the sentinel and the engine cause to errors.Is.
func (e *OCRError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrOCREngineFailure}
	}
	return []error{ErrOCREngineFailure, e.Err}
}
