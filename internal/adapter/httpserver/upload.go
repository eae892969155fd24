package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

var errTooLarge = errors.New("payload too large")

// readUpload reads the multipart "file" field into a SourceDocument. The
// declared part MIME is kept unless it is generic, in which case the
// content is sniffed.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (domain.SourceDocument, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		return domain.SourceDocument{}, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument)
	}
	// allow for multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return domain.SourceDocument{}, errTooLarge
		}
		return domain.SourceDocument{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	f, h, err := r.FormFile("file")
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("%w: file required", domain.ErrInvalidArgument)
	}
	defer func() { _ = f.Close() }()

	if h.Size > maxBytes {
		return domain.SourceDocument{}, errTooLarge
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("%w: read file: %v", domain.ErrInvalidArgument, err)
	}
	if len(data) == 0 {
		return domain.SourceDocument{}, fmt.Errorf("%w: file is empty", domain.ErrInvalidArgument)
	}

	mime := h.Header.Get("Content-Type")
	if domain.IsGenericMIME(mime) {
		mime = mimetype.Detect(data).String()
	}
	return domain.SourceDocument{Data: data, MIME: mime, Filename: filepath.Base(h.Filename)}, nil
}

func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
			Code:    "INVALID_ARGUMENT",
			Message: "payload too large",
			Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
		}})
		return
	}
	writeError(w, r, err, map[string]string{"field": "file"})
}
