package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

func TestClassifyFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mime     string
		filename string
		want     domain.Format
	}{
		{"pdf by mime", "application/pdf", "cv.pdf", domain.FormatPDF},
		{"pdf mime wins over extension", "application/pdf", "cv.bin", domain.FormatPDF},
		{"pdf mime with params", "Application/PDF; charset=binary", "cv", domain.FormatPDF},
		{"png image", "image/png", "scan.PNG", domain.FormatImage},
		{"jpeg image", "image/jpeg", "scan.jpeg", domain.FormatImage},
		{"image mime with bad extension", "image/gif", "scan.gif", domain.FormatUnsupported},
		{"image mime without extension", "image/png", "scan", domain.FormatUnsupported},
		{"docx by mime", domain.MIMEDocx, "cv.docx", domain.FormatDocx},
		{"legacy doc by mime", domain.MIMEDoc, "cv.doc", domain.FormatLegacyDoc},
		{"msword mime with docx extension", domain.MIMEDoc, "cv.docx", domain.FormatDocx},
		{"generic mime pdf extension", "application/octet-stream", "cv.pdf", domain.FormatPDF},
		{"absent mime jpg extension", "", "photo.jpg", domain.FormatImage},
		{"zip mime docx extension", "application/zip", "cv.docx", domain.FormatDocx},
		{"generic mime doc extension", "", "old.doc", domain.FormatLegacyDoc},
		{"unknown mime doc extension", "text/plain", "old.doc", domain.FormatLegacyDoc},
		{"unknown mime pdf extension", "text/plain", "cv.pdf", domain.FormatUnsupported},
		{"text file", "text/plain", "notes.txt", domain.FormatUnsupported},
		{"generic mime unknown extension", "", "archive.tar", domain.FormatUnsupported},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.ClassifyFormat(tt.mime, tt.filename))
		})
	}
}

func TestIsGenericMIME(t *testing.T) {
	assert.True(t, domain.IsGenericMIME(""))
	assert.True(t, domain.IsGenericMIME("application/octet-stream"))
	assert.False(t, domain.IsGenericMIME("application/pdf"))
}
