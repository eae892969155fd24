package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat, "unsupported format"},
		{"ErrEmptyExtraction", ErrEmptyExtraction, "empty extraction"},
		{"ErrOCREngineFailure", ErrOCREngineFailure, "ocr engine failure"},
		{"ErrFieldExtraction", ErrFieldExtraction, "field extraction failure"},
		{"ErrInternal", ErrInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorIs_Wrapped(t *testing.T) {
	cause := errors.New("exit status 1")
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"format error is unsupported", &FormatError{Format: FormatLegacyDoc}, ErrUnsupportedFormat, true},
		{"wrapped format error", fmt.Errorf("op=extract: %w", &FormatError{Format: FormatUnsupported}), ErrUnsupportedFormat, true},
		{"ocr error is engine failure", &OCRError{Method: MethodImageOcr}, ErrOCREngineFailure, true},
		{"ocr error exposes cause", &OCRError{Method: MethodPdfOcrFallback, Err: cause}, cause, true},
		{"ocr error is not unsupported", &OCRError{Method: MethodImageOcr}, ErrUnsupportedFormat, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errors.Is(tt.err, tt.target) != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, !tt.want, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"legacy doc", &FormatError{Format: FormatLegacyDoc}, MsgLegacyDoc},
		{"unsupported", &FormatError{Format: FormatUnsupported}, MsgUnsupported},
		{"image ocr", &OCRError{Method: MethodImageOcr}, MsgNoImageText},
		{"pdf ocr", &OCRError{Method: MethodPdfOcrFallback, Err: errors.New("boom")}, MsgGeneric},
		{"other", errors.New("boom"), MsgGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunState_Terminal(t *testing.T) {
	for _, s := range []RunState{RunIdle, RunDetecting, RunExtractingText, RunExtractingFields} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !RunDone.Terminal() || !RunFailed.Terminal() {
		t.Errorf("done and failed must be terminal")
	}
}
