package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerRoundTrip(t *testing.T) {
	lg := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), lg)

	assert.Same(t, lg, LoggerFromContext(ctx))
	assert.Same(t, slog.Default(), LoggerFromContext(context.Background()))

	base := context.Background()
	assert.Equal(t, base, ContextWithLogger(base, nil))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "01HZX")
	assert.Equal(t, "01HZX", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))

	base := context.Background()
	assert.Equal(t, base, ContextWithRequestID(base, ""))
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = WithFields(ctx, "run_id", "r-1")

	LoggerFromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), `"run_id":"r-1"`)
}
