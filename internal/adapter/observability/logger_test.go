package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/cv-autofill/internal/config"
)

func TestSetupLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	dev := NewLogger(&buf, config.Config{AppEnv: "dev", OTELServiceName: "cv-autofill"})
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))

	dev.Info("ready")
	assert.Contains(t, buf.String(), `"service":"cv-autofill"`)
	assert.Contains(t, buf.String(), `"env":"dev"`)

	prod := NewLogger(&buf, config.Config{AppEnv: "prod"})
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))

	assert.NotNil(t, SetupLogger(config.Config{AppEnv: "test"}))
}
