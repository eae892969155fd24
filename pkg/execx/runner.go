// Package execx runs external command-line tools (pdfinfo, pdftoppm,
// tesseract) behind an interface so adapters can be tested without them.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/fairyhunter13/cv-autofill/internal/observability"
	"github.com/fairyhunter13/cv-autofill/pkg/textx"
)

const maxLoggedStderr = 8 << 10

// ErrToolMissing is returned when the requested binary is not on PATH.
var ErrToolMissing = errors.New("external tool not found")

// Runner executes a command and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewRunner returns the os/exec backed Runner.
func NewRunner() ExecRunner { return ExecRunner{} }

// Run starts name with args and waits for it. Output is logged through the
// context logger.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	lg := observability.LoggerFromContext(ctx)
	start := time.Now()

	if _, err := exec.LookPath(name); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrToolMissing, name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)
	if err != nil {
		lg.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", textx.Truncate(errb.String(), maxLoggedStderr),
		)
		return out.Bytes(), errb.Bytes(), fmt.Errorf("op=execx.Run cmd=%s: %w", name, err)
	}
	lg.Debug("exec ok",
		"cmd", name,
		"args", strings.Join(args, " "),
		"duration_ms", dur.Milliseconds(),
		"stdout_bytes", out.Len(),
		"stderr_bytes", errb.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
