// Package poppler renders PDF pages to PNG with the poppler-utils binaries.
package poppler

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/observability"
	"github.com/fairyhunter13/cv-autofill/pkg/execx"
)

// pdftoppm resolution is expressed in DPI; PDF user space is 72 units per inch.
const pointsPerInch = 72.0

var pagesRe = regexp.MustCompile(`(?m)^Pages:\s+(\d+)`)

// Options configures the rasterizer.
type Options struct {
	PdftoppmBin string
	PdfinfoBin  string
	// Scale is the render scale relative to 72 DPI.
	Scale float64
	// MaxPages caps how many pages are exposed. Zero means no cap.
	MaxPages int
}

// Rasterizer implements domain.PageRasterizer.
type Rasterizer struct {
	runner execx.Runner
	opts   Options
}

var _ domain.PageRasterizer = (*Rasterizer)(nil)

// New builds a Rasterizer. Zero-valued options fall back to the poppler
// defaults found on PATH and a 1.5x scale.
func New(runner execx.Runner, opts Options) *Rasterizer {
	if opts.PdftoppmBin == "" {
		opts.PdftoppmBin = "pdftoppm"
	}
	if opts.PdfinfoBin == "" {
		opts.PdfinfoBin = "pdfinfo"
	}
	if opts.Scale <= 0 {
		opts.Scale = 1.5
	}
	return &Rasterizer{runner: runner, opts: opts}
}

// DPI is the resolution handed to pdftoppm.
func (r *Rasterizer) DPI() int { return int(math.Round(pointsPerInch * r.opts.Scale)) }

// Open stages the PDF in a private temp directory and reads its page count.
func (r *Rasterizer) Open(ctx context.Context, pdf []byte) (domain.RasterDocument, error) {
	dir, err := os.MkdirTemp("", "cvx-raster-*")
	if err != nil {
		return nil, fmt.Errorf("op=poppler.Open: %w", err)
	}
	path := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("op=poppler.Open: %w", err)
	}

	out, errb, err := r.runner.Run(ctx, r.opts.PdfinfoBin, path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("op=poppler.Open: pdfinfo: %w (%s)", err, string(errb))
	}
	m := pagesRe.FindSubmatch(out)
	if m == nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("op=poppler.Open: pdfinfo reported no page count")
	}
	n, _ := strconv.Atoi(string(m[1]))
	if r.opts.MaxPages > 0 && n > r.opts.MaxPages {
		observability.LoggerFromContext(ctx).Warn("pdf page count capped", "pages", n, "max_pages", r.opts.MaxPages)
		n = r.opts.MaxPages
	}
	return &document{r: r, dir: dir, path: path, pages: n}, nil
}

type document struct {
	r     *Rasterizer
	dir   string
	path  string
	pages int
}

func (d *document) Pages() int { return d.pages }

// Render writes page to <dir>/page-N.png and returns its bytes.
func (d *document) Render(ctx context.Context, page int) ([]byte, error) {
	if page < 1 || page > d.pages {
		return nil, fmt.Errorf("op=poppler.Render: page %d out of range [1,%d]: %w", page, d.pages, domain.ErrInvalidArgument)
	}
	prefix := filepath.Join(d.dir, "page-"+strconv.Itoa(page))
	p := strconv.Itoa(page)
	_, errb, err := d.r.runner.Run(ctx, d.r.opts.PdftoppmBin,
		"-r", strconv.Itoa(d.r.DPI()),
		"-f", p, "-l", p,
		"-png", "-singlefile",
		d.path, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("op=poppler.Render page=%d: %w (%s)", page, err, string(errb))
	}
	img, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("op=poppler.Render page=%d: %w", page, err)
	}
	_ = os.Remove(prefix + ".png")
	return img, nil
}

func (d *document) Close() error { return os.RemoveAll(d.dir) }
