package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

type fakeTextLayer struct {
	text  string
	err   error
	calls int
}

func (f *fakeTextLayer) ExtractText(context.Context, []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeContainer struct {
	text string
	err  error
}

func (f *fakeContainer) ExtractText(context.Context, []byte) (string, error) { return f.text, f.err }

type fakeRasterizer struct {
	pages   int
	openErr error
	opened  int
	closed  int
}

func (f *fakeRasterizer) Open(context.Context, []byte) (domain.RasterDocument, error) {
	f.opened++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeRasterDoc{r: f}, nil
}

type fakeRasterDoc struct{ r *fakeRasterizer }

func (d *fakeRasterDoc) Pages() int { return d.r.pages }
func (d *fakeRasterDoc) Render(_ context.Context, page int) ([]byte, error) {
	return []byte{byte(page)}, nil
}
func (d *fakeRasterDoc) Close() error { d.r.closed++; return nil }

// fakeOCR returns texts[image[0]] for rendered pages, or text for anything else.
// block, when set, is received from before recognition returns.
type fakeOCR struct {
	mu    sync.Mutex
	text  string
	texts map[byte]string
	err   error
	ticks []float64
	calls int
	block chan struct{}
}

func (f *fakeOCR) Recognize(ctx context.Context, img []byte, onProgress func(float64)) (string, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	for _, p := range f.ticks {
		onProgress(p)
	}
	if f.err != nil {
		return "", f.err
	}
	if len(img) == 1 && f.texts != nil {
		return f.texts[img[0]], nil
	}
	return f.text, nil
}

type fakeFields struct {
	err error
}

func (f fakeFields) Extract(text string) (domain.StructuredProfile, error) {
	return domain.StructuredProfile{FullName: text}, f.err
}

type recordingMetrics struct {
	mu        sync.Mutex
	runs      []string
	pages     int
	fallbacks int
	fields    int
	supersede int
}

func (m *recordingMetrics) ObserveRun(method domain.ExtractionMethod, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, string(method)+":"+outcome)
}
func (m *recordingMetrics) OCRPage()      { m.mu.Lock(); m.pages++; m.mu.Unlock() }
func (m *recordingMetrics) Fallback()     { m.mu.Lock(); m.fallbacks++; m.mu.Unlock() }
func (m *recordingMetrics) FieldFailure() { m.mu.Lock(); m.fields++; m.mu.Unlock() }
func (m *recordingMetrics) Supersede()    { m.mu.Lock(); m.supersede++; m.mu.Unlock() }

type eventLog struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (l *eventLog) emit(e domain.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Message)
	}
	return out
}

func (l *eventLog) progress() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]float64, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Progress)
	}
	return out
}

var errBoom = errors.New("boom")

type harness struct {
	layer   *fakeTextLayer
	docx    *fakeContainer
	raster  *fakeRasterizer
	ocr     *fakeOCR
	metrics *recordingMetrics
	svc     ExtractionService
}

func newHarness() *harness {
	h := &harness{
		layer:   &fakeTextLayer{},
		docx:    &fakeContainer{},
		raster:  &fakeRasterizer{},
		ocr:     &fakeOCR{},
		metrics: &recordingMetrics{},
	}
	h.svc = NewExtractionService(h.layer, h.docx, h.raster, h.ocr, fakeFields{})
	h.svc.Metrics = h.metrics
	return h
}
