package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

// scriptedRunner returns a profile named after the document. Documents named
// "slow" wait for release (or cancellation) and then still report, so stale
// results are exercised.
type scriptedRunner struct {
	release chan struct{}
	started chan string
}

func (r *scriptedRunner) Run(ctx context.Context, doc domain.SourceDocument, emit func(domain.ProgressEvent)) (domain.RunResult, error) {
	if r.started != nil {
		r.started <- doc.Filename
	}
	emit(domain.ProgressEvent{State: domain.RunExtractingText, Message: StatusImageOCR, Progress: 0.3, UsedOCR: true})
	if doc.Filename == "slow" {
		select {
		case <-r.release:
		case <-ctx.Done():
		}
	}
	emit(domain.ProgressEvent{State: domain.RunDone, Message: StatusDone, Progress: 1, UsedOCR: true})
	return domain.RunResult{Filename: doc.Filename, Profile: domain.StructuredProfile{FullName: doc.Filename}}, nil
}

func waitIdle(t *testing.T, s *Session) SessionSnapshot {
	t.Helper()
	var snap SessionSnapshot
	require.Eventually(t, func() bool {
		snap = s.Snapshot()
		return !snap.Status.Loading && snap.Status.State.Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestSession_SubmitCompletes(t *testing.T) {
	s := NewSession("s1", &scriptedRunner{}, SessionOptions{ClearAfter: time.Hour})

	runID := s.Submit(context.Background(), domain.SourceDocument{Filename: "doc-a"})
	require.NotEmpty(t, runID)

	snap := waitIdle(t, s)
	assert.Equal(t, runID, snap.Status.RunID)
	assert.Equal(t, domain.RunDone, snap.Status.State)
	assert.Equal(t, StatusDone, snap.Status.StatusMessage)
	assert.Equal(t, 1.0, snap.Status.Progress)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "doc-a", snap.Profile.FullName)
}

func TestSession_SupersedeDiscardsStaleRun(t *testing.T) {
	r := &scriptedRunner{release: make(chan struct{}), started: make(chan string, 2)}
	m := &recordingMetrics{}
	s := NewSession("s1", r, SessionOptions{ClearAfter: time.Hour, Metrics: m})

	first := s.Submit(context.Background(), domain.SourceDocument{Filename: "slow"})
	require.Equal(t, "slow", <-r.started)

	second := s.Submit(context.Background(), domain.SourceDocument{Filename: "fresh"})
	assert.NotEqual(t, first, second)
	close(r.release)

	snap := waitIdle(t, s)
	assert.Equal(t, second, snap.Status.RunID)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "fresh", snap.Profile.FullName)
	assert.Equal(t, 1, m.supersede)

	// nothing from the first run may land after the second one finished
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "fresh", s.Snapshot().Profile.FullName)
}

func TestSession_SupersedeWithRealOrchestrator(t *testing.T) {
	h := newHarness()
	h.ocr.block = make(chan struct{})
	h.ocr.text = "first document"
	s := NewSession("s1", h.svc, SessionOptions{ClearAfter: time.Hour})

	s.Submit(context.Background(), domain.SourceDocument{Data: []byte{1}, MIME: "image/png", Filename: "a.png"})
	require.Eventually(t, func() bool {
		h.ocr.mu.Lock()
		defer h.ocr.mu.Unlock()
		return h.ocr.calls == 1
	}, time.Second, time.Millisecond)

	h.layer.text = "second document"
	h.ocr.mu.Lock()
	h.ocr.block = nil
	h.ocr.mu.Unlock()
	s.Submit(context.Background(), pdfDoc())

	snap := waitIdle(t, s)
	assert.Equal(t, domain.RunDone, snap.Status.State)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "second document", snap.Profile.FullName)
	assert.False(t, snap.Status.UsedOCR)
}

func TestSession_FailedRunHidesProfile(t *testing.T) {
	h := newHarness()
	h.layer.text = "ok"
	s := NewSession("s1", h.svc, SessionOptions{ClearAfter: time.Hour})

	s.Submit(context.Background(), pdfDoc())
	require.NotNil(t, waitIdle(t, s).Profile)

	s.Submit(context.Background(), domain.SourceDocument{Data: []byte("x"), MIME: domain.MIMEDoc, Filename: "old.doc"})
	snap := waitIdle(t, s)
	assert.Equal(t, domain.RunFailed, snap.Status.State)
	assert.Equal(t, domain.MsgLegacyDoc, snap.Status.Error)
	assert.Equal(t, StatusFailedLegacyDoc, snap.Status.StatusMessage)
	assert.Equal(t, 0.0, snap.Status.Progress)
	assert.Nil(t, snap.Profile)
}

func TestSession_StatusDecays(t *testing.T) {
	s := NewSession("s1", &scriptedRunner{}, SessionOptions{ClearAfter: 20 * time.Millisecond})
	s.Submit(context.Background(), domain.SourceDocument{Filename: "doc"})
	waitIdle(t, s)

	require.Eventually(t, func() bool {
		st := s.Snapshot().Status
		return st.StatusMessage == "" && !st.UsedOCR && st.Error == ""
	}, 2*time.Second, 5*time.Millisecond)
	snap := s.Snapshot()
	assert.Equal(t, 1.0, snap.Status.Progress)
	assert.NotNil(t, snap.Profile)
}

func TestSession_Subscribe(t *testing.T) {
	s := NewSession("s1", &scriptedRunner{}, SessionOptions{ClearAfter: time.Hour})
	ch, unsubscribe := s.Subscribe()

	first := <-ch
	assert.Equal(t, domain.RunIdle, first.State)

	s.Submit(context.Background(), domain.SourceDocument{Filename: "doc"})

	var mu sync.Mutex
	var seen []domain.Status
	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range ch {
			mu.Lock()
			seen = append(seen, st)
			mu.Unlock()
			if st.State == domain.RunDone && !st.Loading {
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no terminal status received")
	}
	unsubscribe()
	unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, seen[0].Loading)
	assert.Equal(t, domain.RunDone, seen[len(seen)-1].State)
}

func TestSession_CloseEndsSubscriptions(t *testing.T) {
	s := NewSession("s1", &scriptedRunner{}, SessionOptions{})
	ch, _ := s.Subscribe()
	<-ch
	s.Close()
	_, ok := <-ch
	assert.False(t, ok)

	ch2, _ := s.Subscribe()
	_, ok = <-ch2
	assert.False(t, ok)
}

func TestSessionRegistry_Evict(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }

	reg := NewSessionRegistry(&scriptedRunner{}, SessionOptions{Now: clock}, time.Minute)
	a := reg.GetOrCreate("a")
	assert.Same(t, a, reg.GetOrCreate("a"))
	reg.GetOrCreate("b")
	assert.Equal(t, 2, reg.Len())

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	reg.GetOrCreate("b").Snapshot()

	assert.Equal(t, 1, reg.Evict())
	_, ok := reg.Get("a")
	assert.False(t, ok)
	_, ok = reg.Get("b")
	assert.True(t, ok)

	reg.CloseAll()
	assert.Equal(t, 0, reg.Len())
}
