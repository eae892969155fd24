package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/observability"
)

// DocumentRunner runs one document to completion, reporting progress via emit.
// ExtractionService and ProfileService both satisfy it.
type DocumentRunner interface {
	Run(ctx context.Context, doc domain.SourceDocument, emit func(domain.ProgressEvent)) (domain.RunResult, error)
}

// SessionOptions tunes a Session.
type SessionOptions struct {
	// ClearAfter is the quiet period after a finished run before the status
	// message, error and usedOCR flag are cleared.
	ClearAfter time.Duration
	Metrics    Metrics
	Now        func() time.Time
}

// SessionSnapshot is the state a form collaborator renders.
type SessionSnapshot struct {
	Status  domain.Status             `json:"status"`
	Profile *domain.StructuredProfile `json:"profile"`
	Result  *domain.RunResult         `json:"-"`
}

// Session is a single document slot. Submitting a new document supersedes
// any in-flight run: the old run's context is canceled and everything it
// reports afterwards is discarded. Runs execute one at a time.
type Session struct {
	ID string

	runner     DocumentRunner
	clearAfter time.Duration
	metrics    Metrics
	now        func() time.Time

	runMu sync.Mutex

	mu         sync.Mutex
	gen        uint64
	seq        uint64
	cancel     context.CancelFunc
	status     domain.Status
	result     *domain.RunResult
	subs       map[int]chan domain.Status
	nextSub    int
	lastActive time.Time
	decay      *time.Timer
	closed     bool
}

// NewSession builds an idle session.
func NewSession(id string, runner DocumentRunner, opts SessionOptions) *Session {
	if opts.ClearAfter <= 0 {
		opts.ClearAfter = 10 * time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		ID:         id,
		runner:     runner,
		clearAfter: opts.ClearAfter,
		metrics:    opts.Metrics,
		now:        opts.Now,
		status:     domain.Status{State: domain.RunIdle},
		subs:       map[int]chan domain.Status{},
		lastActive: opts.Now(),
	}
}

// Submit starts a run for doc in the background and returns its run id. The
// run keeps ctx's values but not its cancellation.
func (s *Session) Submit(ctx context.Context, doc domain.SourceDocument) string {
	runID := uuid.NewString()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.status.Loading {
		s.metrics.Supersede()
		observability.LoggerFromContext(ctx).Info("run superseded", "session_id", s.ID, "previous_run_id", s.status.RunID, "run_id", runID)
	}
	s.gen++
	gen := s.gen
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.result = nil
	s.status = domain.Status{RunID: runID, State: domain.RunDetecting, Loading: true}
	s.touchLocked()
	s.publishLocked()
	s.mu.Unlock()

	go func() {
		defer cancel()
		s.runMu.Lock()
		defer s.runMu.Unlock()
		if s.stale(gen) {
			return
		}
		res, err := s.runner.Run(runCtx, doc, func(e domain.ProgressEvent) { s.apply(gen, e) })
		s.finish(gen, res, err)
	}()
	return runID
}

func (s *Session) stale(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.gen || s.closed
}

func (s *Session) apply(gen uint64, e domain.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.closed {
		return
	}
	s.status.State = e.State
	s.status.StatusMessage = e.Message
	s.status.Progress = e.Progress
	s.status.UsedOCR = e.UsedOCR
	if e.Err != nil {
		s.status.Error = domain.UserMessage(e.Err)
	}
	s.touchLocked()
	s.publishLocked()
}

func (s *Session) finish(gen uint64, res domain.RunResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.closed {
		return
	}
	s.status.Loading = false
	if err != nil {
		s.result = nil
		s.status.State = domain.RunFailed
		if s.status.Error == "" {
			s.status.Error = domain.UserMessage(err)
		}
	} else {
		s.result = &res
	}
	s.touchLocked()
	s.publishLocked()
	s.scheduleDecayLocked()
}

// scheduleDecayLocked clears transient notices once no newer update has
// happened for clearAfter.
func (s *Session) scheduleDecayLocked() {
	seq := s.seq
	if s.decay != nil {
		s.decay.Stop()
	}
	s.decay = time.AfterFunc(s.clearAfter, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.seq != seq || s.closed {
			return
		}
		s.status.StatusMessage = ""
		s.status.Error = ""
		s.status.UsedOCR = false
		s.publishLocked()
	})
}

func (s *Session) publishLocked() {
	s.seq++
	st := s.status
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			// slow reader: drop the oldest pending status
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

func (s *Session) touchLocked() { s.lastActive = s.now() }

// Snapshot returns the current status and, for a completed run, its profile.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	snap := SessionSnapshot{Status: s.status}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
		snap.Profile = &res.Profile
	}
	return snap
}

// Subscribe streams status updates, starting with the current one. The
// returned func unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan domain.Status, func()) {
	ch := make(chan domain.Status, 16)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.status
	s.touchLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Idle reports whether the session has no run, no subscribers and no
// activity since before cutoff.
func (s *Session) Idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.status.Loading && len(s.subs) == 0 && s.lastActive.Before(cutoff)
}

// Close cancels any in-flight run and closes all subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	if s.decay != nil {
		s.decay.Stop()
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
