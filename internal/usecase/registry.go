package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionRegistry owns the sessions of the HTTP surface, keyed by a
// client-chosen id.
type SessionRegistry struct {
	runner  DocumentRunner
	opts    SessionOptions
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry. Sessions idle for longer than
// idleTTL are removed by Evict.
func NewSessionRegistry(runner DocumentRunner, opts SessionOptions, idleTTL time.Duration) *SessionRegistry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &SessionRegistry{runner: runner, opts: opts, idleTTL: idleTTL, sessions: map[string]*Session{}}
}

// Get returns an existing session.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it on first use.
func (r *SessionRegistry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := NewSession(id, r.runner, r.opts)
	r.sessions[id] = s
	return s
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict closes and removes idle sessions and returns how many were removed.
func (r *SessionRegistry) Evict() int {
	cutoff := r.opts.Now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.Idle(cutoff) {
			s.Close()
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// RunPeriodic evicts idle sessions every interval until ctx is done.
func (r *SessionRegistry) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				slog.Info("sessions evicted", slog.Int("count", n), slog.Int("remaining", r.Len()))
			}
		}
	}
}

// CloseAll closes every session.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.Close()
		delete(r.sessions, id)
	}
}
