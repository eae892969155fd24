package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/cv-autofill/internal/config"
	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/usecase"
)

// ProfileRunner runs documents and reads back stored results.
type ProfileRunner interface {
	usecase.DocumentRunner
	Get(ctx context.Context, id string) (domain.RunResult, error)
}

// ReadinessCheck is one dependency probe reported by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handlers dependencies.
type Server struct {
	Cfg      config.Config
	Profiles ProfileRunner
	Sessions *usecase.SessionRegistry
	Checks   []ReadinessCheck

	// Budget, when set, caps extractions across all replicas.
	Budget Limiter

	// KeepAlive is the SSE ping interval.
	KeepAlive time.Duration
}

// NewServer constructs the handler set.
func NewServer(cfg config.Config, profiles ProfileRunner, sessions *usecase.SessionRegistry, checks ...ReadinessCheck) *Server {
	return &Server{Cfg: cfg, Profiles: profiles, Sessions: sessions, Checks: checks, KeepAlive: 15 * time.Second}
}

type extractResponse struct {
	ID       string                   `json:"id"`
	Outcome  domain.ExtractionOutcome `json:"outcome"`
	Profile  domain.StructuredProfile `json:"profile"`
	Complete bool                     `json:"complete"`
	Missing  []string                 `json:"missing"`
}

// ExtractHandler runs one uploaded document synchronously.
func (s *Server) ExtractHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := readUpload(w, r, s.Cfg.MaxUploadBytes())
		if err != nil {
			s.writeUploadError(w, r, err)
			return
		}
		res, err := s.Profiles.Run(r.Context(), doc, nil)
		if err != nil {
			writeRunError(w, r, err)
			return
		}
		complete, missing := Completeness(res.Profile)
		writeJSON(w, http.StatusOK, extractResponse{
			ID:       res.ID,
			Outcome:  res.Outcome,
			Profile:  res.Profile,
			Complete: complete,
			Missing:  missing,
		})
	}
}

// SubmitDocumentHandler starts a run in a session, superseding any run in
// flight there.
func (s *Server) SubmitDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if err := ValidateSessionID(id); err != nil {
			writeError(w, r, err, map[string]string{"field": "session_id"})
			return
		}
		doc, err := readUpload(w, r, s.Cfg.MaxUploadBytes())
		if err != nil {
			s.writeUploadError(w, r, err)
			return
		}
		runID := s.Sessions.GetOrCreate(id).Submit(r.Context(), doc)
		LoggerFrom(r).Info("document submitted", "session_id", id, "run_id", runID, "mime", doc.MIME, "bytes", len(doc.Data))
		writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
	}
}

type sessionResponse struct {
	Status   domain.Status             `json:"status"`
	Profile  *domain.StructuredProfile `json:"profile"`
	Disabled bool                      `json:"disabled"`
	Complete bool                      `json:"complete"`
	Missing  []string                  `json:"missing"`
}

// SessionHandler returns the session's current status and profile.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		snap := sess.Snapshot()
		resp := sessionResponse{Status: snap.Status, Profile: snap.Profile, Disabled: snap.Status.Loading, Missing: []string{}}
		if snap.Profile != nil {
			resp.Complete, resp.Missing = Completeness(*snap.Profile)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// SessionEventsHandler streams status changes as SSE "status" events until
// the client goes away. A single "profile" event follows each completed run.
func (s *Server) SessionEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		sse, err := newSSEWriter(w)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		updates, unsubscribe := sess.Subscribe()
		defer unsubscribe()

		keepAlive := s.KeepAlive
		if keepAlive <= 0 {
			keepAlive = 15 * time.Second
		}
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		var sentProfile string
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if err := sse.ping(); err != nil {
					return
				}
			case st, open := <-updates:
				if !open {
					return
				}
				if err := sse.event("status", st); err != nil {
					return
				}
				if st.State != domain.RunDone || st.Loading || st.RunID == sentProfile {
					continue
				}
				if snap := sess.Snapshot(); snap.Profile != nil && snap.Status.RunID == st.RunID {
					sentProfile = st.RunID
					if err := sse.event("profile", snap.Profile); err != nil {
						return
					}
				}
			}
		}
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*usecase.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	if err := ValidateSessionID(id); err != nil {
		writeError(w, r, err, map[string]string{"field": "session_id"})
		return nil, false
	}
	sess, ok := s.Sessions.Get(id)
	if !ok {
		writeError(w, r, domain.ErrNotFound, map[string]string{"session_id": id})
		return nil, false
	}
	return sess, true
}

// ProfileHandler returns a stored run by id.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		res, err := s.Profiles.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, map[string]string{"id": id})
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ReadyzHandler probes every configured dependency.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(s.Checks))
		status := http.StatusOK
		for _, c := range s.Checks {
			if err := c.Check(ctx); err != nil {
				checks = append(checks, check{Name: c.Name, Details: err.Error()})
				status = http.StatusServiceUnavailable
				continue
			}
			checks = append(checks, check{Name: c.Name, OK: true})
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}
