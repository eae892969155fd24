package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/observability"
)

// ProfileService adds memoization, persistence and event publishing around an
// extraction runner. Repo, Cache and Events are optional; their failures are
// logged and never fail a run.
type ProfileService struct {
	Runner DocumentRunner
	Repo   domain.ProfileRepository
	Cache  domain.ProfileCache
	Events domain.EventPublisher

	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight
}

// flight is one shared extraction. Every joined caller receives the full
// event history, and the extraction is canceled only once all of them left.
type flight struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	history []domain.ProgressEvent
	subs    map[int]func(domain.ProgressEvent)
	nextSub int
	members int
}

func (f *flight) emit(e domain.ProgressEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, e)
	for _, fn := range f.subs {
		fn(e)
	}
}

func (f *flight) join(fn func(domain.ProgressEvent)) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.history {
		fn(e)
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.members++
	return id
}

// leave reports whether id was the last member.
func (f *flight) leave(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
	f.members--
	return f.members == 0
}

// NewProfileService constructs a ProfileService.
func NewProfileService(runner DocumentRunner, repo domain.ProfileRepository, cache domain.ProfileCache, events domain.EventPublisher) *ProfileService {
	return &ProfileService{Runner: runner, Repo: repo, Cache: cache, Events: events}
}

// Run returns the cached result for an identical document when available.
// Concurrent runs of the same document share one extraction whose progress
// is delivered to every caller. A caller whose ctx ends stops waiting without
// affecting the others.
func (s *ProfileService) Run(ctx context.Context, doc domain.SourceDocument, emit func(domain.ProgressEvent)) (domain.RunResult, error) {
	if emit == nil {
		emit = func(domain.ProgressEvent) {}
	}
	ctx, span := otel.Tracer("usecase.profile").Start(ctx, "ProfileService.Run")
	defer span.End()
	lg := observability.LoggerFromContext(ctx)

	sha := hexSum(doc.Data)
	span.SetAttributes(attribute.String("document.sha256", sha))

	if s.Cache != nil {
		res, ok, err := s.Cache.Get(ctx, sha)
		switch {
		case err != nil:
			lg.Warn("profile cache get failed", "sha256", sha, "error", err)
		case ok:
			span.SetAttributes(attribute.Bool("cache.hit", true))
			emit(domain.ProgressEvent{State: domain.RunDetecting, Message: StatusDetecting})
			emit(domain.ProgressEvent{State: domain.RunDone, Message: StatusDone, Progress: 1, UsedOCR: res.Outcome.UsedFallback})
			return res, nil
		}
	}

	// flights and the singleflight keys change together under s.mu, so a
	// registered flight always is the call DoChan joins.
	s.mu.Lock()
	if s.flights == nil {
		s.flights = map[string]*flight{}
	}
	f, ok := s.flights[sha]
	if !ok {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: runCtx, cancel: cancel, subs: map[int]func(domain.ProgressEvent){}}
		s.flights[sha] = f
	} else {
		span.SetAttributes(attribute.Bool("run.shared", true))
	}
	sub := f.join(emit)
	ch := s.group.DoChan(sha, func() (any, error) {
		defer s.forget(sha, f)
		defer f.cancel()
		res, err := s.Runner.Run(f.ctx, doc, f.emit)
		if err != nil {
			return domain.RunResult{}, err
		}
		return s.store(context.WithoutCancel(f.ctx), sha, res), nil
	})
	s.mu.Unlock()

	select {
	case r := <-ch:
		f.leave(sub)
		if r.Err != nil {
			return domain.RunResult{}, r.Err
		}
		return r.Val.(domain.RunResult), nil
	case <-ctx.Done():
		s.mu.Lock()
		if f.leave(sub) {
			f.cancel()
			s.forgetLocked(sha, f)
		}
		s.mu.Unlock()
		return domain.RunResult{}, fmt.Errorf("op=profile.Run: %w", ctx.Err())
	}
}

func hexSum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *ProfileService) forget(sha string, f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgetLocked(sha, f)
}

// forgetLocked lets the next caller start a fresh extraction unless a newer
// flight already replaced f.
func (s *ProfileService) forgetLocked(sha string, f *flight) {
	if s.flights[sha] == f {
		delete(s.flights, sha)
		s.group.Forget(sha)
	}
}

func (s *ProfileService) store(ctx context.Context, sha string, res domain.RunResult) domain.RunResult {
	lg := observability.LoggerFromContext(ctx)
	res.DocumentSHA256 = sha

	if s.Repo != nil {
		id, err := s.Repo.Save(ctx, res)
		if err != nil {
			lg.Error("profile save failed", "sha256", sha, "error", err)
		} else {
			res.ID = id
		}
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, sha, res); err != nil {
			lg.Warn("profile cache set failed", "sha256", sha, "error", err)
		}
	}

	if s.Events != nil {
		evt := domain.ProfileExtractedEvent{
			ID:             res.ID,
			DocumentSHA256: sha,
			Filename:       res.Filename,
			Method:         res.Outcome.Method,
			UsedFallback:   res.Outcome.UsedFallback,
			FullName:       res.Profile.FullName,
			Email:          res.Profile.Email,
			OccurredAt:     time.Now().UTC(),
		}
		if err := s.Events.PublishProfileExtracted(ctx, evt); err != nil {
			lg.Error("profile event publish failed", "id", res.ID, "error", err)
		}
	}
	return res
}

// Get loads a stored run result.
func (s *ProfileService) Get(ctx context.Context, id string) (domain.RunResult, error) {
	if id == "" {
		return domain.RunResult{}, fmt.Errorf("%w: id required", domain.ErrInvalidArgument)
	}
	if s.Repo == nil {
		return domain.RunResult{}, fmt.Errorf("op=profile.Get: %w", domain.ErrNotFound)
	}
	return s.Repo.Get(ctx, id)
}

// List returns the most recent stored results.
func (s *ProfileService) List(ctx context.Context, limit int) ([]domain.RunResult, error) {
	if s.Repo == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.Repo.List(ctx, limit)
}
