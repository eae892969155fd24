package httpserver

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

// Limiter draws from a named, shared token bucket.
type Limiter interface {
	Allow(ctx context.Context, bucket string, cost int64) (bool, time.Duration, error)
}

// Budget rejects requests with 429 once the shared bucket is empty. A nil
// limiter disables the check.
func Budget(l Limiter, bucket string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter, err := l.Allow(r.Context(), bucket, 1)
			if err != nil {
				LoggerFrom(r).Warn("rate limiter unavailable, allowing request", "bucket", bucket, "error", err)
			}
			if !ok {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, r, domain.ErrRateLimited, map[string]any{"bucket": bucket, "retry_after_seconds": secs})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
