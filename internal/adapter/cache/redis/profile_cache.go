// Package rediscache memoizes completed runs in Redis keyed by document digest.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

const keyPrefix = "cvx:profile:"

// ProfileCache implements domain.ProfileCache.
type ProfileCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ domain.ProfileCache = (*ProfileCache)(nil)

// New returns a cache storing entries for ttl. A zero ttl keeps entries
// until Redis evicts them.
func New(rdb redis.Cmdable, ttl time.Duration) *ProfileCache {
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("op=rediscache.NewClient: %w", err)
	}
	return redis.NewClient(opts), nil
}

func key(sha string) string { return keyPrefix + sha }

// Get returns the cached run for sha. A miss is (zero, false, nil).
func (c *ProfileCache) Get(ctx context.Context, sha string) (domain.RunResult, bool, error) {
	ctx, span := otel.Tracer("cache.redis").Start(ctx, "ProfileCache.Get")
	defer span.End()

	b, err := c.rdb.Get(ctx, key(sha)).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return domain.RunResult{}, false, nil
	}
	if err != nil {
		return domain.RunResult{}, false, fmt.Errorf("op=rediscache.Get: %w", err)
	}
	var r domain.RunResult
	if err := json.Unmarshal(b, &r); err != nil {
		// a corrupt entry is treated as a miss and dropped
		_ = c.rdb.Del(ctx, key(sha)).Err()
		return domain.RunResult{}, false, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return r, true, nil
}

// Set stores r under sha.
func (c *ProfileCache) Set(ctx context.Context, sha string, r domain.RunResult) error {
	ctx, span := otel.Tracer("cache.redis").Start(ctx, "ProfileCache.Set")
	defer span.End()

	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("op=rediscache.Set: %w", err)
	}
	if err := c.rdb.Set(ctx, key(sha), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=rediscache.Set: %w", err)
	}
	return nil
}
