// Package ratelimit keeps token buckets in Redis so every server replica
// draws from the same extraction budget.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// BucketConfig is a token bucket: Capacity tokens, refilled at RefillRate
// tokens per second.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64
}

// PerMinute builds a bucket allowing n requests per minute with bursts of n.
func PerMinute(n int) BucketConfig {
	if n <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{Capacity: int64(n), RefillRate: float64(n) / 60.0}
}

// RedisLimiter evaluates token buckets atomically with a Lua script.
type RedisLimiter struct {
	rdb     redis.Scripter
	script  *redis.Script
	prefix  string
	now     func() time.Time
	mu      sync.RWMutex
	buckets map[string]BucketConfig
}

// NewRedisLimiter returns nil when rdb is nil; a nil limiter allows everything.
func NewRedisLimiter(rdb redis.Scripter, buckets map[string]BucketConfig) *RedisLimiter {
	if rdb == nil {
		return nil
	}
	if buckets == nil {
		buckets = map[string]BucketConfig{}
	}
	return &RedisLimiter{
		rdb:     rdb,
		script:  redis.NewScript(tokenBucketScript),
		prefix:  "cvx:rate:",
		now:     time.Now,
		buckets: buckets,
	}
}

const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local tokens = capacity
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] then
  tokens = tonumber(data[1])
end
if data[2] then
  last_refill = tonumber(data[2])
end

local delta = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local retry_after = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
elseif refill_rate > 0 then
  retry_after = (cost - tokens) / refill_rate
end

redis.call("HSET", key, "tokens", tokens, "last_refill", now)
redis.call("EXPIRE", key, math.ceil(capacity / refill_rate) + 60)

return { allowed, tostring(retry_after) }
`

// Allow takes cost tokens from the named bucket. Unknown buckets and Redis
// failures allow the request; the error is still returned for logging.
func (l *RedisLimiter) Allow(ctx context.Context, bucket string, cost int64) (bool, time.Duration, error) {
	if l == nil {
		return true, 0, nil
	}
	l.mu.RLock()
	cfg, ok := l.buckets[bucket]
	l.mu.RUnlock()
	if !ok || cfg.Capacity <= 0 || cfg.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	nowSec := float64(l.now().UnixNano()) / 1e9
	res, err := l.script.Run(ctx, l.rdb, []string{l.prefix + bucket}, cfg.Capacity, cfg.RefillRate, nowSec, cost).Slice()
	if err != nil {
		slog.Error("redis rate limiter script error", slog.String("bucket", bucket), slog.Any("error", err))
		return true, 0, err
	}
	if len(res) < 2 {
		slog.Error("redis rate limiter unexpected script result", slog.String("bucket", bucket), slog.Any("result", res))
		return true, 0, nil
	}

	allowed := toInt64(res[0]) == 1
	retryAfter := time.Duration(math.Ceil(toFloat64(res[1]) * float64(time.Second)))
	return allowed, retryAfter, nil
}

// SetBucket updates or creates a bucket. It is safe for concurrent use.
func (l *RedisLimiter) SetBucket(bucket string, cfg BucketConfig) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[bucket] = cfg
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	case int64:
		return float64(t)
	default:
		return 0
	}
}
