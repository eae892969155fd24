package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/fairyhunter13/cv-autofill/internal/adapter/httpserver"
)

// Pinger is anything with a context-aware Ping: the pgx pool, the sqlite
// repo and the Redpanda producer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Dependencies are the optional backends the server was started with. Nil
// entries are not probed.
type Dependencies struct {
	DB    Pinger
	Redis RedisClient
	Kafka Pinger
}

// BuildReadinessChecks returns one check per configured dependency.
func BuildReadinessChecks(deps Dependencies) []httpserver.ReadinessCheck {
	var checks []httpserver.ReadinessCheck
	if deps.DB != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "db", Check: func(ctx context.Context) error {
			if err := deps.DB.Ping(ctx); err != nil {
				return fmt.Errorf("db: %w", err)
			}
			return nil
		}})
	}
	if deps.Redis != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}})
	}
	if deps.Kafka != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "kafka", Check: deps.Kafka.Ping})
	}
	return checks
}
