package config

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig holds the exponential backoff used while waiting for
// Postgres, Redis and Redpanda at startup.
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
	Multiplier      float64
}

// GetRetryConfig returns the retry configuration. Tests get short waits.
func (c Config) GetRetryConfig() RetryConfig {
	if c.IsTest() {
		return RetryConfig{InitialInterval: 10 * time.Millisecond, MaxInterval: 100 * time.Millisecond, MaxElapsed: time.Second, Multiplier: 2}
	}
	return RetryConfig{
		InitialInterval: c.RetryInitialInterval,
		MaxInterval:     c.RetryMaxInterval,
		MaxElapsed:      c.RetryMaxElapsed,
		Multiplier:      c.RetryMultiplier,
	}
}

// BackOff builds a fresh backoff policy from rc.
func (rc RetryConfig) BackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = rc.InitialInterval
	bo.MaxInterval = rc.MaxInterval
	bo.MaxElapsedTime = rc.MaxElapsed
	if rc.Multiplier > 1 {
		bo.Multiplier = rc.Multiplier
	}
	bo.Reset()
	return bo
}
