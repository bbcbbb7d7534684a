package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Config holds outbound rate limiting and retry configuration
type Config struct {
	RequestsPerSecond float64       `json:"requestsPerSecond" mapstructure:"requests_per_second"`
	MaxRetries        int           `json:"maxRetries" mapstructure:"max_retries"`
	InitialBackoff    time.Duration `json:"initialBackoff" mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `json:"maxBackoff" mapstructure:"max_backoff"`
	Timeout           time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the default rate limit configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 1,
		MaxRetries:        3,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		Timeout:           10 * time.Second,
	}
}

// RateLimiter spaces outbound requests with a token bucket
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter for the given config. A non-positive rate disables limiting.
func NewRateLimiter(config Config) *RateLimiter {
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until a request may be sent or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
