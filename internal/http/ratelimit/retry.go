package ratelimit

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"time"
)

// FetchRetryError represents an error when all retry attempts are exhausted
type FetchRetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *FetchRetryError) Error() string {
	msg := "failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *FetchRetryError) Unwrap() error {
	return e.LastError
}

// IsRetryableStatus checks if an HTTP status code is retryable
// Retryable: 429, 5xx
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// CalculateBackoff returns initial * 2^attempt capped at max, plus 0-25% jitter
func CalculateBackoff(attempt int, config Config) time.Duration {
	delay := float64(config.InitialBackoff) * math.Pow(2.0, float64(attempt))
	capped := math.Min(delay, float64(config.MaxBackoff))
	return time.Duration(capped + rand.Float64()*0.25*capped)
}

// CalculateRateLimitBackoff honours Retry-After (seconds) when present, otherwise
// backs off with a 3x multiplier.
func CalculateRateLimitBackoff(attempt int, config Config, retryAfter string) time.Duration {
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	delay := float64(config.InitialBackoff) * math.Pow(3.0, float64(attempt))
	capped := math.Min(delay, float64(config.MaxBackoff))
	return time.Duration(capped + rand.Float64()*0.25*capped)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
