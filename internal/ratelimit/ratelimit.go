// Package ratelimit provides token bucket rate limiting for provider calls.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/claim-ranker/internal/logging"
)

const defaultRPS = 1

// Limiter wraps a token bucket limiter for outbound provider calls.
type Limiter struct {
	limiter *rate.Limiter
	logger  logging.Logger
}

// New creates a new limiter.
// rps: requests per second
// burst: maximum burst size
func New(rps float64, burst int, logger logging.Logger) *Limiter {
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// PerMinute creates a limiter from a requests-per-minute budget.
func PerMinute(rpm int, logger logging.Logger) *Limiter {
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 60
	if burst < 1 {
		burst = 1
	}
	return New(float64(rpm)/60.0, burst, logger)
}

// Wait blocks until the rate limit allows the operation or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		l.logger.Warn("Rate limiter wait failed", "error", err)
		return err
	}
	return nil
}

// Allow checks if an operation is allowed without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
