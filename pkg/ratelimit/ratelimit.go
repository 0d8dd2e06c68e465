// Package ratelimit provides a client-side token-bucket limiter for outgoing API calls.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration
type Config struct {
	// Rate is the number of requests allowed per second. Zero or negative disables limiting.
	Rate float64
	// Burst is the maximum number of requests allowed in a burst
	Burst int
}

// DefaultSDMConfig returns the default config for Smart Device Management calls
// 10 req/s, burst of 5
func DefaultSDMConfig() Config {
	return Config{
		Rate:  10,
		Burst: 5,
	}
}

// Limiter throttles outgoing requests of a single client
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter with the given configuration
func New(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Limit(cfg.Rate)
	if cfg.Rate <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, cfg.Burst),
	}
}

// Wait blocks until a request may be sent or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
