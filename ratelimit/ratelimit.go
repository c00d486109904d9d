package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed reports whether the request was admitted.
	Allowed bool

	// Remaining is the number of requests that could still be admitted
	// immediately after this decision.
	Remaining int

	// RetryAfter is how long the caller should wait before retrying.
	// Zero when Allowed is true.
	RetryAfter time.Duration

	// ResetAt is when capacity next becomes available. Zero when
	// Allowed is true.
	ResetAt time.Time
}

// Limiter is a per-key admission controller. Unknown keys are created
// implicitly with the limiter's configured defaults; a denied request
// never consumes capacity.
type Limiter interface {
	// Allow checks admission for one request under key.
	Allow(key string) Decision

	// AllowN checks admission for a request costing n units.
	AllowN(key string, n int) Decision

	// Reset clears all state for key.
	Reset(key string)

	// Prune evicts keys that have been idle longer than the configured
	// idle TTL and returns how many were removed.
	Prune() int

	// Len returns the number of tracked keys.
	Len() int
}

// StartSweeper runs l.Prune on the given interval until ctx is done.
// It is a convenience for long-lived limiters whose key space churns.
func StartSweeper(ctx context.Context, l Limiter, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Prune()
			}
		}
	}()
}
