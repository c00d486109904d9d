package guard

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited is the sentinel matched by errors.Is for rate limit
// rejections. The concrete error is always a *RateLimitError.
var ErrRateLimited = errors.New("guard: rate limit exceeded")

// RateLimitError is returned when the rate limiter rejects a call
// before anything else runs.
type RateLimitError struct {
	// Key is the operation key that was limited.
	Key string

	// RetryAfter is how long the caller should back off.
	RetryAfter time.Duration

	// ResetAt is when capacity next becomes available.
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("guard: rate limit exceeded for %q, retry after %s", e.Key, e.RetryAfter)
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
