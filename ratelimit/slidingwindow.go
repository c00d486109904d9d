package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowConfig configures a SlidingWindow limiter.
type SlidingWindowConfig struct {
	// MaxRequests is the number of requests admitted within any trailing
	// Window interval.
	// Default: 100
	MaxRequests int

	// Window is the length of the trailing interval.
	// Default: 1 minute
	Window time.Duration

	// IdleTTL is how long a key may go untouched before Prune evicts it.
	// Default: 5 minutes
	IdleTTL time.Duration

	// Now overrides the clock, for tests.
	// Default: time.Now
	Now func() time.Time
}

// SlidingWindow is a per-key sliding window limiter. It keeps the
// timestamps of admitted requests and prunes expired ones lazily on
// each check.
type SlidingWindow struct {
	config SlidingWindowConfig

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	admitted   []time.Time
	lastAccess time.Time
}

// NewSlidingWindow creates a sliding window limiter.
func NewSlidingWindow(config SlidingWindowConfig) *SlidingWindow {
	if config.MaxRequests <= 0 {
		config.MaxRequests = 100
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 5 * time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &SlidingWindow{
		config:  config,
		windows: make(map[string]*window),
	}
}

// Allow checks admission for one request under key.
func (sw *SlidingWindow) Allow(key string) Decision {
	return sw.AllowN(key, 1)
}

// AllowN checks admission for n requests under key. Either all n are
// admitted or none are.
func (sw *SlidingWindow) AllowN(key string, n int) Decision {
	if n <= 0 {
		n = 1
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.config.Now()
	w, ok := sw.windows[key]
	if !ok {
		w = &window{}
		sw.windows[key] = w
	}
	w.lastAccess = now

	// Drop timestamps that fell out of the trailing window.
	cutoff := now.Add(-sw.config.Window)
	i := 0
	for i < len(w.admitted) && !w.admitted[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.admitted = append(w.admitted[:0], w.admitted[i:]...)
	}

	if len(w.admitted)+n <= sw.config.MaxRequests {
		for j := 0; j < n; j++ {
			w.admitted = append(w.admitted, now)
		}
		return Decision{Allowed: true, Remaining: sw.config.MaxRequests - len(w.admitted)}
	}

	resetAt := now.Add(sw.config.Window)
	if len(w.admitted) > 0 {
		resetAt = w.admitted[0].Add(sw.config.Window)
	}
	return Decision{
		Remaining:  sw.config.MaxRequests - len(w.admitted),
		RetryAfter: resetAt.Sub(now),
		ResetAt:    resetAt,
	}
}

// Reset clears all state for key.
func (sw *SlidingWindow) Reset(key string) {
	sw.mu.Lock()
	delete(sw.windows, key)
	sw.mu.Unlock()
}

// Prune evicts keys untouched for longer than IdleTTL.
func (sw *SlidingWindow) Prune() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := sw.config.Now().Add(-sw.config.IdleTTL)
	removed := 0
	for key, w := range sw.windows {
		if w.lastAccess.Before(cutoff) {
			delete(sw.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (sw *SlidingWindow) Len() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return len(sw.windows)
}

var _ Limiter = (*SlidingWindow)(nil)
