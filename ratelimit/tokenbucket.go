package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucketConfig configures a TokenBucket limiter.
type TokenBucketConfig struct {
	// Capacity is the maximum number of tokens a bucket holds. New keys
	// start with a full bucket.
	// Default: 100
	Capacity int

	// RefillRate is the number of tokens added per second, continuously,
	// capped at Capacity.
	// Default: 10
	RefillRate float64

	// IdleTTL is how long a bucket may go untouched before Prune evicts
	// it.
	// Default: 5 minutes
	IdleTTL time.Duration

	// Now overrides the clock, for tests.
	// Default: time.Now
	Now func() time.Time
}

// TokenBucket is a per-key token bucket limiter. Refill is computed
// lazily on access; there is no background timer.
type TokenBucket struct {
	config TokenBucketConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

// NewTokenBucket creates a token bucket limiter.
func NewTokenBucket(config TokenBucketConfig) *TokenBucket {
	if config.Capacity <= 0 {
		config.Capacity = 100
	}
	if config.RefillRate <= 0 {
		config.RefillRate = 10
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 5 * time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &TokenBucket{
		config:  config,
		buckets: make(map[string]*bucket),
	}
}

// Allow checks admission for one request under key.
func (tb *TokenBucket) Allow(key string) Decision {
	return tb.AllowN(key, 1)
}

// AllowN checks admission for a request costing n tokens. A denial
// consumes nothing; the bucket is left exactly as found after refill.
func (tb *TokenBucket) AllowN(key string, n int) Decision {
	if n <= 0 {
		n = 1
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.config.Now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{
			tokens:     float64(tb.config.Capacity),
			lastRefill: now,
		}
		tb.buckets[key] = b
	}
	b.lastAccess = now

	// Lazy refill, capped at capacity.
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(float64(tb.config.Capacity), b.tokens+elapsed*tb.config.RefillRate)
		b.lastRefill = now
	}

	cost := float64(n)
	if b.tokens >= cost {
		b.tokens -= cost
		return Decision{Allowed: true, Remaining: int(b.tokens)}
	}

	wait := time.Duration((cost - b.tokens) / tb.config.RefillRate * float64(time.Second))
	return Decision{
		Remaining:  int(b.tokens),
		RetryAfter: wait,
		ResetAt:    now.Add(wait),
	}
}

// Reset clears all state for key. The next access starts from a full
// bucket.
func (tb *TokenBucket) Reset(key string) {
	tb.mu.Lock()
	delete(tb.buckets, key)
	tb.mu.Unlock()
}

// Prune evicts buckets untouched for longer than IdleTTL.
func (tb *TokenBucket) Prune() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	cutoff := tb.config.Now().Add(-tb.config.IdleTTL)
	removed := 0
	for key, b := range tb.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(tb.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

// Tokens returns the current token count for key after refill. Unknown
// keys report a full bucket.
func (tb *TokenBucket) Tokens(key string) float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	b, ok := tb.buckets[key]
	if !ok {
		return float64(tb.config.Capacity)
	}
	now := tb.config.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return b.tokens
	}
	return math.Min(float64(tb.config.Capacity), b.tokens+elapsed*tb.config.RefillRate)
}

var _ Limiter = (*TokenBucket)(nil)
