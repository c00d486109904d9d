// Package guard composes the resilience primitives behind one call
// site.
//
// A Guard wraps an arbitrary unit of work, keyed by operation name,
// with up to three admission checks applied in a fixed order: rate
// limiter, bulkhead, circuit breaker. The rationale for the order is
// cost: reject cheaply before spending a concurrency slot, and spend a
// slot before spending a trust probe on a possibly-broken dependency.
//
//	pools := bulkhead.New(bulkhead.PoolConfig{Name: "default", MaxConcurrency: 8})
//	g, err := guard.New(
//	    guard.WithLimiter(ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{Capacity: 50, RefillRate: 25})),
//	    guard.WithPools(pools),
//	    guard.WithDefaultPool("default"),
//	    guard.WithBreaker(breaker.New(breaker.Config{FailureThreshold: 0.5, MinSamples: 10})),
//	)
//
//	err = g.Execute(ctx, "payments", func(ctx context.Context) error {
//	    return callPayments(ctx)
//	})
//
// Rejections surface as typed errors (*RateLimitError,
// bulkhead.ErrOverloaded, breaker.ErrOpen) and are never retried
// internally; retries belong to the caller, layered outside the guard.
// Only outcomes of admitted work feed the breaker, so rejection storms
// cannot open a closed circuit on their own.
//
// Per-key statistics (executions, successes, failures, rejections per
// primitive) are kept by the guard itself; Snapshot returns them as a
// flat map for telemetry export.
package guard
