// Package ratelimit implements per-key admission control.
//
// Two interchangeable algorithms are provided behind the Limiter
// interface:
//
//   - TokenBucket: tokens refill continuously at a configured rate up
//     to a capacity. Bursts up to the capacity are admitted, sustained
//     throughput converges on the refill rate.
//
//   - SlidingWindow: at most MaxRequests are admitted within any
//     trailing Window interval. No bursts beyond the cap, ever.
//
// Keys are created implicitly on first use with the limiter's
// configured defaults, and evicted by Prune (or a StartSweeper
// goroutine) once idle past the configured TTL. Denials never consume
// capacity and carry a RetryAfter hint for the caller.
package ratelimit
