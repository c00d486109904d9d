// Package health exposes the resilience primitives' state as health
// checks.
//
// A BreakerChecker turns a circuit breaker registry into a check: any
// open circuit means unhealthy, a half-open probe in progress means
// degraded. A PoolChecker reports degraded when bulkhead pools are
// queueing. An Aggregator combines checkers and Handler serves the
// combined view as JSON for an external probe or telemetry scraper.
package health
