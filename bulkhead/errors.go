package bulkhead

import "errors"

var (
	// ErrPoolNotFound is returned when the named pool was never
	// declared. This is a configuration error, not a transient one.
	ErrPoolNotFound = errors.New("bulkhead: pool not found")

	// ErrOverloaded is returned when a pool with a bounded queue has no
	// slot free and the queue is full. Retryable after backoff.
	ErrOverloaded = errors.New("bulkhead: pool overloaded")
)
