package breaker

import "errors"

// ErrOpen is returned by Admit when the circuit is open, or when a
// half-open probe is already in flight. The call was never attempted
// and may be retried after the reset timeout.
var ErrOpen = errors.New("breaker: circuit is open")
