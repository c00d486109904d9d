package breaker

import (
	"sync"
	"time"
)

// State represents the circuit state for a single key.
type State int

const (
	// StateClosed means calls to the key are admitted normally.
	StateClosed State = iota
	// StateOpen means all calls to the key are rejected.
	StateOpen
	// StateHalfOpen means a single probe call is admitted to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a Breaker.
type Config struct {
	// FailureThreshold is the failure rate (0..1) at or above which a
	// closed circuit opens, once MinSamples outcomes are recorded.
	// Default: 0.5
	FailureThreshold float64

	// MinSamples is the minimum number of recorded outcomes before the
	// failure rate is acted on. A key with fewer samples never opens.
	// Default: 10
	MinSamples int

	// WindowSize is the number of most recent outcomes the failure rate
	// is computed over. Raised to MinSamples if smaller.
	// Default: 100
	WindowSize int

	// ResetTimeout is how long an open circuit waits before admitting a
	// half-open probe.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// OnStateChange is called after a key transitions between states.
	OnStateChange func(key string, from, to State)

	// Now overrides the clock, for tests.
	// Default: time.Now
	Now func() time.Time
}

// Breaker is a registry of per-key circuit breakers. Keys are created
// lazily on first use and share one Config. All methods are safe for
// concurrent use; operations on distinct keys do not contend.
type Breaker struct {
	config Config

	mu       sync.RWMutex
	circuits map[string]*circuit
}

// circuit holds the state machine for one key. All fields are guarded
// by the circuit's own mutex, never the registry lock.
type circuit struct {
	mu sync.Mutex

	state       State
	window      []bool // true = failure, ring buffer of recent outcomes
	next        int
	filled      bool
	failures    int64
	successes   int64
	lastFailure time.Time
	openedAt    time.Time
	probing     bool
}

// New creates a breaker registry.
func New(config Config) *Breaker {
	if config.FailureThreshold <= 0 || config.FailureThreshold > 1 {
		config.FailureThreshold = 0.5
	}
	if config.MinSamples <= 0 {
		config.MinSamples = 10
	}
	if config.WindowSize <= 0 {
		config.WindowSize = 100
	}
	if config.WindowSize < config.MinSamples {
		config.WindowSize = config.MinSamples
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Breaker{
		config:   config,
		circuits: make(map[string]*circuit),
	}
}

// Admit reports whether a call for key may proceed. It returns nil when
// the call is admitted and ErrOpen when the circuit is open or a
// half-open probe is already in flight. Every admitted call must be
// followed by exactly one ReportSuccess or ReportFailure.
func (b *Breaker) Admit(key string) error {
	c := b.circuit(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch b.stateLocked(key, c) {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if c.probing {
			return ErrOpen
		}
		c.probing = true
	}
	return nil
}

// ReportSuccess records a successful outcome for an admitted call.
func (b *Breaker) ReportSuccess(key string) {
	b.report(key, false)
}

// ReportFailure records a failed outcome for an admitted call.
func (b *Breaker) ReportFailure(key string) {
	b.report(key, true)
}

func (b *Breaker) report(key string, failed bool) {
	c := b.circuit(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := b.config.Now()

	switch c.state {
	case StateClosed:
		b.recordLocked(c, failed)
		if failed {
			c.lastFailure = now
		}
		// Evaluated on every outcome, not just failures, so the order
		// outcomes arrive in cannot mask a window past the threshold.
		if b.samplesLocked(c) >= b.config.MinSamples &&
			b.failureRateLocked(c) >= b.config.FailureThreshold {
			b.transitionLocked(key, c, StateOpen, now)
		}

	case StateHalfOpen:
		c.probing = false
		if failed {
			c.lastFailure = now
			b.transitionLocked(key, c, StateOpen, now)
		} else {
			b.resetWindowLocked(c)
			b.transitionLocked(key, c, StateClosed, now)
		}

	case StateOpen:
		// A report can arrive for a call admitted just before the
		// circuit opened. It no longer influences transitions but the
		// counters still reflect it.
		b.recordLocked(c, failed)
		if failed {
			c.lastFailure = now
		}
	}
}

// Stats contains a point-in-time view of one key's circuit.
type Stats struct {
	State       State
	Failures    int64
	Successes   int64
	Total       int64
	FailureRate float64
	LastFailure time.Time
}

// Stats returns the current statistics for key. An unreferenced key
// reports a zero-valued closed circuit.
func (b *Breaker) Stats(key string) Stats {
	b.mu.RLock()
	c, ok := b.circuits[key]
	b.mu.RUnlock()
	if !ok {
		return Stats{State: StateClosed}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.failures + c.successes
	var rate float64
	if total > 0 {
		rate = float64(c.failures) / float64(total)
	}
	return Stats{
		State:       b.stateLocked(key, c),
		Failures:    c.failures,
		Successes:   c.successes,
		Total:       total,
		FailureRate: rate,
		LastFailure: c.lastFailure,
	}
}

// Snapshot returns statistics for every key the breaker has seen.
func (b *Breaker) Snapshot() map[string]Stats {
	b.mu.RLock()
	keys := make([]string, 0, len(b.circuits))
	for key := range b.circuits {
		keys = append(keys, key)
	}
	b.mu.RUnlock()

	snap := make(map[string]Stats, len(keys))
	for _, key := range keys {
		snap[key] = b.Stats(key)
	}
	return snap
}

// Reset returns key to a closed circuit with an empty window.
func (b *Breaker) Reset(key string) {
	b.mu.RLock()
	c, ok := b.circuits[key]
	b.mu.RUnlock()
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b.resetWindowLocked(c)
	c.probing = false
	if c.state != StateClosed {
		b.transitionLocked(key, c, StateClosed, b.config.Now())
	}
}

// circuit returns the state for key, creating it on first reference.
func (b *Breaker) circuit(key string) *circuit {
	b.mu.RLock()
	c, ok := b.circuits[key]
	b.mu.RUnlock()
	if ok {
		return c
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok = b.circuits[key]; ok {
		return c
	}
	c = &circuit{
		state:  StateClosed,
		window: make([]bool, b.config.WindowSize),
	}
	b.circuits[key] = c
	return c
}

// stateLocked returns the effective state, moving an expired open
// circuit to half-open in place.
func (b *Breaker) stateLocked(key string, c *circuit) State {
	if c.state == StateOpen && b.config.Now().Sub(c.openedAt) >= b.config.ResetTimeout {
		c.state = StateHalfOpen
		c.probing = false
		if b.config.OnStateChange != nil {
			b.config.OnStateChange(key, StateOpen, StateHalfOpen)
		}
	}
	return c.state
}

func (b *Breaker) recordLocked(c *circuit, failed bool) {
	if c.filled {
		// Evict the outcome falling out of the window.
		if c.window[c.next] {
			c.failures--
		} else {
			c.successes--
		}
	}
	c.window[c.next] = failed
	c.next++
	if c.next == len(c.window) {
		c.next = 0
		c.filled = true
	}
	if failed {
		c.failures++
	} else {
		c.successes++
	}
}

func (b *Breaker) samplesLocked(c *circuit) int {
	if c.filled {
		return len(c.window)
	}
	return c.next
}

func (b *Breaker) failureRateLocked(c *circuit) float64 {
	n := b.samplesLocked(c)
	if n == 0 {
		return 0
	}
	return float64(c.failures) / float64(n)
}

func (b *Breaker) resetWindowLocked(c *circuit) {
	for i := range c.window {
		c.window[i] = false
	}
	c.next = 0
	c.filled = false
	c.failures = 0
	c.successes = 0
}

func (b *Breaker) transitionLocked(key string, c *circuit, to State, now time.Time) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	switch to {
	case StateOpen:
		c.openedAt = now
	case StateHalfOpen:
		c.probing = false
	}
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(key, from, to)
	}
}
