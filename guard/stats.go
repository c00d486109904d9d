package guard

import (
	"sync"

	"github.com/bastionlib/bastion/observe"
)

// Stats is the per-key aggregate view of guarded calls.
type Stats struct {
	// Executions is the number of calls whose work actually ran.
	Executions int64
	Successes  int64
	Failures   int64

	// Cancelled counts calls whose context ended before the work
	// started, typically while waiting in a bulkhead queue.
	Cancelled int64

	RejectedByLimiter  int64
	RejectedByBulkhead int64
	RejectedByBreaker  int64

	// FailureRate is Failures over Executions.
	FailureRate float64

	// RejectionRate is total rejections over all calls.
	RejectionRate float64
}

// statsMap owns the per-key counters. Each key gets its own entry
// under a shared map lock held only long enough to find the entry.
type statsMap struct {
	mu   sync.RWMutex
	keys map[string]*keyStats
}

type keyStats struct {
	mu sync.Mutex

	successes        int64
	failures         int64
	cancelled        int64
	rejectedLimiter  int64
	rejectedBulkhead int64
	rejectedBreaker  int64
}

func newStatsMap() *statsMap {
	return &statsMap{keys: make(map[string]*keyStats)}
}

func (s *statsMap) entry(key string) *keyStats {
	s.mu.RLock()
	ks, ok := s.keys[key]
	s.mu.RUnlock()
	if ok {
		return ks
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ks, ok = s.keys[key]; ok {
		return ks
	}
	ks = &keyStats{}
	s.keys[key] = ks
	return ks
}

func (s *statsMap) record(key, outcome string) {
	ks := s.entry(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	switch outcome {
	case observe.OutcomeSuccess:
		ks.successes++
	case observe.OutcomeFailure:
		ks.failures++
	case observe.OutcomeCancelled:
		ks.cancelled++
	case observe.OutcomeRejectedLimiter:
		ks.rejectedLimiter++
	case observe.OutcomeRejectedBulkhead:
		ks.rejectedBulkhead++
	case observe.OutcomeRejectedBreaker:
		ks.rejectedBreaker++
	}
}

func (s *statsMap) snapshot(key string) Stats {
	s.mu.RLock()
	ks, ok := s.keys[key]
	s.mu.RUnlock()
	if !ok {
		return Stats{}
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	st := Stats{
		Executions:         ks.successes + ks.failures,
		Successes:          ks.successes,
		Failures:           ks.failures,
		Cancelled:          ks.cancelled,
		RejectedByLimiter:  ks.rejectedLimiter,
		RejectedByBulkhead: ks.rejectedBulkhead,
		RejectedByBreaker:  ks.rejectedBreaker,
	}
	if st.Executions > 0 {
		st.FailureRate = float64(st.Failures) / float64(st.Executions)
	}
	rejected := st.RejectedByLimiter + st.RejectedByBulkhead + st.RejectedByBreaker
	if total := st.Executions + rejected + st.Cancelled; total > 0 {
		st.RejectionRate = float64(rejected) / float64(total)
	}
	return st
}

// Stats returns the aggregate counters for key. Unknown keys report
// zero values.
func (g *Guard) Stats(key string) Stats {
	return g.stats.snapshot(key)
}

// Snapshot returns the aggregate counters for every key the guard has
// seen, as a flat map suitable for telemetry export.
func (g *Guard) Snapshot() map[string]Stats {
	g.stats.mu.RLock()
	keys := make([]string, 0, len(g.stats.keys))
	for key := range g.stats.keys {
		keys = append(keys, key)
	}
	g.stats.mu.RUnlock()

	snap := make(map[string]Stats, len(keys))
	for _, key := range keys {
		snap[key] = g.stats.snapshot(key)
	}
	return snap
}
