package health

import (
	"context"
	"fmt"
	"time"

	"github.com/bastionlib/bastion/breaker"
	"github.com/bastionlib/bastion/bulkhead"
)

// BreakerChecker reports health from a circuit breaker registry. Any
// open circuit makes the check unhealthy; a half-open circuit makes it
// degraded. Per-key state and failure rates are attached as details.
type BreakerChecker struct {
	name    string
	breaker *breaker.Breaker
}

// NewBreakerChecker creates a checker over b.
func NewBreakerChecker(name string, b *breaker.Breaker) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: b}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return c.name
}

// Check inspects every circuit the breaker has seen.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	snap := c.breaker.Snapshot()

	status := StatusHealthy
	open := 0
	details := make(map[string]any, len(snap)*2)
	for key, st := range snap {
		details[key+"-state"] = st.State.String()
		details[key+"-failure-rate"] = st.FailureRate
		switch st.State {
		case breaker.StateOpen:
			open++
			status = StatusUnhealthy
		case breaker.StateHalfOpen:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}

	msg := fmt.Sprintf("%d circuits, %d open", len(snap), open)
	return Result{
		Status:    status,
		Message:   msg,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// PoolChecker reports health from a bulkhead pool set. A pool whose
// queue is non-empty while every slot is busy counts as degraded; the
// check never reports unhealthy since saturation is load, not failure.
type PoolChecker struct {
	name  string
	pools *bulkhead.Set
}

// NewPoolChecker creates a checker over s.
func NewPoolChecker(name string, s *bulkhead.Set) *PoolChecker {
	return &PoolChecker{name: name, pools: s}
}

// Name returns the name of this checker.
func (c *PoolChecker) Name() string {
	return c.name
}

// Check inspects every pool in the set.
func (c *PoolChecker) Check(ctx context.Context) Result {
	snap := c.pools.Snapshot()

	status := StatusHealthy
	details := make(map[string]any, len(snap)*2)
	for name, st := range snap {
		details[name+"-active"] = st.Active
		details[name+"-queued"] = st.Queued
		details[name+"-rejected"] = st.Rejected
		if st.Queued > 0 {
			status = StatusDegraded
		}
	}

	return Result{
		Status:    status,
		Message:   fmt.Sprintf("%d pools", len(snap)),
		Details:   details,
		Timestamp: time.Now(),
	}
}
