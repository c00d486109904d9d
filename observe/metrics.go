package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels attached to execution metrics. One of these is
// recorded exactly once per guarded call.
const (
	OutcomeSuccess          = "success"
	OutcomeFailure          = "failure"
	OutcomeCancelled        = "cancelled"
	OutcomeRejectedLimiter  = "rejected_limiter"
	OutcomeRejectedBulkhead = "rejected_bulkhead"
	OutcomeRejectedBreaker  = "rejected_breaker"
)

// Metrics records guarded-call telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one guarded call with its outcome label
	// and end-to-end duration.
	RecordExecution(ctx context.Context, key, pool, outcome string, duration time.Duration)

	// RecordTransition records a circuit state transition for key.
	RecordTransition(ctx context.Context, key, from, to string)
}

type metricsImpl struct {
	execTotal    metric.Int64Counter
	durationHist metric.Float64Histogram
	transitions  metric.Int64Counter
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	execTotal, err := meter.Int64Counter(
		"guard.exec.total",
		metric.WithDescription("Total guarded calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"guard.exec.duration_ms",
		metric.WithDescription("Guarded call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		execTotal:    execTotal,
		durationHist: durationHist,
		transitions:  transitions,
	}, nil
}

func (m *metricsImpl) RecordExecution(ctx context.Context, key, pool, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("guard.key", key),
		attribute.String("guard.outcome", outcome),
	}
	if pool != "" {
		attrs = append(attrs, attribute.String("guard.pool", pool))
	}
	opt := metric.WithAttributes(attrs...)

	m.execTotal.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *metricsImpl) RecordTransition(ctx context.Context, key, from, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker.key", key),
		attribute.String("breaker.from", from),
		attribute.String("breaker.to", to),
	))
}

// NoopMetrics discards all recordings.
type NoopMetrics struct{}

func (NoopMetrics) RecordExecution(context.Context, string, string, string, time.Duration) {}
func (NoopMetrics) RecordTransition(context.Context, string, string, string)              {}
