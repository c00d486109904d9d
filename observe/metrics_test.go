package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	found := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m
		}
	}
	return found
}

func TestMetrics_RecordExecution(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	ctx := context.Background()
	m.RecordExecution(ctx, "payments", "critical", OutcomeSuccess, 5*time.Millisecond)
	m.RecordExecution(ctx, "payments", "critical", OutcomeRejectedBreaker, 0)
	m.RecordExecution(ctx, "payments", "", OutcomeFailure, 12*time.Millisecond)

	found := collect(t, reader)

	total, ok := found["guard.exec.total"]
	if !ok {
		t.Fatal("guard.exec.total not recorded")
	}
	sum, ok := total.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("guard.exec.total data type = %T, want Sum[int64]", total.Data)
	}
	var calls int64
	for _, dp := range sum.DataPoints {
		calls += dp.Value
	}
	if calls != 3 {
		t.Errorf("guard.exec.total = %d, want 3", calls)
	}

	if _, ok := found["guard.exec.duration_ms"]; !ok {
		t.Error("guard.exec.duration_ms not recorded")
	}
}

func TestMetrics_RecordTransition(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	m.RecordTransition(context.Background(), "payments", "closed", "open")

	found := collect(t, reader)
	transitions, ok := found["breaker.transitions"]
	if !ok {
		t.Fatal("breaker.transitions not recorded")
	}
	sum, ok := transitions.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("breaker.transitions data type = %T, want Sum[int64]", transitions.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("breaker.transitions = %+v, want single data point of 1", sum.DataPoints)
	}
}

func TestNoopMetrics(t *testing.T) {
	var m NoopMetrics
	m.RecordExecution(context.Background(), "k", "p", OutcomeSuccess, time.Millisecond)
	m.RecordTransition(context.Background(), "k", "closed", "open")
}
