package health

import (
	"context"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("a", func(ctx context.Context) Result {
		return Result{Status: StatusHealthy, Message: "fine"}
	}))
	agg.Register(NewCheckerFunc("b", func(ctx context.Context) Result {
		return Result{Status: StatusDegraded, Message: "wobbly"}
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("CheckAll() returned %d results, want 2", len(results))
	}
	if results["a"].Status != StatusHealthy {
		t.Errorf("a status = %v, want healthy", results["a"].Status)
	}
	if got := agg.OverallStatus(results); got != StatusDegraded {
		t.Errorf("OverallStatus() = %v, want degraded", got)
	}
}

func TestAggregator_OverallWorstWins(t *testing.T) {
	agg := NewAggregator()
	results := map[string]Result{
		"a": {Status: StatusHealthy},
		"b": {Status: StatusUnhealthy},
		"c": {Status: StatusDegraded},
	}
	if got := agg.OverallStatus(results); got != StatusUnhealthy {
		t.Errorf("OverallStatus() = %v, want unhealthy", got)
	}
}

func TestAggregator_Unregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("gone", func(ctx context.Context) Result {
		return Result{Status: StatusUnhealthy}
	}))
	agg.Unregister("gone")

	results := agg.CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("CheckAll() after Unregister returned %d results, want 0", len(results))
	}
	if got := agg.OverallStatus(results); got != StatusHealthy {
		t.Errorf("OverallStatus() of empty set = %v, want healthy", got)
	}
}
