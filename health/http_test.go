package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_Healthy(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("db", func(ctx context.Context) Result {
		return Result{Status: StatusHealthy, Message: "connected"}
	}))

	rec := httptest.NewRecorder()
	Handler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("body status = %q, want healthy", resp.Status)
	}
	if resp.Checks["db"].Message != "connected" {
		t.Errorf("db message = %q, want connected", resp.Checks["db"].Message)
	}
}

func TestHandler_Unhealthy(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("db", func(ctx context.Context) Result {
		return Result{Status: StatusUnhealthy, Message: "connection refused"}
	}))

	rec := httptest.NewRecorder()
	Handler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("body status = %q, want unhealthy", resp.Status)
	}
}

func TestHandler_DegradedStays200(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("pools", func(ctx context.Context) Result {
		return Result{Status: StatusDegraded}
	}))

	rec := httptest.NewRecorder()
	Handler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
}
