package exporters

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestNewTracingExporter_InvalidName(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), "invalid")
	if err == nil {
		t.Fatal("expected error for invalid exporter name")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unknown exporter") {
		t.Errorf("error = %v, want mention of unknown exporter", err)
	}
}

func TestNewTracingExporter_Stdout(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "stdout")
	if err != nil {
		t.Fatalf("NewTracingExporter(stdout) error = %v", err)
	}
	if exp == nil {
		t.Fatal("exporter is nil")
	}
}

func TestNewTracingExporter_None(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "none")
	if err != nil {
		t.Fatalf("NewTracingExporter(none) error = %v", err)
	}
	if exp == nil {
		t.Fatal("exporter is nil")
	}
}

func TestNewTracingExporter_OtlpMissingEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	os.Unsetenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	os.Unsetenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")

	_, err := NewTracingExporter(context.Background(), "otlp")
	if err == nil {
		t.Fatal("expected error when OTLP endpoint not configured")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "endpoint") {
		t.Errorf("error = %v, want mention of endpoint", err)
	}
}

func TestNewMetricsReader_Stdout(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "stdout")
	if err != nil {
		t.Fatalf("NewMetricsReader(stdout) error = %v", err)
	}
	if reader == nil {
		t.Fatal("reader is nil")
	}
	_ = reader.Shutdown(context.Background())
}

func TestNewMetricsReader_Prometheus(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "prometheus")
	if err != nil {
		t.Fatalf("NewMetricsReader(prometheus) error = %v", err)
	}
	if reader == nil {
		t.Fatal("reader is nil")
	}
	_ = reader.Shutdown(context.Background())
}

func TestNewMetricsReader_InvalidName(t *testing.T) {
	_, err := NewMetricsReader(context.Background(), "statsd")
	if err == nil {
		t.Fatal("expected error for invalid reader name")
	}
}
