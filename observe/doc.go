// Package observe wires logging, metrics, and tracing for guarded
// calls.
//
// An Observer bundles an OpenTelemetry tracer and meter with a
// structured JSON logger. The guard package records one metric data
// point per call (outcome-labelled counter plus a duration histogram)
// and one span per execution; circuit state transitions are counted
// separately.
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "orders",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//
// Every subsystem degrades to a no-op when disabled, so callers never
// branch on whether telemetry is configured.
package observe
