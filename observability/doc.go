// Package observability wires OpenTelemetry tracing and metrics for store
// commands.
//
//	shutdown, err := observability.Setup(ctx, cfg, log)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewCommandMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordCommand(ctx, "HSCAN", "ok", duration)
package observability
