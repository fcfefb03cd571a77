package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/gokv/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	log.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// CommandMetrics holds the instruments recorded around store commands.
type CommandMetrics struct {
	commandTotal    metric.Int64Counter
	commandDuration metric.Float64Histogram
	commandActive   metric.Int64UpDownCounter
	scanElements    metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewCommandMetrics creates the command instruments on meter.
func NewCommandMetrics(meter metric.Meter) (*CommandMetrics, error) {
	commandTotal, err := meter.Int64Counter("gokv.command.total",
		metric.WithDescription("Total number of store commands by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gokv.command.total counter: %w", err)
	}

	commandDuration, err := meter.Float64Histogram("gokv.command.duration",
		metric.WithDescription("Duration of store commands in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gokv.command.duration histogram: %w", err)
	}

	commandActive, err := meter.Int64UpDownCounter("gokv.command.active",
		metric.WithDescription("Number of store commands in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gokv.command.active counter: %w", err)
	}

	scanElements, err := meter.Int64Counter("gokv.scan.elements",
		metric.WithDescription("Elements delivered by scan steps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gokv.scan.elements counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("gokv.error.total",
		metric.WithDescription("Store command errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gokv.error.total counter: %w", err)
	}

	return &CommandMetrics{
		commandTotal:    commandTotal,
		commandDuration: commandDuration,
		commandActive:   commandActive,
		scanElements:    scanElements,
		errorTotal:      errorTotal,
	}, nil
}

// RecordStart increments the in-flight gauge.
func (m *CommandMetrics) RecordStart(ctx context.Context, command string) {
	m.commandActive.Add(ctx, 1, metric.WithAttributes(attribute.String("command", command)))
}

// RecordCommand decrements the in-flight gauge and records the outcome.
func (m *CommandMetrics) RecordCommand(ctx context.Context, command, status string, duration time.Duration) {
	cmdAttr := attribute.String("command", command)
	m.commandActive.Add(ctx, -1, metric.WithAttributes(cmdAttr))
	m.commandTotal.Add(ctx, 1, metric.WithAttributes(cmdAttr, attribute.String("status", status)))
	m.commandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(cmdAttr))
}

// RecordError counts an error by its code.
func (m *CommandMetrics) RecordError(ctx context.Context, command, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("code", code),
	))
}

// RecordScanElements counts the elements one scan step delivered.
func (m *CommandMetrics) RecordScanElements(ctx context.Context, command string, n int) {
	m.scanElements.Add(ctx, int64(n), metric.WithAttributes(attribute.String("command", command)))
}
