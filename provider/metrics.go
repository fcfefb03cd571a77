package provider

import (
	"context"
	"time"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/observability"
)

// WithMetrics returns a Middleware recording in-flight count, outcome,
// duration and error code for each Execute call.
func WithMetrics[I, O any](metrics *observability.CommandMetrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if metrics == nil {
			return inner
		}
		return &metricsRR[I, O]{inner: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.CommandMetrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	op := operationName(input, m.inner.Name())
	m.metrics.RecordStart(ctx, op)

	start := time.Now()
	output, err := m.inner.Execute(ctx, input)

	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, op, string(errors.Wrap(err).Code))
	}
	m.metrics.RecordCommand(ctx, op, status, time.Since(start))
	return output, err
}
