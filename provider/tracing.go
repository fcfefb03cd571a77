package provider

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/observability"
)

// WithTracing returns a Middleware that wraps each Execute call in a client
// span named after the operation and tagged with db.system.
func WithTracing[I, O any](system string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, system: system}
	}
}

type tracingRR[I, O any] struct {
	inner  RequestResponse[I, O]
	system string
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	op := operationName(input, t.inner.Name())
	ctx, span := observability.StartSpan(ctx, op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrDBSystem, t.system)
	observability.SetSpanAttribute(ctx, observability.AttrDBOperation, op)

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(errors.Wrap(err).Code))
	}
	return output, err
}
