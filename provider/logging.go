package provider

import (
	"context"
	"time"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
)

// WithLogging returns a Middleware that logs each Execute call with its
// operation name, duration and error code. Successful calls and
// cancellations log at debug, failures at warn.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &loggingRR[I, O]{inner: inner, log: log}
	}
}

type loggingRR[I, O any] struct {
	inner RequestResponse[I, O]
	log   *logger.Logger
}

func (l *loggingRR[I, O]) Name() string                         { return l.inner.Name() }
func (l *loggingRR[I, O]) IsAvailable(ctx context.Context) bool { return l.inner.IsAvailable(ctx) }

func (l *loggingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := l.inner.Execute(ctx, input)

	fields := logger.Fields(
		"provider", l.inner.Name(),
		logger.FieldOperation, operationName(input, l.inner.Name()),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	log := l.log.WithContext(ctx)

	switch {
	case err == nil:
		log.Debug("provider execute ok", fields)
	case errors.IsCancelled(err):
		log.Debug("provider execute cancelled", fields)
	default:
		if appErr, ok := errors.AsAppError(err); ok {
			fields["code"] = string(appErr.Code)
		}
		log.Warn("provider execute failed", logger.MergeWithError(fields, err))
	}
	return output, err
}
