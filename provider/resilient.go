package provider

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/resilience"
)

// WithResilience returns a Middleware applying the resilience chain:
// RateLimiter -> Bulkhead -> CircuitBreaker -> Retry -> Execute.
// An empty config leaves the provider unchanged.
func WithResilience[I, O any](cfg ResilienceConfig) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if cfg.IsEmpty() {
			return inner
		}
		return &resilientRR[I, O]{inner: inner, state: BuildResilience(cfg)}
	}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable is false while the circuit is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	return r.state.CircuitState() != resilience.StateOpen && r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func(ctx context.Context) (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn through the resilience chain held by s.
// Resilience sentinel errors come back as *errors.AppError; errors from fn
// are returned unchanged.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func(ctx context.Context) (T, error)) (T, error) {
	if s == nil {
		return fn(ctx)
	}

	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			var zero T
			return zero, wrapResilienceError(err)
		}
	}

	call := func() (T, error) { return fn(ctx) }
	if s.retryCfg != nil {
		retryCfg := *s.retryCfg
		call = func() (T, error) {
			return resilience.Retry(ctx, retryCfg, func(int) (T, error) { return fn(ctx) })
		}
	}

	if s.cb != nil {
		cbCall := call
		call = func() (T, error) {
			var result T
			var resultErr error
			cbErr := s.cb.Execute(func() error {
				result, resultErr = cbCall()
				return resultErr
			})
			if cbErr != nil && resultErr == nil {
				return result, wrapResilienceError(cbErr)
			}
			return result, resultErr
		}
	}

	if s.bh != nil {
		bhCall := call
		var resultErr error
		result, err := resilience.ExecuteWithResult(ctx, s.bh, func() (T, error) {
			var r T
			r, resultErr = bhCall()
			return r, resultErr
		})
		if err != nil && resultErr == nil {
			return result, wrapResilienceError(err)
		}
		return result, err
	}

	return call()
}

// wrapResilienceError converts resilience sentinel and context errors to
// *errors.AppError.
func wrapResilienceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return errors.ServiceUnavailable("store").WithCause(err).WithDetail("reason", "circuit open")
	case stderrors.Is(err, resilience.ErrBulkheadFull), stderrors.Is(err, resilience.ErrBulkheadTimeout):
		return errors.ServiceUnavailable("store").WithCause(err).WithDetail("reason", "concurrency limit reached")
	case stderrors.Is(err, context.Canceled):
		return errors.Cancelled(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout("waiting for capacity").WithCause(err)
	default:
		return err
	}
}
