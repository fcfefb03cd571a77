package deferred

import (
	"context"

	"github.com/kbukum/gokv/errors"
)

// Await suspends the calling goroutine until r leaves pending or ctx is done.
//
// A result that is already terminal returns at once without suspending.
// The value or error stored by the producer is returned unchanged. When ctx
// ends first, r is cancelled (best effort) and a CANCELLED error wrapping
// ctx.Err() is returned, even if a value arrives concurrently. Calling Await
// again returns the stored outcome.
func Await[T any](ctx context.Context, r *Result[T]) (T, error) {
	select {
	case <-r.Done():
		return r.Outcome()
	default:
	}

	select {
	case <-r.Done():
		return r.Outcome()
	case <-ctx.Done():
		cause := ctx.Err()
		r.CancelWithCause(cause)
		var zero T
		return zero, errors.Cancelled(cause)
	}
}

// Then returns a result derived from src by fn. fn runs on a goroutine owned
// by the derived result, never on the goroutine that completed src, and
// receives a context cancelled when the derived result is cancelled.
// Errors from src pass through unchanged. Cancelling the derived result
// cancels src.
func Then[T, U any](src *Result[T], fn func(ctx context.Context, v T) (U, error)) *Result[U] {
	dst := New[U]()
	ctx, cancel := context.WithCancel(context.Background())
	dst.OnCancel(func() {
		cancel()
		src.Cancel()
	})

	go func() {
		defer cancel()

		select {
		case <-src.Done():
		case <-dst.Done():
			return
		}

		v, err := src.Outcome()
		if err != nil {
			settleError(dst, err)
			return
		}

		u, err := fn(ctx, v)
		if err != nil {
			settleError(dst, err)
			return
		}
		dst.Complete(u)
	}()
	return dst
}

func settleError[U any](dst *Result[U], err error) {
	if errors.IsCancelled(err) {
		var zero U
		dst.finish(StateCancelled, zero, err)
		return
	}
	dst.Fail(err)
}
