package deferred

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/kbukum/gokv/errors"
)

// State is the lifecycle state of a Result.
type State int32

const (
	StatePending State = iota
	StateCompleted
	StateFailed
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrPending is returned by Outcome for a result that has not completed.
var ErrPending = stderrors.New("deferred: result pending")

// Result is a single-assignment cell holding the outcome of an asynchronous
// operation. The zero value is not usable; create one with New.
type Result[T any] struct {
	mu       sync.Mutex
	state    State
	value    T
	err      error
	done     chan struct{}
	onCancel []func()
}

// New returns a pending result.
func New[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

// Completed returns a result already completed with v.
func Completed[T any](v T) *Result[T] {
	r := New[T]()
	r.Complete(v)
	return r
}

// Failed returns a result already failed with err.
func Failed[T any](err error) *Result[T] {
	r := New[T]()
	r.Fail(err)
	return r
}

// Complete stores v. It reports whether this call performed the transition;
// a result that already left pending is left untouched.
func (r *Result[T]) Complete(v T) bool {
	return r.finish(StateCompleted, v, nil)
}

// Fail stores err. A nil err is recorded as an internal error.
// It reports whether this call performed the transition.
func (r *Result[T]) Fail(err error) bool {
	if err == nil {
		err = errors.Internal(nil).WithDetail("reason", "result failed without an error")
	}
	var zero T
	return r.finish(StateFailed, zero, err)
}

// Cancel moves a pending result to cancelled and runs the OnCancel hooks.
// It reports whether this call performed the transition.
func (r *Result[T]) Cancel() bool {
	return r.CancelWithCause(context.Canceled)
}

// CancelWithCause is Cancel recording cause, typically ctx.Err().
func (r *Result[T]) CancelWithCause(cause error) bool {
	var zero T
	return r.finish(StateCancelled, zero, errors.Cancelled(cause))
}

func (r *Result[T]) finish(state State, v T, err error) bool {
	r.mu.Lock()
	if r.state != StatePending {
		r.mu.Unlock()
		return false
	}
	r.state = state
	r.value = v
	r.err = err
	hooks := r.onCancel
	r.onCancel = nil
	close(r.done)
	r.mu.Unlock()

	if state == StateCancelled {
		for _, fn := range hooks {
			fn()
		}
	}
	return true
}

// OnCancel registers fn to run once if the result is cancelled. Registering
// on an already cancelled result runs fn immediately; on a result completed
// or failed otherwise, fn is dropped.
func (r *Result[T]) OnCancel(fn func()) {
	r.mu.Lock()
	switch r.state {
	case StatePending:
		r.onCancel = append(r.onCancel, fn)
		r.mu.Unlock()
	case StateCancelled:
		r.mu.Unlock()
		fn()
	default:
		r.mu.Unlock()
	}
}

// Done returns a channel closed when the result leaves pending.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// State returns the current state.
func (r *Result[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Outcome returns the stored value and error without blocking. For a
// pending result it returns ErrPending.
func (r *Result[T]) Outcome() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StatePending {
		var zero T
		return zero, ErrPending
	}
	return r.value, r.err
}
