// Package stream defines Sink, the push-based receiver used by streaming
// command variants, and a few ready-made sinks.
//
// Elements of one command step are pushed in store order, strictly before
// the step's result completes. A sink error aborts the step and becomes its
// error; elements already delivered are not retracted.
package stream

import (
	"context"
	"sync"

	"github.com/kbukum/gokv/errors"
)

// Sink receives the elements of a streaming command one at a time.
type Sink[T any] interface {
	OnElement(v T) error
}

// Func adapts a function to a Sink.
type Func[T any] func(v T) error

// OnElement calls f(v).
func (f Func[T]) OnElement(v T) error { return f(v) }

// Collector is a Sink appending every element. It is safe for concurrent use.
type Collector[T any] struct {
	mu    sync.Mutex
	items []T
}

// OnElement appends v.
func (c *Collector[T]) OnElement(v T) error {
	c.mu.Lock()
	c.items = append(c.items, v)
	c.mu.Unlock()
	return nil
}

// Items returns a copy of the collected elements.
func (c *Collector[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of collected elements.
func (c *Collector[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Chan returns a Sink forwarding elements into ch. A send blocked when ctx
// ends fails the step with CANCELLED.
func Chan[T any](ctx context.Context, ch chan<- T) Sink[T] {
	return Func[T](func(v T) error {
		select {
		case ch <- v:
			return nil
		case <-ctx.Done():
			return errors.Cancelled(ctx.Err())
		}
	})
}

// Deliver pushes items into sink in order and returns how many were
// accepted. It stops at the first sink error or when ctx is done.
func Deliver[T any](ctx context.Context, sink Sink[T], items []T) (int64, error) {
	var n int64
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return n, errors.Cancelled(err)
		}
		if err := sink.OnElement(item); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
