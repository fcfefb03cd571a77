package provider

import "context"

// Iterator provides pull-based sequential access to a stream of values.
// The consumer calls Next() to retrieve values one at a time.
// Close must be called when done to release resources.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Drain pulls every remaining value from it into a slice and closes it.
// On error the values pulled so far are returned with the error.
func Drain[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()

	var out []T
	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
