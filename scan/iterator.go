package scan

import (
	"context"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/provider"
)

// Step performs one scan call from cursor and returns the batch and the
// cursor to continue from.
type Step[T any] func(ctx context.Context, cursor Cursor) ([]T, Cursor, error)

// Option configures an Iterator.
type Option func(*iteratorConfig)

type iteratorConfig struct {
	dedup  bool
	log    *logger.Logger
	from   Cursor
	noSoft bool
}

// WithDedup drops elements already yielded in this sequence.
func WithDedup() Option {
	return func(c *iteratorConfig) { c.dedup = true }
}

// WithLogger sets the logger used to report restarts.
func WithLogger(log *logger.Logger) Option {
	return func(c *iteratorConfig) { c.log = log }
}

// From starts the iterator at a previously obtained cursor.
func From(c Cursor) Option {
	return func(cfg *iteratorConfig) { cfg.from = c }
}

// WithoutRestart returns INVALID_CURSOR to the caller instead of restarting
// the sequence once.
func WithoutRestart() Option {
	return func(c *iteratorConfig) { c.noSoft = true }
}

// Iterator pulls elements from successive scan steps until the store
// returns a finished cursor.
//
// A failed step leaves Cursor at the last good position, so Next can be
// called again to retry it. The first INVALID_CURSOR from the store restarts
// the sequence from Initial; a second one is returned.
type Iterator[T comparable] struct {
	step      Step[T]
	cfg       iteratorConfig
	cursor    Cursor
	buf       []T
	done      bool
	closed    bool
	restarted bool
	seen      map[T]struct{}
}

var _ provider.Iterator[string] = (*Iterator[string])(nil)

// NewIterator returns an iterator driving step.
func NewIterator[T comparable](step Step[T], opts ...Option) *Iterator[T] {
	cfg := iteratorConfig{from: Initial()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.Nop()
	}
	it := &Iterator[T]{step: step, cfg: cfg, cursor: cfg.from}
	if cfg.dedup {
		it.seen = make(map[T]struct{})
	}
	if cfg.from.Finished() {
		it.done = true
	}
	return it
}

// Next returns the next element. It returns (zero, false, nil) once the
// sequence is exhausted or the iterator is closed.
func (it *Iterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		if it.closed {
			return zero, false, nil
		}
		if len(it.buf) > 0 {
			v := it.buf[0]
			it.buf = it.buf[1:]
			if it.seen != nil {
				if _, dup := it.seen[v]; dup {
					continue
				}
				it.seen[v] = struct{}{}
			}
			return v, true, nil
		}
		if it.done {
			return zero, false, nil
		}

		items, next, err := it.step(ctx, it.cursor)
		if err != nil {
			if it.softRestart(err) {
				continue
			}
			return zero, false, err
		}
		it.buf = items
		it.cursor = next
		it.done = next.Finished()
	}
}

func (it *Iterator[T]) softRestart(err error) bool {
	if it.cfg.noSoft || it.restarted || !errors.IsInvalidCursor(err) || it.cursor.IsInitial() {
		return false
	}
	it.restarted = true
	it.cfg.log.Warn("scan cursor rejected, restarting sequence", logger.MergeWithError(
		logger.Fields(logger.FieldCursor, it.cursor.Token(), logger.FieldSequence, it.cursor.Sequence().String()), err))
	it.cursor = Initial()
	return true
}

// Cursor returns the last cursor successfully obtained from the store.
func (it *Iterator[T]) Cursor() Cursor { return it.cursor }

// Close stops the iterator. The store holds no state to release.
func (it *Iterator[T]) Close() error {
	it.closed = true
	it.buf = nil
	return nil
}

// Collect drains it into a slice and closes it.
func Collect[T comparable](ctx context.Context, it *Iterator[T]) ([]T, error) {
	return provider.Drain[T](ctx, it)
}
