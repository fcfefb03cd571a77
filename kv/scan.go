package kv

import (
	"context"

	"github.com/kbukum/gokv/command"
	"github.com/kbukum/gokv/deferred"
	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/scan"
	"github.com/kbukum/gokv/stream"
)

// HScan runs the first step of a scan over the hash at key.
func (c *Commands) HScan(ctx context.Context, key string, args *scan.Args) (scan.MapPage, error) {
	return c.HScanContinue(ctx, key, scan.Initial(), args)
}

// HScanContinue runs the scan step starting at cursor. Passing a finished
// cursor, or one from another command or key, fails with INVALID_CURSOR.
func (c *Commands) HScanContinue(ctx context.Context, key string, cursor scan.Cursor, args *scan.Args) (scan.MapPage, error) {
	entries, next, err := scanStep(ctx, c, "HSCAN", key, cursor, args, command.AsPairs)
	if err != nil {
		return scan.MapPage{Cursor: cursor}, err
	}
	return scan.MapPage{Entries: entries, Cursor: next}, nil
}

// HScanStream is HScan delivering the entries to sink.
func (c *Commands) HScanStream(ctx context.Context, sink stream.Sink[scan.KeyValue], key string, args *scan.Args) (scan.StreamPage, error) {
	return c.HScanStreamContinue(ctx, sink, key, scan.Initial(), args)
}

// HScanStreamContinue is HScanContinue delivering the entries to sink.
func (c *Commands) HScanStreamContinue(ctx context.Context, sink stream.Sink[scan.KeyValue], key string, cursor scan.Cursor, args *scan.Args) (scan.StreamPage, error) {
	return scanStreamStep(ctx, c, "HSCAN", key, cursor, args, command.AsPairs, sink)
}

// Scan runs the first step of a scan over the key space.
func (c *Commands) Scan(ctx context.Context, args *scan.Args) (scan.KeyPage, error) {
	return c.ScanContinue(ctx, scan.Initial(), args)
}

// ScanContinue runs the key-space scan step starting at cursor.
func (c *Commands) ScanContinue(ctx context.Context, cursor scan.Cursor, args *scan.Args) (scan.KeyPage, error) {
	keys, next, err := scanStep(ctx, c, "SCAN", "", cursor, args, command.AsStrings)
	if err != nil {
		return scan.KeyPage{Cursor: cursor}, err
	}
	return scan.KeyPage{Keys: keys, Cursor: next}, nil
}

// ScanStream is Scan delivering the keys to sink.
func (c *Commands) ScanStream(ctx context.Context, sink stream.Sink[string], args *scan.Args) (scan.StreamPage, error) {
	return c.ScanStreamContinue(ctx, sink, scan.Initial(), args)
}

// ScanStreamContinue is ScanContinue delivering the keys to sink.
func (c *Commands) ScanStreamContinue(ctx context.Context, sink stream.Sink[string], cursor scan.Cursor, args *scan.Args) (scan.StreamPage, error) {
	return scanStreamStep(ctx, c, "SCAN", "", cursor, args, command.AsStrings, sink)
}

// HScanIterator returns an iterator over every entry of the hash at key.
func (c *Commands) HScanIterator(key string, args *scan.Args, opts ...scan.Option) *scan.Iterator[scan.KeyValue] {
	step := func(ctx context.Context, cursor scan.Cursor) ([]scan.KeyValue, scan.Cursor, error) {
		page, err := c.HScanContinue(ctx, key, cursor, args)
		return page.Entries, page.Cursor, err
	}
	return scan.NewIterator(step, c.iteratorOptions(opts)...)
}

// ScanIterator returns an iterator over every key of the key space.
func (c *Commands) ScanIterator(args *scan.Args, opts ...scan.Option) *scan.Iterator[string] {
	step := func(ctx context.Context, cursor scan.Cursor) ([]string, scan.Cursor, error) {
		page, err := c.ScanContinue(ctx, cursor, args)
		return page.Keys, page.Cursor, err
	}
	return scan.NewIterator(step, c.iteratorOptions(opts)...)
}

func (c *Commands) iteratorOptions(opts []scan.Option) []scan.Option {
	return append([]scan.Option{scan.WithLogger(c.log)}, opts...)
}

// scanCommand checks the continuation and builds the command for one step.
func (c *Commands) scanCommand(name, key string, cursor scan.Cursor, args *scan.Args, shape command.Shape) (command.Command, error) {
	if name != "SCAN" && key == "" {
		return command.Command{}, errors.MissingField("key").WithDetail("command", name)
	}
	if err := scan.Check(cursor, name, key); err != nil {
		return command.Command{}, err
	}
	if err := args.Validate(name); err != nil {
		return command.Command{}, err
	}

	argv := append([]any{cursor.Token()}, args.WithDefaultCount(c.defaultCount).Argv()...)
	if name == "SCAN" {
		return command.Keyless(name, shape, argv...), nil
	}
	return command.Keyed(name, key, shape, argv...), nil
}

type scanResult[E any] struct {
	items []E
	count int64
	next  scan.Cursor
}

func scanStep[E any](ctx context.Context, c *Commands, name, key string, cursor scan.Cursor, args *scan.Args, decode func(command.Reply) ([]E, error)) ([]E, scan.Cursor, error) {
	cmd, err := c.scanCommand(name, key, cursor, args, command.CursorContinuation)
	if err != nil {
		return nil, cursor, err
	}
	res, err := call(ctx, c, cmd, func(r command.Reply) (scanResult[E], error) {
		token, elems, err := command.AsScan(r)
		if err != nil {
			return scanResult[E]{}, err
		}
		items, err := decode(elems)
		if err != nil {
			return scanResult[E]{}, err
		}
		return scanResult[E]{items: items, next: cursor.Advance(token, name, key)}, nil
	})
	if err != nil {
		return nil, cursor, err
	}
	c.recordStep(ctx, name, key, res.next, int64(len(res.items)))
	return res.items, res.next, nil
}

func scanStreamStep[E any](ctx context.Context, c *Commands, name, key string, cursor scan.Cursor, args *scan.Args, decode func(command.Reply) ([]E, error), sink stream.Sink[E]) (scan.StreamPage, error) {
	if sink == nil {
		return scan.StreamPage{Cursor: cursor}, errors.MissingField("sink").WithDetail("command", name)
	}
	cmd, err := c.scanCommand(name, key, cursor, args, command.Streaming)
	if err != nil {
		return scan.StreamPage{Cursor: cursor}, err
	}

	r := deferred.Then(c.exec.Dispatch(ctx, cmd), func(sctx context.Context, reply command.Reply) (scanResult[E], error) {
		token, elems, err := command.AsScan(reply)
		if err != nil {
			return scanResult[E]{}, err
		}
		items, err := decode(elems)
		if err != nil {
			return scanResult[E]{}, err
		}
		n, err := stream.Deliver(sctx, sink, items)
		if err != nil {
			return scanResult[E]{}, err
		}
		return scanResult[E]{count: n, next: cursor.Advance(token, name, key)}, nil
	})
	res, err := deferred.Await(ctx, r)
	if err != nil {
		return scan.StreamPage{Cursor: cursor}, err
	}
	c.recordStep(ctx, name, key, res.next, res.count)
	return scan.StreamPage{Count: res.count, Cursor: res.next}, nil
}

func (c *Commands) recordStep(ctx context.Context, name, key string, next scan.Cursor, n int64) {
	if c.metrics != nil {
		c.metrics.RecordScanElements(ctx, name, int(n))
	}
	if !c.log.DebugEnabled() {
		return
	}
	c.log.WithContext(ctx).WithCommand(name, key).Debug("scan step", logger.Fields(
		logger.FieldCursor, next.Token(),
		logger.FieldSequence, next.Sequence().String(),
		logger.FieldCount, n,
	))
}
