package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/resilience"
	"github.com/kbukum/gokv/scan"
	"github.com/kbukum/gokv/stream"
)

type stepFunc func(ctx context.Context, cursor scan.Cursor) (scan.StreamPage, error)

// drive runs step from cursor until the sequence finishes and returns the
// last good cursor with the number of elements delivered. A failed step is
// retried from the cursor it started at.
func drive(ctx context.Context, retry resilience.RetryConfig, log *logger.Logger, from scan.Cursor, step stepFunc) (scan.Cursor, int64, error) {
	cursor := from
	var total int64
	for !cursor.Finished() {
		cfg := retry
		cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.Warn("retrying scan step", logger.MergeWithError(logger.Fields(
				logger.FieldCursor, cursor.Token(),
				"attempt", attempt,
				"backoff", backoff.String(),
			), err))
		}
		page, err := resilience.Retry(ctx, cfg, func(int) (scan.StreamPage, error) {
			return step(ctx, cursor)
		})
		total += page.Count
		if err != nil {
			return cursor, total, err
		}
		cursor = page.Cursor
	}
	return cursor, total, nil
}

func (a *cliApp) scanArgs() *scan.Args {
	return &scan.Args{Match: a.opts.match, Count: a.opts.count, Type: a.opts.typ}
}

// resumeHint tells the user how to continue an interrupted scan.
func (a *cliApp) resumeHint(cursor scan.Cursor) {
	if cursor.IsInitial() || cursor.Finished() {
		return
	}
	fmt.Fprintf(a.stderr, "kvscan: interrupted, resume with --cursor %s\n", cursor.Token())
}

func runKeys(ctx context.Context, a *cliApp, args []string) error {
	if len(args) > 0 {
		return errors.InvalidInput("args", "keys takes no positional arguments")
	}
	out := newLineWriter(a.stdout)
	sink := stream.Func[string](func(key string) error { return out.Line(key) })
	cmds := a.store.Commands()
	scanArgs := a.scanArgs()

	cursor, n, err := drive(ctx, a.Cfg.Scan.Retry, a.Logger, scan.Resume(a.opts.cursor),
		func(ctx context.Context, c scan.Cursor) (scan.StreamPage, error) {
			return cmds.ScanStreamContinue(ctx, sink, c, scanArgs)
		})
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		a.resumeHint(cursor)
		return err
	}
	a.Logger.Info("key scan finished", logger.Fields(logger.FieldCount, n))
	return nil
}

func runHScan(ctx context.Context, a *cliApp, args []string) error {
	if len(args) == 0 {
		return errors.MissingField("key")
	}
	if a.opts.cursor != "" && len(args) > 1 {
		return errors.InvalidInput("cursor", "only valid with a single key")
	}
	out := newLineWriter(a.stdout)
	cmds := a.store.Commands()
	scanArgs := a.scanArgs()
	prefix := len(args) > 1

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Cfg.Scan.Parallel)
	for _, key := range args {
		g.Go(func() error {
			sink := stream.Func[scan.KeyValue](func(e scan.KeyValue) error {
				if prefix {
					return out.Line(key, e.Key, e.Value)
				}
				return out.Line(e.Key, e.Value)
			})
			cursor, n, err := drive(gctx, a.Cfg.Scan.Retry, a.Logger, scan.Resume(a.opts.cursor),
				func(ctx context.Context, c scan.Cursor) (scan.StreamPage, error) {
					return cmds.HScanStreamContinue(ctx, sink, key, c, scanArgs)
				})
			if err != nil {
				if !prefix {
					a.resumeHint(cursor)
				}
				return fmt.Errorf("%s: %w", key, err)
			}
			a.Logger.Debug("hash scan finished", logger.Fields(logger.FieldKey, key, logger.FieldCount, n))
			return nil
		})
	}
	err := g.Wait()
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
	return err
}

func runHGet(ctx context.Context, a *cliApp, args []string) error {
	if len(args) != 2 {
		return errors.InvalidInput("args", "expected KEY FIELD")
	}
	key, field := args[0], args[1]
	value, found, err := a.store.Commands().HGet(ctx, key, field)
	if err != nil {
		return err
	}
	if !found {
		return errors.NotFound("field", key+"/"+field)
	}
	_, err = fmt.Fprintln(a.stdout, value)
	return err
}
