package command

import (
	"context"
	"sync"

	"github.com/kbukum/gokv/deferred"
	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/provider"
)

// Executor dispatches commands and returns their pending results.
// Dispatch must not block on the reply.
type Executor interface {
	Dispatch(ctx context.Context, cmd Command) *deferred.Result[Reply]
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, cmd Command) *deferred.Result[Reply]

// Dispatch calls f.
func (f ExecutorFunc) Dispatch(ctx context.Context, cmd Command) *deferred.Result[Reply] {
	return f(ctx, cmd)
}

// AsyncExecutor runs a blocking backend on one goroutine per command and
// hands back the pending result.
//
// Cancelling the result cancels the context the backend runs with. A reply
// arriving after cancellation is discarded. Once Drain has been called the
// executor refuses new commands.
type AsyncExecutor struct {
	backend  provider.RequestResponse[Command, Reply]
	log      *logger.Logger
	inflight sync.WaitGroup

	mu       sync.Mutex
	draining bool
}

// NewAsyncExecutor wraps backend. A nil log uses the global logger.
func NewAsyncExecutor(backend provider.RequestResponse[Command, Reply], log *logger.Logger) *AsyncExecutor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &AsyncExecutor{backend: backend, log: log.WithComponent("executor")}
}

// Dispatch starts cmd and returns immediately.
func (e *AsyncExecutor) Dispatch(ctx context.Context, cmd Command) *deferred.Result[Reply] {
	if err := cmd.Validate(); err != nil {
		return deferred.Failed[Reply](err)
	}
	if err := ctx.Err(); err != nil {
		return deferred.Failed[Reply](errors.Cancelled(err))
	}

	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return deferred.Failed[Reply](errors.ConnectionFailed("executor").WithDetail("reason", "draining"))
	}
	e.inflight.Add(1)
	e.mu.Unlock()

	r := deferred.New[Reply]()
	cmdCtx, cancel := context.WithCancel(ctx)
	r.OnCancel(cancel)

	go func() {
		defer e.inflight.Done()
		defer cancel()

		reply, err := e.backend.Execute(cmdCtx, cmd)
		var settled bool
		if err != nil {
			settled = r.Fail(err)
		} else {
			settled = r.Complete(reply)
		}
		if !settled {
			e.log.WithCommand(cmd.Name, cmd.LogKey()).Debug("discarding reply to cancelled command",
				logger.Fields(logger.FieldShape, cmd.Shape.String()))
		}
	}()
	return r
}

// Drain stops accepting commands, then waits for every dispatched command
// to finish or for ctx to end.
func (e *AsyncExecutor) Drain(ctx context.Context) error {
	e.mu.Lock()
	e.draining = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Timeout("drain")
	}
}
