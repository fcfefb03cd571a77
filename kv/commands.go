package kv

import (
	"context"

	"github.com/kbukum/gokv/command"
	"github.com/kbukum/gokv/deferred"
	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/observability"
	"github.com/kbukum/gokv/stream"
)

// Commands issues store commands through an Executor.
type Commands struct {
	exec         command.Executor
	log          *logger.Logger
	metrics      *observability.CommandMetrics
	defaultCount int64
}

// Option configures Commands.
type Option func(*Commands)

// WithLogger sets the logger. The default is the global logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Commands) { c.log = log }
}

// WithDefaultCount sets the COUNT hint sent with scans that do not set one.
func WithDefaultCount(n int64) Option {
	return func(c *Commands) { c.defaultCount = n }
}

// WithMetrics records the number of elements returned by scan steps.
func WithMetrics(m *observability.CommandMetrics) Option {
	return func(c *Commands) { c.metrics = m }
}

// New returns Commands dispatching through exec.
func New(exec command.Executor, opts ...Option) *Commands {
	c := &Commands{exec: exec}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetGlobalLogger()
	}
	c.log = c.log.WithComponent("kv")
	return c
}

// Do sends an arbitrary command and returns its raw reply.
func (c *Commands) Do(ctx context.Context, cmd command.Command) (command.Reply, error) {
	return call(ctx, c, cmd, func(r command.Reply) (command.Reply, error) { return r, nil })
}

// call validates cmd, dispatches it and awaits the decoded reply.
func call[T any](ctx context.Context, c *Commands, cmd command.Command, decode func(command.Reply) (T, error)) (T, error) {
	var zero T
	if err := cmd.Validate(); err != nil {
		return zero, err
	}
	r := deferred.Then(c.exec.Dispatch(ctx, cmd), func(_ context.Context, reply command.Reply) (T, error) {
		return decode(reply)
	})
	return deferred.Await(ctx, r)
}

// streamCall is call for collection replies: the decoded elements are
// pushed into sink and the delivered count is returned.
func streamCall[E any](ctx context.Context, c *Commands, cmd command.Command, decode func(command.Reply) ([]E, error), sink stream.Sink[E]) (int64, error) {
	if sink == nil {
		return 0, errors.MissingField("sink").WithDetail("command", cmd.Name)
	}
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	r := deferred.Then(c.exec.Dispatch(ctx, cmd), func(sctx context.Context, reply command.Reply) (int64, error) {
		items, err := decode(reply)
		if err != nil {
			return 0, err
		}
		return stream.Deliver(sctx, sink, items)
	})
	return deferred.Await(ctx, r)
}

func requireKey(name, key string) error {
	if key == "" {
		return errors.MissingField(name)
	}
	return nil
}

func requireFields(fields []string) error {
	if len(fields) == 0 {
		return errors.MissingField("fields")
	}
	for _, f := range fields {
		if f == "" {
			return errors.InvalidInput("fields", "must not contain empty field names")
		}
	}
	return nil
}

func stringArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func optional(o command.OptionalString) (string, bool) {
	return o.Value, o.Valid
}
