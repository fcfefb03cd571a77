package redis

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/gokv/command"
	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/kv"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/observability"
	"github.com/kbukum/gokv/provider"
)

// DefaultDrainTimeout bounds how long Close waits for in-flight commands.
const DefaultDrainTimeout = 5 * time.Second

// Client wraps a go-redis client and executes store commands through it.
type Client struct {
	rdb     *goredis.Client
	log     *logger.Logger
	cfg     Config
	metrics *observability.CommandMetrics

	backend  provider.RequestResponse[command.Command, command.Reply]
	exec     *command.AsyncExecutor
	commands *kv.Commands

	closed bool
	mu     sync.Mutex
}

// argvCodec maps command descriptors onto raw go-redis argv and back.
var argvCodec = provider.Codec[command.Command, command.Reply, []any, any]{
	Encode: func(_ context.Context, cmd command.Command) ([]any, error) { return cmd.Argv(), nil },
	Decode: func(cmd command.Command, v any) (command.Reply, error) {
		return command.NewReply(cmd.OperationName(), v), nil
	},
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records command counts, durations and scan sizes.
func WithMetrics(m *observability.CommandMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Redis client with the given configuration and logger.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()

	if !cfg.Enabled {
		return nil, errors.ServiceUnavailable(cfg.Name).WithDetail("reason", "disabled")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		Protocol:        cfg.Protocol,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: duration(cfg.MinRetryBackoff),
		MaxRetryBackoff: duration(cfg.MaxRetryBackoff),
		DialTimeout:     duration(cfg.DialTimeout),
		ReadTimeout:     duration(cfg.ReadTimeout),
		WriteTimeout:    duration(cfg.WriteTimeout),
		ConnMaxIdleTime: duration(cfg.ConnMaxIdleTime),
		PoolTimeout:     duration(cfg.PoolTimeout),
	})

	c := newClient(rdb, cfg, log, opts)
	c.log.Info("redis client created", logger.Fields(
		"addr", cfg.Addr,
		"db", cfg.DB,
		"protocol", cfg.Protocol,
		"pool_size", cfg.PoolSize,
	))
	return c, nil
}

// NewFromClient wraps an existing go-redis client. Connection settings in
// cfg are ignored; the command settings apply.
func NewFromClient(rdb *goredis.Client, cfg Config, log *logger.Logger, opts ...Option) *Client {
	cfg.ApplyDefaults()
	return newClient(rdb, cfg, log, opts)
}

func newClient(rdb *goredis.Client, cfg Config, log *logger.Logger, opts []Option) *Client {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	c := &Client{rdb: rdb, log: log.WithComponent(cfg.Name), cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	raw := provider.Adapt(provider.RequestResponse[[]any, any](c), cfg.Name, argvCodec)
	c.backend = provider.Chain(
		provider.WithLogging[command.Command, command.Reply](c.log),
		provider.WithTracing[command.Command, command.Reply]("redis"),
		provider.WithMetrics[command.Command, command.Reply](c.metrics),
		provider.WithResilience[command.Command, command.Reply](cfg.resilienceConfig(c.log)),
	)(raw)
	c.exec = command.NewAsyncExecutor(c.backend, c.log)
	c.commands = kv.New(c.exec,
		kv.WithLogger(log),
		kv.WithDefaultCount(cfg.ScanCount),
		kv.WithMetrics(c.metrics),
	)
	return c
}

// Commands returns the typed command surface bound to this client.
func (c *Client) Commands() *kv.Commands {
	return c.commands
}

// Executor returns the asynchronous executor behind Commands.
func (c *Client) Executor() command.Executor {
	return c.exec
}

// Execute sends argv to the server and returns the raw reply. A nil reply
// (goredis.Nil) is returned as a nil value, not an error.
func (c *Client) Execute(ctx context.Context, argv []any) (any, error) {
	name := "unknown"
	if len(argv) > 0 {
		if s, ok := argv[0].(string); ok {
			name = s
		}
	}
	if c.isClosed() {
		return nil, errors.ConnectionFailed(c.cfg.Name).WithDetail("reason", "client closed")
	}

	v, err := c.rdb.Do(ctx, argv...).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, classify(c.cfg.Name, name, err)
	}
	return v, nil
}

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	pong, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return classify(c.cfg.Name, "PING", err)
	}
	if pong != "PONG" {
		return errors.RemoteProtocol("PING", "unexpected reply "+pong)
	}
	return nil
}

// Close waits for in-flight commands, then closes the connection pool.
// Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultDrainTimeout)
	defer cancel()
	if err := c.exec.Drain(ctx); err != nil {
		c.log.Warn("closing with commands still in flight", logger.MergeWithError(nil, err))
	}
	c.log.Info("closing redis connection")
	return c.rdb.Close()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Unwrap returns the underlying go-redis client for advanced operations.
func (c *Client) Unwrap() *goredis.Client {
	return c.rdb
}
