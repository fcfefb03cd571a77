package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/gokv/component"
	"github.com/kbukum/gokv/kv"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/redis"
	"github.com/kbukum/gokv/testutil"
)

// Component is an in-memory Redis backed by miniredis.
type Component struct {
	cfg    redis.Config
	log    *logger.Logger
	opts   []redis.Option
	mini   *miniredis.Miniredis
	rdb    *goredis.Client
	client *redis.Client

	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// Option configures the component.
type Option func(*Component)

// WithConfig sets the command settings of the gokv client.
func WithConfig(cfg redis.Config) Option {
	return func(c *Component) { c.cfg = cfg }
}

// WithLogger sets the client logger. The default discards output.
func WithLogger(log *logger.Logger) Option {
	return func(c *Component) { c.log = log }
}

// WithClientOptions passes options to the gokv client.
func WithClientOptions(opts ...redis.Option) Option {
	return func(c *Component) { c.opts = append(c.opts, opts...) }
}

// NewComponent creates a new in-memory Redis test component.
func NewComponent(opts ...Option) *Component {
	c := &Component{cfg: redis.Config{Name: "redis-test"}, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the component name.
func (c *Component) Name() string { return "redis-test" }

// Server returns the miniredis instance for direct manipulation, or nil
// if not started.
func (c *Component) Server() *miniredis.Miniredis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mini
}

// Client returns the raw go-redis client, or nil if not started.
func (c *Component) Client() *goredis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rdb
}

// Store returns the gokv client, or nil if not started.
func (c *Component) Store() *redis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Commands returns the command surface of Store, or nil if not started.
func (c *Component) Commands() *kv.Commands {
	if s := c.Store(); s != nil {
		return s.Commands()
	}
	return nil
}

// Start launches the in-memory server and connects both clients.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}
	mini, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start miniredis: %w", err)
	}

	c.mini = mini
	c.rdb = goredis.NewClient(&goredis.Options{Addr: mini.Addr(), Protocol: 2, MaxRetries: -1})
	cfg := c.cfg
	cfg.Addr = mini.Addr()
	c.client = redis.NewFromClient(c.rdb, cfg, c.log, c.opts...)
	c.started = true
	return nil
}

// Stop closes the clients and shuts the server down.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	_ = c.client.Close()
	c.mini.Close()
	c.started = false
	return nil
}

// Health reports whether the server is running.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Unhealthy(c.Name(), "not started")
	}
	return component.Healthy(c.Name())
}

// Reset flushes every key.
func (c *Component) Reset(_ context.Context) error {
	mini, err := c.running()
	if err != nil {
		return err
	}
	mini.FlushAll()
	return nil
}

// Snapshot is the captured content of string and hash keys.
type Snapshot struct {
	Strings map[string]string
	Hashes  map[string]map[string]string
}

// Snapshot captures string and hash keys. Other types are skipped.
func (c *Component) Snapshot(_ context.Context) (any, error) {
	mini, err := c.running()
	if err != nil {
		return nil, err
	}

	snap := Snapshot{Strings: map[string]string{}, Hashes: map[string]map[string]string{}}
	for _, key := range mini.Keys() {
		switch mini.Type(key) {
		case "string":
			if v, err := mini.Get(key); err == nil {
				snap.Strings[key] = v
			}
		case "hash":
			fields, err := mini.HKeys(key)
			if err != nil {
				return nil, fmt.Errorf("snapshot hash %q: %w", key, err)
			}
			h := make(map[string]string, len(fields))
			for _, f := range fields {
				h[f] = mini.HGet(key, f)
			}
			snap.Hashes[key] = h
		}
	}
	return snap, nil
}

// Restore flushes the server and loads a Snapshot.
func (c *Component) Restore(_ context.Context, snapshot any) error {
	mini, err := c.running()
	if err != nil {
		return err
	}
	snap, ok := snapshot.(Snapshot)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected Snapshot, got %T", snapshot)
	}

	mini.FlushAll()
	for key, val := range snap.Strings {
		if err := mini.Set(key, val); err != nil {
			return fmt.Errorf("failed to restore key %q: %w", key, err)
		}
	}
	for key, h := range snap.Hashes {
		for f, v := range h {
			mini.HSet(key, f, v)
		}
	}
	return nil
}

func (c *Component) running() (*miniredis.Miniredis, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started || c.mini == nil {
		return nil, fmt.Errorf("component not started")
	}
	return c.mini, nil
}
