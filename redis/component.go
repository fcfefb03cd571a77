package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/gokv/component"
	"github.com/kbukum/gokv/kv"
	"github.com/kbukum/gokv/logger"
)

// Component wraps Client and implements component.Component for lifecycle management.
type Component struct {
	client *Client
	cfg    Config
	log    *logger.Logger
	opts   []Option
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a Redis component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger, opts ...Option) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Component{cfg: cfg, log: log, opts: opts}
}

// Client returns the underlying *Client, or nil if not started.
func (c *Component) Client() *Client {
	return c.client
}

// Commands returns the command surface, or nil if not started.
func (c *Component) Commands() *kv.Commands {
	if c.client == nil {
		return nil
	}
	return c.client.Commands()
}

// Name returns the component name.
func (c *Component) Name() string { return c.cfg.Name }

// Start creates the client and verifies connectivity.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log, c.opts...)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return err
	}
	c.client = client
	return nil
}

// Stop drains in-flight commands and closes the connection.
func (c *Component) Stop(_ context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health pings the server. An open circuit reports degraded.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.client == nil {
		return component.Unhealthy(c.Name(), "not started")
	}
	start := time.Now()
	if err := c.client.Ping(ctx); err != nil {
		return component.Unhealthy(c.Name(), fmt.Sprintf("ping failed: %v", err))
	}
	rtt := time.Since(start)
	if !c.client.Available(ctx) {
		return component.Degraded(c.Name(), "circuit open").WithLatency(rtt)
	}
	return component.Healthy(c.Name()).WithLatency(rtt)
}

// Describe reports the connection settings.
func (c *Component) Describe() component.Description {
	return component.Description{
		Type: "redis",
		Details: fmt.Sprintf("%s db=%d resp%d pool=%d in_flight=%d",
			c.cfg.Addr, c.cfg.DB, c.cfg.Protocol, c.cfg.PoolSize, c.cfg.MaxInFlight),
	}
}
