package redis

import (
	"context"

	"github.com/kbukum/gokv/provider"
)

var _ provider.RequestResponse[[]any, any] = (*Client)(nil)

// Name returns the configured client name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// IsAvailable reports whether the client is open and the server answers.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if c.isClosed() {
		return false
	}
	return c.rdb.Ping(ctx).Err() == nil
}

// Available reports whether commands can currently be dispatched: the client
// is open, the circuit is not open and the server answers.
func (c *Client) Available(ctx context.Context) bool {
	return c.backend.IsAvailable(ctx)
}
