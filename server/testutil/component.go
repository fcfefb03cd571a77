package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gokv/component"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/server"
	"github.com/kbukum/gokv/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Component is a test server component backed by httptest.Server.
// It implements both component.Component and testutil.TestComponent.
type Component struct {
	cfg    server.Config
	log    *logger.Logger
	routes func(*gin.Engine)

	srv     *server.Server
	ts      *httptest.Server
	started bool
	mu      sync.RWMutex
}

var _ component.Component = (*Component)(nil)
var _ testutil.TestComponent = (*Component)(nil)

// Option configures a Component.
type Option func(*Component)

// WithConfig replaces the default server configuration.
func WithConfig(cfg server.Config) Option {
	return func(c *Component) { c.cfg = cfg }
}

// WithLogger sets the server logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Component) { c.log = log }
}

// WithRoutes registers routes on every server the component builds,
// including the one rebuilt by Reset.
func WithRoutes(register func(*gin.Engine)) Option {
	return func(c *Component) { c.routes = register }
}

// NewComponent creates a new test server component.
func NewComponent(opts ...Option) *Component {
	c := &Component{
		cfg: server.Config{Host: "127.0.0.1", Enabled: true},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg.ApplyDefaults()
	c.srv = c.build()
	return c
}

func (c *Component) build() *server.Server {
	srv := server.New(c.cfg, c.log)
	if c.routes != nil {
		c.routes(srv.Engine())
	}
	return srv
}

// Engine returns the Gin engine of the current server for registering routes.
func (c *Component) Engine() *gin.Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv.Engine()
}

// Server returns the underlying *server.Server.
func (c *Component) Server() *server.Server {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv
}

// BaseURL returns the test server's base URL (e.g. "http://127.0.0.1:PORT").
// Returns empty string if not started.
func (c *Component) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

// GetJSON issues a GET for path against the running server and decodes the
// body into out when out is non-nil. It returns the status code.
func (c *Component) GetJSON(ctx context.Context, path string, out any) (int, error) {
	base := c.BaseURL()
	if base == "" {
		return 0, fmt.Errorf("component not started")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, http.NoBody)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// --- component.Component ---

func (c *Component) Name() string { return "server-test" }

func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}
	c.ts = httptest.NewServer(c.srv.Handler())
	c.started = true
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.ts == nil {
		return nil
	}
	c.ts.Close()
	c.ts = nil
	c.started = false
	return nil
}

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return component.Unhealthy(c.Name(), "not started")
	}
	return component.Healthy(c.Name())
}

// --- testutil.TestComponent ---

// Reset rebuilds the server, dropping routes registered on Engine outside
// WithRoutes.
func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.ts.Close()
	c.srv = c.build()
	c.ts = httptest.NewServer(c.srv.Handler())
	return nil
}

// Snapshot is a no-op; the server holds no state.
func (c *Component) Snapshot(_ context.Context) (any, error) {
	return nil, nil
}

// Restore is a no-op.
func (c *Component) Restore(_ context.Context, _ any) error {
	return nil
}
