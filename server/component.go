package server

import (
	"context"
	"fmt"
	"sort"

	"github.com/kbukum/gokv/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component wraps Server for the component registry.
type Component struct {
	server  *Server
	started bool
}

// NewComponent returns a component.Component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (sc *Component) Name() string { return componentName }

// Server returns the wrapped server.
func (sc *Component) Server() *Server { return sc.server }

// Start starts the underlying HTTP server.
func (sc *Component) Start(ctx context.Context) error {
	if err := sc.server.Start(ctx); err != nil {
		return err
	}
	sc.started = true
	return nil
}

// Stop gracefully shuts down the underlying HTTP server.
func (sc *Component) Stop(ctx context.Context) error {
	if !sc.started {
		return nil
	}
	sc.started = false
	return sc.server.Stop(ctx)
}

// Health reports whether the server is listening.
func (sc *Component) Health(_ context.Context) component.Health {
	if !sc.started {
		return component.Unhealthy(componentName, "not listening")
	}
	return component.Healthy(componentName)
}

// Describe reports the listen address and whether auth is on.
func (sc *Component) Describe() component.Description {
	cfg := sc.server.config
	return component.Description{
		Type:    "server",
		Details: fmt.Sprintf("%s auth=%t routes=%d", sc.server.Addr(), cfg.Auth.Enabled, len(sc.Routes())),
	}
}

// Route is one registered method and path.
type Route struct {
	Method string
	Path   string
}

// Routes returns the registered routes sorted by path, then method.
func (sc *Component) Routes() []Route {
	ginRoutes := sc.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return ginRoutes[i].Method < ginRoutes[j].Method
	})
	routes := make([]Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, Route{Method: r.Method, Path: r.Path})
	}
	return routes
}
