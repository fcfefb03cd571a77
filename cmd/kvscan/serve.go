package main

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gokv/component"
	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/server"
	"github.com/kbukum/gokv/server/endpoint"
)

// newHTTPServer builds the HTTP server over the started store.
func (a *cliApp) newHTTPServer() *server.Server {
	if !a.Cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(a.Cfg.Server, a.Logger)
	engine := srv.Engine()

	checker := func(ctx context.Context) []component.Health {
		return a.Components.HealthAll(ctx)
	}
	engine.GET("/health", endpoint.Health(a.Name, checker))
	engine.GET("/ready", endpoint.Readiness(a.Name, checker))
	engine.GET("/alive", endpoint.Liveness(a.Name))
	engine.GET("/info", endpoint.Info(a.Name, a.Version))
	endpoint.RegisterKV(engine.Group("/v1"), a.store.Commands())
	return srv
}

// runServe serves until the process is interrupted.
func runServe(ctx context.Context, a *cliApp, args []string) error {
	if len(args) > 0 {
		return errors.InvalidInput("args", "serve takes no positional arguments")
	}
	comp := server.NewComponent(a.newHTTPServer())
	if err := comp.Start(ctx); err != nil {
		return err
	}
	for _, r := range comp.Routes() {
		a.Logger.Debug("route registered", logger.Fields("method", r.Method, "path", r.Path))
	}

	<-ctx.Done()
	return comp.Stop(context.Background())
}
