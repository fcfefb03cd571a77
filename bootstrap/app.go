package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/kbukum/gokv/component"
	"github.com/kbukum/gokv/logger"
)

// App owns the lifecycle of a gokv binary: its config, logger and the
// components it starts and stops. C is the binary's config type.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(redis.NewComponent(cfg.Redis, app.Logger))
//	app.RunTask(ctx, func(ctx context.Context) error { ... })
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	signals         []os.Signal
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and sets up the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetBaseConfig()

	o := resolveOptions(opts)
	log := o.logger
	if log == nil {
		log = logger.New(&base.Logging, base.Name)
		logger.SetGlobalLogger(log)
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(log),
		Logger:          log,
		gracefulTimeout: o.gracefulTimeout,
		signals:         o.signals,
	}
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
// Components start in registration order and stop in reverse.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, which runs once
// components are started. Use it to build what depends on a started
// component, such as HTTP routes over a connected store.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application and blocks until a shutdown signal arrives or
// ctx ends, then shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask starts the application, runs task and shuts down when task
// returns. A shutdown signal cancels the task's context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	taskCtx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.MergeWithError(nil, err))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Logger.Info("application started", logger.Fields(
		logger.FieldDuration, time.Since(start).String()))
	return nil
}

// WaitForSignal blocks until a shutdown signal arrives or ctx ends.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", map[string]interface{}{"signal": sig.String()})
		return sig
	case <-ctx.Done():
		a.Logger.Info("context cancelled, shutting down")
		return nil
	}
}

// Shutdown stops the application. Use it when managing the lifecycle by hand.
func (a *App[C]) Shutdown(_ context.Context) error {
	return a.stop()
}

// stop runs OnStop hooks and stops all components within the graceful
// timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.MergeWithError(nil, err))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	a.Logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
