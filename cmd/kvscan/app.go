package main

import (
	"context"
	"io"
	"os"

	"github.com/kbukum/gokv/bootstrap"
	"github.com/kbukum/gokv/config"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/observability"
	"github.com/kbukum/gokv/redis"
)

// cliApp is the bootstrap app of one kvscan invocation.
type cliApp struct {
	*bootstrap.App[*Config]

	opts   *options
	stdout io.Writer
	stderr io.Writer
	store  *redis.Component

	shutdownTelemetry func()
}

func newCLIApp(ctx context.Context, opts *options, stdout, stderr io.Writer) (*cliApp, error) {
	cfg := &Config{}
	var loadOpts []config.LoaderOption
	if opts.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(opts.envFile))
	}
	if err := config.LoadConfig("kvscan", cfg, loadOpts...); err != nil {
		return nil, err
	}
	if opts.addr != "" {
		cfg.Redis.Addr = opts.addr
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(newLogger(cfg, stderr)))
	if err != nil {
		return nil, err
	}

	shutdown, err := observability.Setup(ctx, cfg.Observability, app.Logger)
	if err != nil {
		return nil, err
	}
	a := &cliApp{
		App:    app,
		opts:   opts,
		stdout: stdout,
		stderr: stderr,
		shutdownTelemetry: func() {
			if err := shutdown(context.Background()); err != nil {
				app.Logger.Warn("telemetry shutdown failed", logger.MergeWithError(nil, err))
			}
		},
	}

	var redisOpts []redis.Option
	if cfg.Observability.Enabled {
		metrics, err := observability.NewCommandMetrics(observability.Meter("gokv"))
		if err != nil {
			a.shutdownTelemetry()
			return nil, err
		}
		redisOpts = append(redisOpts, redis.WithMetrics(metrics))
	}
	a.store = redis.NewComponent(cfg.Redis, app.Logger, redisOpts...)
	if err := app.RegisterComponent(a.store); err != nil {
		a.shutdownTelemetry()
		return nil, err
	}
	return a, nil
}

// newLogger writes to stderr so stdout carries only results. Defaults have
// not been applied yet, so the level falls back to info.
func newLogger(cfg *Config, stderr io.Writer) *logger.Logger {
	logCfg := cfg.Logging
	logCfg.ApplyDefaults()
	if f, ok := stderr.(*os.File); ok && f == os.Stderr {
		logCfg.Output = "stderr"
		return logger.New(&logCfg, "kvscan")
	}
	return logger.NewWithWriter(stderr, logCfg.Level, "kvscan")
}
