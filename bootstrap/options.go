package bootstrap

import (
	"os"
	"syscall"
	"time"

	"github.com/kbukum/gokv/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	signals         []os.Signal
}

func resolveOptions(opts []Option) appOptions {
	o := appOptions{
		gracefulTimeout: 15 * time.Second,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the application logger. Without it the logger is built
// from the config's Logging section and installed as the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds OnStop hooks plus component shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// WithSignals replaces the signals that end Run and cancel RunTask.
// The default is SIGINT and SIGTERM.
func WithSignals(sigs ...os.Signal) Option {
	return func(o *appOptions) { o.signals = sigs }
}
