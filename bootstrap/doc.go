// Package bootstrap runs the lifecycle of a gokv binary: config defaults and
// validation, logger setup, component start in registration order, hooks,
// and graceful shutdown on SIGINT or SIGTERM.
//
// Long-running binaries call Run; one-shot commands call RunTask.
package bootstrap
