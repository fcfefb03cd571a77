package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/gokv/logger"
)

// THelper binds component helpers to a test.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t. Helpers fail the test on error.
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to component methods.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts components in order and stops them in reverse order when
// the test ends.
func (h *THelper) Setup(components ...TestComponent) {
	h.t.Helper()
	for _, c := range components {
		if err := c.Start(h.ctx); err != nil {
			h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
		}
		h.t.Cleanup(func() {
			if err := c.Stop(h.ctx); err != nil {
				h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
			}
		})
	}
}

// Reset empties each component.
func (h *THelper) Reset(components ...TestComponent) {
	h.t.Helper()
	for _, c := range components {
		if err := c.Reset(h.ctx); err != nil {
			h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
		}
	}
}

// Snapshot captures the state of c.
func (h *THelper) Snapshot(c TestComponent) any {
	h.t.Helper()
	snap, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", c.Name(), err)
	}
	return snap
}

// Restore puts c back into a captured state.
func (h *THelper) Restore(c TestComponent, snapshot any) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", c.Name(), err)
	}
}

// Context returns a context cancelled after d or when the test ends.
func Context(t testing.TB, d time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

// Logger returns a debug-level JSON logger writing through t.Log.
func Logger(t testing.TB) *logger.Logger {
	return logger.NewWithWriter(testWriter{t}, "debug", t.Name())
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
