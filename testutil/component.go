package testutil

import (
	"context"

	"github.com/kbukum/gokv/component"
)

// TestComponent extends component.Component with state management for tests.
type TestComponent interface {
	component.Component

	// Reset returns the component to its empty state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore replaces the current state with a snapshot.
	Restore(ctx context.Context, snapshot any) error
}
