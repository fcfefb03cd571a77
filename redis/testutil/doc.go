// Package testutil provides an in-memory Redis for tests.
//
// Component runs miniredis and implements testutil.TestComponent. It hands
// out both the raw go-redis client and a gokv client wired through the full
// command pipeline:
//
//	store := redistest.NewComponent()
//	testutil.T(t).Setup(store)
//
//	store.Server().HSet("user:1", "name", "ada")
//	page, err := store.Commands().HScan(ctx, "user:1", nil)
package testutil
