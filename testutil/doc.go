// Package testutil starts and resets components in tests.
//
// A TestComponent is a component.Component that can also be reset,
// snapshotted and restored, so one started instance can serve several
// cases:
//
//	store := redistest.NewComponent()
//	testutil.T(t).Setup(store)
//	...
//	testutil.T(t).Reset(store)
//
// Components started through Setup are stopped in reverse order when the
// test ends.
package testutil
