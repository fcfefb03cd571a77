// Package deferred provides Result, a single-assignment cell completed by a
// command executor, and the functions that suspend on it.
//
// A Result moves from pending to exactly one of completed, failed or
// cancelled. The goroutine that completes it only closes a channel; waiters
// resume on their own goroutines, and continuations registered with Then run
// on a goroutine owned by the derived result.
//
//	r := exec.Dispatch(ctx, cmd)
//	reply, err := deferred.Await(ctx, r)
package deferred
