// Package resilience provides the fault-tolerance primitives wrapped around
// store commands: circuit breaker, retry, bulkhead and rate limiter.
//
// Command dispatch composes them as
//
//	RateLimiter.Wait -> Bulkhead -> CircuitBreaker -> command
//
// Retry is not part of the default dispatch chain. Callers that can resume
// safely, such as a scan loop restarting from its last good cursor, wrap a
// single step with Retry themselves.
package resilience
