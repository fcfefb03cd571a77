// Package redis executes store commands against a Redis server through
// go-redis.
//
// A Client turns command.Command values into raw go-redis calls and maps
// failures onto the error taxonomy: transport problems are connection
// errors, error replies are REMOTE_PROTOCOL_ERROR (INVALID_CURSOR for a
// rejected scan cursor) and a nil reply is a value, not an error. Every
// command passes through logging, tracing, metrics, a rate limiter, a
// bulkhead bounding commands in flight and a circuit breaker that only
// counts connection failures.
//
//	client, err := redis.New(cfg, log)
//	if err != nil { ... }
//	defer client.Close()
//
//	page, err := client.Commands().HScan(ctx, "user:1", &scan.Args{Count: 100})
//
// Component wraps a Client for the component registry.
package redis
