// Package component defines the lifecycle contract shared by gokv's
// infrastructure pieces (the Redis client, the admin HTTP server) and a
// Registry that starts them in order and stops them in reverse.
package component
