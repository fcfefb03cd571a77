// Package server exposes a KV store over HTTP using Gin, served over
// HTTP/1.1 and h2c.
//
// All middleware runs at the handler level, outside the Gin engine:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation into the logger
//   - RequestLogger: one log line per request with status and duration
//   - CORS: cross-origin headers and preflight handling
//   - BodySizeLimit: request body cap
//   - RateLimit: per-client token bucket, optional
//   - Auth: HS256 bearer tokens, optional
//
// Routes are registered by server/endpoint: probes (/health, /ready,
// /alive, /info) and the read-only key and hash scan API under /v1.
//
// Errors are written as errors.ErrorResponse with the status carried by the
// AppError.
package server
