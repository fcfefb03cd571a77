// Package errors provides the error taxonomy shared by every layer of gokv.
//
// All failures are reported as *AppError values carrying a machine-readable
// code. The codes group into the kinds callers act on:
//
//   - connection: CONNECTION_FAILED, TIMEOUT, SERVICE_UNAVAILABLE, RATE_LIMITED
//   - remote protocol: REMOTE_PROTOCOL_ERROR
//   - invalid cursor: INVALID_CURSOR (soft, restart the scan)
//   - invalid argument: INVALID_INPUT, MISSING_FIELD (raised before dispatch)
//   - cancellation: CANCELLED (caller-initiated, not a fault)
//
// Errors are passed through unchanged in kind; use the Is* predicates rather
// than comparing messages.
package errors
