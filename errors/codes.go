package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection errors. These are the transport-level failures reported by the
// command executor; they are always surfaced to the caller.
const (
	// ErrCodeServiceUnavailable indicates the store is temporarily unavailable
	// (circuit open, concurrency limit reached).
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed or broken connection to the store.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the command did not complete in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client-side command rate limit was hit.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Reply errors
const (
	// ErrCodeRemoteProtocol indicates a malformed or unexpected reply, or an
	// error reply from the store. Fatal for the single command only.
	ErrCodeRemoteProtocol ErrorCode = "REMOTE_PROTOCOL_ERROR"
	// ErrCodeInvalidCursor indicates a scan cursor that cannot be continued.
	ErrCodeInvalidCursor ErrorCode = "INVALID_CURSOR"
	// ErrCodeNotFound indicates the requested key or field does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Caller errors
const (
	// ErrCodeInvalidInput indicates an invalid argument.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required argument is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeCancelled indicates the caller cancelled the operation.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
}

var connectionCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsConnectionCode returns true if the code belongs to the connection kind.
func IsConnectionCode(code ErrorCode) bool {
	return connectionCodes[code]
}
