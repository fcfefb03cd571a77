package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Connection kind ---

// ServiceUnavailable reports a store that refuses work for now (open circuit,
// full bulkhead).
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ConnectionFailed reports a transport-level failure talking to service.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("unable to reach %s", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout reports a command that did not complete in time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out", operation),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RateLimited reports a command rejected by the client-side rate limiter.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "command rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// --- Reply kind ---

// RemoteProtocol reports a malformed or unexpected reply for a command.
func RemoteProtocol(command, reason string) *AppError {
	return &AppError{
		Code: ErrCodeRemoteProtocol, Message: reason,
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"command": command},
	}
}

// InvalidCursor reports a scan cursor that cannot be continued.
func InvalidCursor(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidCursor, Message: reason,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// NotFound reports a missing key or field.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// --- Caller kind ---

// InvalidInput reports an invalid argument.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation reports a struct validation failure.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField reports a required argument that was not supplied.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("missing required argument: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Cancelled reports a caller-initiated cancellation. cause is usually ctx.Err().
func Cancelled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "operation cancelled",
		HTTPStatus: 499, Retryable: false, Cause: cause,
	}
}

// Unauthorized reports a rejected credential.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "authentication required"
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// Internal reports an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "unexpected error",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// --- Kind predicates ---

func hasCode(err error, codes ...ErrorCode) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	for _, c := range codes {
		if appErr.Code == c {
			return true
		}
	}
	return false
}

// IsConnection reports whether err is a connection-kind failure.
func IsConnection(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && IsConnectionCode(appErr.Code)
}

// IsRemoteProtocol reports whether err is a reply/protocol failure.
func IsRemoteProtocol(err error) bool { return hasCode(err, ErrCodeRemoteProtocol) }

// IsInvalidCursor reports whether err rejects a scan cursor.
func IsInvalidCursor(err error) bool { return hasCode(err, ErrCodeInvalidCursor) }

// IsInvalidArgument reports whether err was raised for a caller mistake.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidInput, ErrCodeMissingField)
}

// IsCancelled reports whether err is a cancellation. Bare context.Canceled
// counts as well.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled) || stderrors.Is(err, context.Canceled)
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// Wrap converts any error to an AppError. AppErrors (also wrapped ones) are
// returned as-is; anything else becomes INTERNAL_ERROR.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
