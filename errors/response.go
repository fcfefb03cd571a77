package errors

import (
	stderrors "errors"
)

// ErrorResponse is the envelope the HTTP surface writes for a failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the taxonomy code so clients can branch on it.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse returns the envelope for e.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// Render returns the HTTP status and envelope for any error. Errors outside
// the taxonomy render as INTERNAL_ERROR.
func Render(err error) (int, ErrorResponse) {
	appErr := Wrap(err)
	return appErr.HTTPStatus, appErr.ToResponse()
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
