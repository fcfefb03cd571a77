package middleware

import (
	"net/http"

	"github.com/kbukum/gokv/errors"
)

// DefaultMaxBodyBytes applies when BodySizeLimit gets a non-positive limit.
const DefaultMaxBodyBytes = 1 << 20

// BodySizeLimit rejects requests that declare a body over maxBytes with 413
// and caps the bytes a handler can read from the rest.
func BodySizeLimit(maxBytes int64) Middleware {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, errors.New(errors.ErrCodeInvalidInput, "request body too large",
					http.StatusRequestEntityTooLarge).WithDetail("limit", maxBytes))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
