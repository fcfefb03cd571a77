package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
)

// Recovery turns a handler panic into a logged INTERNAL_ERROR response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				cause := fmt.Errorf("panic: %v", rec)
				log.WithContext(r.Context()).Error("panic recovered", logger.MergeWithError(logger.Fields(
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				), cause))
				writeError(w, errors.Internal(cause))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
