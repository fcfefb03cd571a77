package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/gokv/logger"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/alive":  true,
	"/ready":  true,
}

// RequestLogger logs one line per request at a level chosen by the status
// code. Probe paths are not logged.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			logByStatus(log.WithContext(r.Context()), fields, sw.status)
		})
	}
}

func logByStatus(log *logger.Logger, fields map[string]any, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Debug("request completed", fields)
	}
}
