package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/server/middleware"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errors.ErrorBody {
	t.Helper()
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an error envelope: %v (%s)", err, rr.Body.String())
	}
	return resp.Error
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "error", "test")

	t.Run("passes through", func(t *testing.T) {
		rr := serve(middleware.Recovery(log)(http.HandlerFunc(ok)), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("panic becomes internal error", func(t *testing.T) {
		h := middleware.Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("hscan decoder blew up")
		}))
		rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/hashes/h", http.NoBody))
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rr.Code)
		}
		if body := decodeError(t, rr); body.Code != errors.ErrCodeInternal {
			t.Fatalf("expected INTERNAL_ERROR, got %s", body.Code)
		}
		if !strings.Contains(buf.String(), "hscan decoder blew up") {
			t.Fatalf("expected panic value in log, got %s", buf.String())
		}
	})

	t.Run("abort handler is re-raised", func(t *testing.T) {
		h := middleware.Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		defer func() {
			if rec := recover(); rec != http.ErrAbortHandler {
				t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
			}
		}()
		serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	})
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{"generated", ""},
		{"preserved", "custom-id-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.Header.Get(middleware.RequestIDHeader)
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.incoming != "" {
				req.Header.Set(middleware.RequestIDHeader, tt.incoming)
			}
			rr := serve(h, req)

			got := rr.Header().Get(middleware.RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("response id %q must match request id %q", got, seen)
			}
			if tt.incoming != "" && got != tt.incoming {
				t.Fatalf("expected %s, got %s", tt.incoming, got)
			}
		})
	}
}

func TestRequestID_StoredInContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "test")
	h := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithContext(r.Context()).Info("handled")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "ctx-id-7")
	serve(h, req)

	if !strings.Contains(buf.String(), "ctx-id-7") {
		t.Fatalf("expected request id in log line, got %s", buf.String())
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"https://example.com"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}
	tests := []struct {
		name       string
		method     string
		origin     string
		wantCode   int
		wantHeader map[string]string
	}{
		{
			name: "allowed origin", method: http.MethodGet, origin: "https://example.com", wantCode: http.StatusOK,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":      "https://example.com",
				"Access-Control-Allow-Methods":     "GET, OPTIONS",
				"Access-Control-Allow-Headers":     "Content-Type, Authorization",
				"Access-Control-Expose-Headers":    middleware.RequestIDHeader,
				"Access-Control-Allow-Credentials": "true",
				"Access-Control-Max-Age":           "",
			},
		},
		{
			name: "preflight", method: http.MethodOptions, origin: "https://example.com", wantCode: http.StatusNoContent,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin": "https://example.com",
				"Access-Control-Max-Age":      "600",
			},
		},
		{
			name: "disallowed origin", method: http.MethodGet, origin: "https://evil.com", wantCode: http.StatusOK,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":  "",
				"Access-Control-Allow-Methods": "",
			},
		},
		{
			name: "no origin", method: http.MethodGet, wantCode: http.StatusOK,
			wantHeader: map[string]string{"Access-Control-Allow-Origin": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodOptions {
					t.Error("preflight must not reach the handler")
				}
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(tt.method, "/v1/keys", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := serve(h, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			got := make(map[string]string, len(tt.wantHeader))
			for k := range tt.wantHeader {
				got[k] = rr.Header().Get(k)
			}
			if diff := cmp.Diff(tt.wantHeader, got); diff != "" {
				t.Errorf("headers mismatch (-want +got):\n%s", diff)
			}
			if rr.Header().Get("Vary") != "Origin" {
				t.Errorf("expected Vary: Origin, got %q", rr.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	h := middleware.CORS(&middleware.CORSConfig{AllowedOrigins: []string{"*"}})(http.HandlerFunc(ok))
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	if got := serve(h, req).Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("wildcard should echo the origin, got %q", got)
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		status  int
		level   string
		logged  bool
		message string
	}{
		{"success at debug", "/v1/keys", http.StatusOK, "debug", true, `"status":200`},
		{"client error at warn", "/v1/keys/missing", http.StatusNotFound, "warn", true, `"level":"warn"`},
		{"server error at error", "/v1/hashes/h", http.StatusServiceUnavailable, "error", true, `"level":"error"`},
		{"probe is quiet", "/health", http.StatusOK, "debug", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, tt.level, "test")
			h := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))
			rr := serve(h, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}

			out := buf.String()
			if !tt.logged {
				if out != "" {
					t.Fatalf("expected no log line, got %s", out)
				}
				return
			}
			for _, want := range []string{tt.message, `"path":"` + tt.path + `"`, `"bytes":4`} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %s in %s", want, out)
				}
			}
		})
	}
}

func TestBodySizeLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int64
		body     string
		wantCode int
	}{
		{"empty body", 1024, "", http.StatusOK},
		{"within limit", 16, "0123456789", http.StatusOK},
		{"declared oversize", 8, "0123456789abcdef", http.StatusRequestEntityTooLarge},
		{"default limit", 0, "small", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := middleware.BodySizeLimit(tt.limit)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))
			rr := serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if tt.wantCode == http.StatusRequestEntityTooLarge {
				if called {
					t.Error("handler should not run for an oversized body")
				}
				if body := decodeError(t, rr); body.Code != errors.ErrCodeInvalidInput {
					t.Errorf("expected INVALID_INPUT, got %s", body.Code)
				}
			}
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+">")
				next.ServeHTTP(w, r)
				order = append(order, "<"+name)
			})
		}
	}

	h := middleware.Chain(tag("a"), tag("b"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))
	serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	want := []string{"a>", "b>", "handler", "<b", "<a"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestRequestLogger_ForwardsFlush(t *testing.T) {
	fr := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	h := middleware.RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.(http.Flusher).Flush()
	}))
	h.ServeHTTP(fr, httptest.NewRequest(http.MethodGet, "/v1/keys", http.NoBody))
	if !fr.flushed {
		t.Error("expected Flush to reach the underlying writer")
	}
}
