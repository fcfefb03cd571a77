package endpoint_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gokv/component"
	"github.com/kbukum/gokv/server/endpoint"
)

func probeEngine(statuses ...component.HealthStatus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	checker := func(context.Context) []component.Health {
		out := make([]component.Health, 0, len(statuses))
		for i, s := range statuses {
			out = append(out, component.Health{Name: string(rune('a' + i)), Status: s})
		}
		return out
	}
	r := gin.New()
	r.GET("/health", endpoint.Health("gokv", checker))
	r.GET("/ready", endpoint.Readiness("gokv", checker))
	r.GET("/alive", endpoint.Liveness("gokv"))
	r.GET("/info", endpoint.Info("gokv", "1.2.3"))
	return r
}

func probe(t *testing.T, r *gin.Engine, path string) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: invalid JSON: %v", path, err)
	}
	return rr.Code, body
}

func TestProbes(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []component.HealthStatus
		path       string
		wantCode   int
		wantStatus string
	}{
		{"health ok", []component.HealthStatus{component.StatusHealthy}, "/health", http.StatusOK, "healthy"},
		{"health degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, "/health", http.StatusOK, "degraded"},
		{"health down", []component.HealthStatus{component.StatusDegraded, component.StatusUnhealthy}, "/health", http.StatusServiceUnavailable, "unhealthy"},
		{"ready while degraded", []component.HealthStatus{component.StatusDegraded}, "/ready", http.StatusOK, "ready"},
		{"not ready", []component.HealthStatus{component.StatusUnhealthy}, "/ready", http.StatusServiceUnavailable, "not_ready"},
		{"alive", []component.HealthStatus{component.StatusUnhealthy}, "/alive", http.StatusOK, "alive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := probe(t, probeEngine(tt.statuses...), tt.path)
			if code != tt.wantCode || body["status"] != tt.wantStatus {
				t.Fatalf("got %d %v, want %d %s", code, body["status"], tt.wantCode, tt.wantStatus)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	code, body := probe(t, probeEngine(), "/info")
	if code != http.StatusOK || body["version"] != "1.2.3" || body["service"] != "gokv" {
		t.Fatalf("unexpected info %d %v", code, body)
	}
}
