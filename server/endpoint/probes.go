package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gokv/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// ProbeResponse is the body served by the probe endpoints.
type ProbeResponse struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

// overall folds component statuses into one: any unhealthy component wins,
// then any degraded one.
func overall(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

func probe(c *gin.Context, code int, status, service string, components []component.Health) {
	c.JSON(code, ProbeResponse{
		Status:     status,
		Service:    service,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	})
}

func check(c *gin.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(c.Request.Context())
}

// Health reports the service status together with every component. A
// degraded store still answers 200.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c, checker)
		status := overall(components)
		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		probe(c, code, string(status), serviceName, components)
	}
}

// Readiness answers 503 while any component is unhealthy.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if overall(check(c, checker)) == component.StatusUnhealthy {
			probe(c, http.StatusServiceUnavailable, "not_ready", serviceName, nil)
			return
		}
		probe(c, http.StatusOK, "ready", serviceName, nil)
	}
}

// Liveness always answers 200. It never touches the store.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		probe(c, http.StatusOK, "alive", serviceName, nil)
	}
}
