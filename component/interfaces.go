package component

import (
	"context"
	"time"
)

// HealthStatus is the state a component reports to the probe endpoints.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's answer to a health check.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	// LatencyMS is the round trip of the check, when one was made.
	LatencyMS float64 `json:"latency_ms,omitempty"`
}

// Healthy returns a healthy report for name.
func Healthy(name string) Health {
	return Health{Name: name, Status: StatusHealthy}
}

// Unhealthy returns an unhealthy report for name.
func Unhealthy(name, message string) Health {
	return Health{Name: name, Status: StatusUnhealthy, Message: message}
}

// Degraded returns a degraded report for name. Degraded components still
// serve requests.
func Degraded(name, message string) Health {
	return Health{Name: name, Status: StatusDegraded, Message: message}
}

// WithLatency records d as the check round trip.
func (h Health) WithLatency(d time.Duration) Health {
	h.LatencyMS = float64(d.Microseconds()) / 1000
	return h
}

// Component is a lifecycle-managed piece of infrastructure: the store
// connection or the HTTP server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. Stop on a component that never started is a no-op.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is logged when a component starts.
type Description struct {
	// Type is "redis" or "server".
	Type string
	// Details is a one-liner such as "localhost:6379 db=0 pool=10".
	Details string
}

// Describable is implemented by components that can report their settings.
type Describable interface {
	Describe() Description
}
