package redis

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/resilience"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Enabled: true, Addr: "localhost:6379"}
	cfg.ApplyDefaults()

	if cfg.Name != "redis" || cfg.Protocol != 2 || cfg.ScanCount != 100 || cfg.MaxInFlight != 64 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing addr", func(c *Config) { c.Addr = "" }},
		{"addr without port", func(c *Config) { c.Addr = "localhost" }},
		{"protocol", func(c *Config) { c.Protocol = 4 }},
		{"negative scan count", func(c *Config) { c.ScanCount = -1 }},
		{"bad duration", func(c *Config) { c.ReadTimeout = "soon" }},
		{"bad breaker timeout", func(c *Config) { c.CircuitBreaker.Timeout = "later" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Enabled: true, Addr: "localhost:6379"}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.IsInvalidArgument(err) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestConfig_DisabledSkipsValidation(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled config should not be validated: %v", err)
	}
	if _, err := New(cfg, nil); !errors.IsConnection(err) {
		t.Fatalf("New on a disabled config should be unavailable, got %v", err)
	}
}

func TestConfig_ResilienceConfig(t *testing.T) {
	cfg := Config{Enabled: true, Addr: "localhost:6379", RateLimit: 500}
	cfg.CircuitBreaker.Enabled = true
	cfg.CircuitBreaker.Timeout = "2s"
	cfg.ApplyDefaults()

	var buf bytes.Buffer
	rc := cfg.resilienceConfig(logger.NewWithWriter(&buf, "warn", "test"))
	if rc.Retry != nil {
		t.Error("commands must not be retried by default")
	}
	if rc.RateLimiter == nil || rc.RateLimiter.Rate != 500 {
		t.Errorf("unexpected rate limiter %+v", rc.RateLimiter)
	}
	if rc.Bulkhead == nil || rc.Bulkhead.MaxConcurrent != 64 {
		t.Errorf("unexpected bulkhead %+v", rc.Bulkhead)
	}
	cb := rc.CircuitBreaker
	if cb == nil || cb.MaxFailures != 5 || cb.Timeout != 2*time.Second {
		t.Fatalf("unexpected breaker %+v", cb)
	}
	if cb.IsFailure(errors.RemoteProtocol("HGET", "WRONGTYPE")) {
		t.Error("reply errors must not count against the circuit")
	}
	if !cb.IsFailure(errors.ConnectionFailed("redis")) {
		t.Error("connection errors must count against the circuit")
	}
	cb.OnStateChange("redis", resilience.StateClosed, resilience.StateOpen)
	if out := buf.String(); !strings.Contains(out, `"to":"open"`) || !strings.Contains(out, `"circuit":"redis"`) {
		t.Errorf("expected circuit transition logged, got %s", out)
	}
}
