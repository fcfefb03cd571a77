package redis

import (
	"fmt"
	"time"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/provider"
	"github.com/kbukum/gokv/resilience"
	"github.com/kbukum/gokv/validation"
)

// Config holds Redis connection configuration.
type Config struct {
	// Enabled controls whether the Redis component is active.
	Enabled bool `mapstructure:"enabled"`

	// Name identifies the client in logs, spans and resilience errors.
	Name string `mapstructure:"name"`

	// Addr is the Redis server address (host:port).
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`

	// Password is the Redis server password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db" validate:"gte=0"`

	// Protocol is the RESP version negotiated with the server.
	Protocol int `mapstructure:"protocol" validate:"oneof=2 3"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size" validate:"gte=1"`

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int `mapstructure:"min_idle_conns" validate:"gte=0"`

	// MaxRetries is the number of transport-level retries inside go-redis.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// MinRetryBackoff is the minimum backoff between retries (e.g. "8ms").
	MinRetryBackoff string `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff is the maximum backoff between retries (e.g. "512ms").
	MaxRetryBackoff string `mapstructure:"max_retry_backoff"`

	// DialTimeout is the timeout for establishing new connections (e.g. "5s").
	DialTimeout string `mapstructure:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads (e.g. "3s").
	ReadTimeout string `mapstructure:"read_timeout"`

	// WriteTimeout is the timeout for socket writes (e.g. "3s").
	WriteTimeout string `mapstructure:"write_timeout"`

	// ConnMaxIdleTime closes connections idle for longer (e.g. "5m").
	ConnMaxIdleTime string `mapstructure:"idle_timeout"`

	// PoolTimeout bounds the wait for a pooled connection (e.g. "4s").
	PoolTimeout string `mapstructure:"pool_timeout"`

	// ScanCount is the COUNT hint sent with scans that do not set one.
	ScanCount int64 `mapstructure:"scan_count" validate:"gte=0"`

	// MaxInFlight bounds concurrently executing commands. 0 disables the bound.
	MaxInFlight int `mapstructure:"max_in_flight" validate:"gte=0"`

	// RateLimit caps commands per second. 0 disables the limit.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`

	// CircuitBreaker stops dispatching after repeated connection failures.
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig configures the client circuit breaker.
type CircuitBreakerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MaxFailures int    `mapstructure:"max_failures" validate:"gte=0"`
	Timeout     string `mapstructure:"timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "redis"
	}
	if c.Protocol == 0 {
		c.Protocol = 2
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.MinRetryBackoff == "" {
		c.MinRetryBackoff = "8ms"
	}
	if c.MaxRetryBackoff == "" {
		c.MaxRetryBackoff = "512ms"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
	if c.ScanCount == 0 {
		c.ScanCount = 100
	}
	if c.MaxInFlight == 0 {
		c.MaxInFlight = 64
	}
	if c.CircuitBreaker.MaxFailures == 0 {
		c.CircuitBreaker.MaxFailures = 5
	}
	if c.CircuitBreaker.Timeout == "" {
		c.CircuitBreaker.Timeout = "30s"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	durations := map[string]string{
		"min_retry_backoff":       c.MinRetryBackoff,
		"max_retry_backoff":       c.MaxRetryBackoff,
		"dial_timeout":            c.DialTimeout,
		"read_timeout":            c.ReadTimeout,
		"write_timeout":           c.WriteTimeout,
		"idle_timeout":            c.ConnMaxIdleTime,
		"pool_timeout":            c.PoolTimeout,
		"circuit_breaker.timeout": c.CircuitBreaker.Timeout,
	}
	for field, v := range durations {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return errors.InvalidInput(field, fmt.Sprintf("invalid duration %q", v)).WithCause(err)
		}
	}
	return nil
}

// duration parses a validated duration string; empty yields 0.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// resilienceConfig returns the bulkhead, rate limiter and circuit breaker
// guarding command execution. Only connection-kind failures count against
// the circuit, and every circuit transition is logged. Commands are not
// retried.
func (c *Config) resilienceConfig(log *logger.Logger) provider.ResilienceConfig {
	var rc provider.ResilienceConfig
	if c.RateLimit > 0 {
		rc.RateLimiter = &resilience.RateLimiterConfig{Name: c.Name, Rate: c.RateLimit}
	}
	if c.MaxInFlight > 0 {
		bh := resilience.DefaultBulkheadConfig(c.Name)
		bh.MaxConcurrent = c.MaxInFlight
		rc.Bulkhead = &bh
	}
	if c.CircuitBreaker.Enabled {
		cb := resilience.DefaultCircuitBreakerConfig(c.Name)
		cb.MaxFailures = c.CircuitBreaker.MaxFailures
		cb.Timeout = duration(c.CircuitBreaker.Timeout)
		cb.IsFailure = errors.IsConnection
		cb.OnStateChange = func(name string, from, to resilience.State) {
			log.Warn("circuit state changed", logger.Fields("circuit", name, "from", from.String(), "to", to.String()))
		}
		rc.CircuitBreaker = &cb
	}
	return rc
}
