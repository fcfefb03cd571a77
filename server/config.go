package server

import (
	"github.com/kbukum/gokv/server/middleware"
	"github.com/kbukum/gokv/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Enabled      bool                       `yaml:"enabled" mapstructure:"enabled"`
	Host         string                     `yaml:"host" mapstructure:"host"`
	Port         int                        `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout  int                        `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`   // seconds
	WriteTimeout int                        `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"` // seconds
	IdleTimeout  int                        `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`   // seconds
	MaxBodyBytes int64                      `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gte=0"`
	RateLimit    middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS         middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	Auth         middleware.AuthConfig      `yaml:"auth" mapstructure:"auth"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	}
	if len(c.CORS.ExposedHeaders) == 0 {
		c.CORS.ExposedHeaders = []string{middleware.RequestIDHeader}
	}
	if c.CORS.MaxAge == 0 {
		c.CORS.MaxAge = 600
	}
	if len(c.Auth.SkipPaths) == 0 {
		c.Auth.SkipPaths = []string{"/health", "/ready", "/alive"}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.Auth.Validate()
}
