package main

import (
	stderrors "errors"
	"time"

	"github.com/kbukum/gokv/config"
	"github.com/kbukum/gokv/observability"
	"github.com/kbukum/gokv/redis"
	"github.com/kbukum/gokv/resilience"
	"github.com/kbukum/gokv/server"
)

// Config is the kvscan configuration, loaded from kvscan.yaml, a .env file
// and GOKV_* variables.
type Config struct {
	config.BaseConfig `yaml:",inline" mapstructure:",squash"`

	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Scan          ScanConfig           `yaml:"scan" mapstructure:"scan"`
}

// ScanConfig controls how the CLI drives scan sequences.
type ScanConfig struct {
	// Parallel bounds how many hashes hscan reads at once.
	Parallel int `yaml:"parallel" mapstructure:"parallel"`
	// Retry is applied to each step, resuming from the last good cursor.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults fills unset fields. The store is always enabled.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "kvscan"
	}
	c.BaseConfig.ApplyDefaults()

	c.Redis.Enabled = true
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	c.Redis.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	c.Observability.Environment = c.Environment
	c.Observability.ApplyDefaults()

	if c.Scan.Parallel <= 0 {
		c.Scan.Parallel = 4
	}
	if c.Scan.Retry.MaxAttempts <= 0 {
		c.Scan.Retry = resilience.DefaultRetryConfig()
	}
	if c.Scan.Retry.MaxBackoff <= 0 {
		c.Scan.Retry.MaxBackoff = 2 * time.Second
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	return stderrors.Join(
		c.BaseConfig.Validate(),
		c.Redis.Validate(),
		c.Server.Validate(),
	)
}
