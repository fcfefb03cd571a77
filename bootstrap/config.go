package bootstrap

import (
	"github.com/kbukum/gokv/config"
)

// Config is the constraint for application configuration types. A struct
// embedding *config.BaseConfig methods through a value field satisfies it
// when used by pointer:
//
//	type CLIConfig struct {
//	    config.BaseConfig `mapstructure:",squash"`
//	    Redis redis.Config `mapstructure:"redis"`
//	}
//
//	app, err := bootstrap.NewApp[*CLIConfig](&cfg)
type Config interface {
	GetBaseConfig() *config.BaseConfig
	ApplyDefaults()
	Validate() error
}
