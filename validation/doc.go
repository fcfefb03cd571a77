// Package validation validates configuration structs with go-playground
// validator tags and reports failures as INVALID_INPUT AppErrors listing each
// offending field.
//
//	type Config struct {
//	    Addr string `mapstructure:"addr" validate:"required,hostname_port"`
//	}
//	if err := validation.Validate(cfg); err != nil { ... }
package validation
