// Package config loads gokv configuration from a YAML file, a .env file and
// prefixed environment variables, using Viper and godotenv.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("kvscan", &cfg, config.WithConfigFile("kvscan.yml"))
//
// Environment variables carrying the GOKV_ prefix override file values, with
// underscores mapped onto nesting (GOKV_REDIS_ADDR -> redis.addr,
// GOKV_REDIS_SCAN_COUNT -> redis.scan_count).
package config
