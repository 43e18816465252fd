// Package config loads runtime configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries everything the service reads from the environment. A .env
// file, if present, is loaded by main before Load runs.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=user password=password dbname=linkedup port=5432 sslmode=disable"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UserCacheTTL bounds staleness of cached user display info.
	UserCacheTTL time.Duration `envconfig:"USER_CACHE_TTL" default:"10m"`
}

// Load processes the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
