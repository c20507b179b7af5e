// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
//
// Variable names are the section prefix joined to the field name, e.g.
// SERVER_PORT or STORE_REDIS_ADDR.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig    `envconfig:"SERVER"`
	Upload   UploadConfig    `envconfig:"UPLOAD"`
	Store    StoreConfig     `envconfig:"STORE"`
	Rate     RateLimitConfig `envconfig:"RATE_LIMIT"`
	Security SecurityConfig  `envconfig:"SECURITY"`
	Logging  LoggingConfig   `envconfig:"LOG"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading the request, body included (default: 30s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"30s" validate:"gte=0"`

	// WriteTimeout is the maximum duration for writing the response (default: 2m)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"2m" validate:"gte=0"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gte=0"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`

	// RequestTimeout is the middleware timeout for requests (default: 2m)
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"2m" validate:"gt=0"`
}

// UploadConfig holds upload and cleaning settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 32MB)
	MaxFileSize int64 `envconfig:"MAX_FILE_SIZE" default:"33554432" validate:"gt=0"`

	// MaxConcurrent is the maximum number of parallel cleaning runs (default: 5)
	MaxConcurrent int `envconfig:"MAX_CONCURRENT" default:"5" validate:"gt=0"`

	// MaxWaitTime is how long to wait for a run slot (default: 30s)
	MaxWaitTime time.Duration `envconfig:"MAX_WAIT_TIME" default:"30s" validate:"gt=0"`

	// Timeout is the maximum duration for one cleaning run (default: 2m)
	Timeout time.Duration `envconfig:"TIMEOUT" default:"2m" validate:"gt=0"`

	// PreviewRows is how many input rows the result page shows (default: 10)
	PreviewRows int `envconfig:"PREVIEW_ROWS" default:"10" validate:"gte=0,lte=1000"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StoreConfig selects where cleaned results are kept between requests.
type StoreConfig struct {
	// Backend is one of memory, redis, postgres (default: memory)
	Backend string `envconfig:"BACKEND" default:"memory" validate:"oneof=memory redis postgres"`

	// TTL is how long a result stays retrievable (default: 24h)
	TTL time.Duration `envconfig:"TTL" default:"24h" validate:"gt=0"`

	// SweepInterval is how often expired results are purged (default: 10m)
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m" validate:"gt=0"`

	Redis RedisConfig `envconfig:"REDIS"`

	// DatabaseURL is the PostgreSQL connection string for the postgres backend.
	// DATABASE_URL is accepted as a fallback.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int32 `envconfig:"DB_MAX_CONNS" default:"10" validate:"gt=0"`
}

// RedisConfig holds settings for the redis backend.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0" validate:"gte=0"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `envconfig:"REQUESTS_PER_MINUTE" default:"100" validate:"gte=0"`

	// UploadLimit is requests per minute for clean endpoints (default: 10)
	UploadLimit int `envconfig:"UPLOAD" default:"10" validate:"gte=0"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs or IPs
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES" validate:"dive,cidr|ip"`

	// RequireAPIKey protects /api routes with X-API-Key (default: false)
	RequireAPIKey bool `envconfig:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `envconfig:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `envconfig:"ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Format is the log format: text or json (default: text)
	Format string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
