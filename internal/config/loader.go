package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// validate reports field errors by their envconfig tag so messages can name
// the environment variable.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("envconfig")
	})
	return v
}()

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func (c *Config) normalize() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describe(fe))
		}
	}

	// Store backend requirements
	switch c.Store.Backend {
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, "STORE_REDIS_ADDR is required when STORE_BACKEND is redis")
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "STORE_DATABASE_URL is required when STORE_BACKEND is postgres")
		}
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "SECURITY_REQUIRE_API_KEY is true but SECURITY_API_KEYS is empty; configure at least one API key or disable auth")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// envName turns a validator namespace like "Config.STORE.REDIS.DB" into
// the variable name STORE_REDIS_DB. Slice elements keep their index.
func envName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, "_")
}

func describe(fe validator.FieldError) string {
	name := envName(fe)
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s (%v) must be >= %s", name, fe.Value(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s (%v) must be <= %s", name, fe.Value(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s (%v) must be positive", name, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s (%q) must be one of: %s", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "cidr|ip":
		return fmt.Sprintf("%s (%q) must be an IP address or CIDR", name, fe.Value())
	default:
		return fmt.Sprintf("%s (%v) failed %q validation", name, fe.Value(), fe.Tag())
	}
}

// String returns a safe string representation of the config for logging.
// Secrets like the database URL and API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d, PreviewRows: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.PreviewRows)
	fmt.Fprintf(&b, "Store: {Backend: %q, TTL: %s, RedisAddr: %q, RedisPassword: %s, DatabaseURL: %s}, ",
		c.Store.Backend, c.Store.TTL, c.Store.Redis.Addr, mask(c.Store.Redis.Password), mask(c.Store.DatabaseURL))
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d, Upload: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.UploadLimit)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d configured}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return `""`
	}
	return "[MASKED]"
}
