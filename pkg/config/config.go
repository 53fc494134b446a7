// Package config loads service configuration from environment variables,
// with an optional YAML overrides file for rate-limit tuning that can be
// hot-reloaded at runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tunehub/telemetry/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	RateLimit     RateLimitConfig
	Ingestion     IngestionConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string
}

// RateLimitConfig holds the dual-window limiter settings.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	Limit       int           `yaml:"limit"`
	BurstWindow time.Duration `yaml:"burst_window"`
	BurstLimit  int           `yaml:"burst_limit"`
	SweepEvery  int           `yaml:"sweep_every"`

	// SweepSchedule, when set, additionally runs the sweep on a cron
	// schedule instead of relying only on the inline trigger.
	SweepSchedule string `yaml:"sweep_schedule"`

	// OverridesFile is an optional YAML file with the fields above; when it
	// changes on disk the limiter is reconfigured in place.
	OverridesFile string `yaml:"-"`
}

// IngestionConfig holds batch acceptance settings.
type IngestionConfig struct {
	MaxBatchSize    int
	DefaultPlatform string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		RateLimit:     loadRateLimitConfig(),
		Ingestion:     loadIngestionConfig(),
		Observability: loadObservabilityConfig(),
	}

	if cfg.RateLimit.OverridesFile != "" {
		if err := ApplyOverridesFile(&cfg.RateLimit, cfg.RateLimit.OverridesFile); err != nil {
			return nil, fmt.Errorf("rate limit overrides: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("TELEMETRY_HOST", "0.0.0.0"),
		Port:            getEnv("TELEMETRY_PORT", "8080"),
		ReadTimeout:     getEnvDuration("TELEMETRY_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("TELEMETRY_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("TELEMETRY_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("TELEMETRY_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("TELEMETRY_HEALTH_PORT", "9090"),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:        getEnvDuration("TELEMETRY_RATE_LIMIT_WINDOW", 15*time.Minute),
		Limit:         getEnvInt("TELEMETRY_RATE_LIMIT_MAX", 1000),
		BurstWindow:   getEnvDuration("TELEMETRY_RATE_LIMIT_BURST_WINDOW", time.Second),
		BurstLimit:    getEnvInt("TELEMETRY_RATE_LIMIT_BURST_MAX", 50),
		SweepEvery:    getEnvInt("TELEMETRY_RATE_LIMIT_SWEEP_EVERY", 1000),
		SweepSchedule: getEnv("TELEMETRY_RATE_LIMIT_SWEEP_SCHEDULE", ""),
		OverridesFile: getEnv("TELEMETRY_RATE_LIMIT_OVERRIDES_FILE", ""),
	}
}

func loadIngestionConfig() IngestionConfig {
	return IngestionConfig{
		MaxBatchSize:    getEnvInt("TELEMETRY_MAX_BATCH_SIZE", 100),
		DefaultPlatform: getEnv("TELEMETRY_DEFAULT_PLATFORM", "web"),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("TELEMETRY_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("TELEMETRY_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("TELEMETRY_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("TELEMETRY_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("TELEMETRY_OTEL_SERVICE_NAME", "telemetry-analytics"),
		OTelServiceVersion: getEnv("TELEMETRY_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("TELEMETRY_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("rate limit max must be positive")
	}
	if c.RateLimit.BurstWindow <= 0 {
		return fmt.Errorf("rate limit burst window must be positive")
	}
	if c.RateLimit.BurstLimit <= 0 {
		return fmt.Errorf("rate limit burst max must be positive")
	}
	if c.RateLimit.BurstWindow > c.RateLimit.Window {
		return fmt.Errorf("burst window must not exceed the sustained window")
	}

	if c.Ingestion.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
