package goSession

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by [LoadConfig].
const EnvPrefix = "GOSESSION_"

// Config holds every tunable of a [Store] and its default collaborators.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"    envPrefix:"GATEWAY_"`
	Storage   StorageConfig   `yaml:"storage"    envPrefix:"STORAGE_"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"  envPrefix:"BOOTSTRAP_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Audit     AuditConfig     `yaml:"audit"      envPrefix:"AUDIT_"`
	Metrics   MetricsConfig   `yaml:"metrics"    envPrefix:"METRICS_"`
	Logging   LoggingConfig   `yaml:"logging"    envPrefix:"LOGGING_"`
}

/*
====================================
GATEWAY CONFIG
====================================
*/

// GatewayConfig describes the remote identity service.
type GatewayConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"BASE_URL"`
	Timeout   time.Duration `yaml:"timeout"    env:"TIMEOUT"` // 0 = no client timeout
	UserAgent string        `yaml:"user_agent" env:"USER_AGENT"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// Storage backends accepted by StorageConfig.Backend.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// StorageConfig selects where the bearer token survives restarts.
type StorageConfig struct {
	Backend     string `yaml:"backend"      env:"BACKEND"`
	Key         string `yaml:"key"          env:"KEY"`
	FilePath    string `yaml:"file_path"    env:"FILE_PATH"`
	RedisAddr   string `yaml:"redis_addr"   env:"REDIS_ADDR"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
	RedisDB     int    `yaml:"redis_db"     env:"REDIS_DB"`
}

/*
====================================
BOOTSTRAP CONFIG
====================================
*/

// BootstrapConfig controls session restore at startup.
type BootstrapConfig struct {
	// KeepTokenOnUnavailable keeps the persisted token when validation fails
	// for transport reasons. The session is anonymous either way.
	KeepTokenOnUnavailable bool `yaml:"keep_token_on_unavailable" env:"KEEP_TOKEN_ON_UNAVAILABLE"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig throttles Login and Register per username.
type RateLimitConfig struct {
	Enabled   bool    `yaml:"enabled"    env:"ENABLED"`
	PerSecond float64 `yaml:"per_second" env:"PER_SECOND"`
	Burst     int     `yaml:"burst"      env:"BURST"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"      env:"ENABLED"`
	BufferSize int  `yaml:"buffer_size"  env:"BUFFER_SIZE"`
	DropIfFull bool `yaml:"drop_if_full" env:"DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process counters and the gateway latency histogram.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"                   env:"ENABLED"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms" env:"ENABLE_LATENCY_HISTOGRAMS"`
}

/*
====================================
LOGGING CONFIG
====================================
*/

// LoggingConfig selects the slog handler built by cmd/sessionctl.
type LoggingConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`  // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // json or text
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			BaseURL:   "http://localhost:9191/api/v1",
			UserAgent: "goSession",
		},
		Storage: StorageConfig{
			Backend:     StorageMemory,
			Key:         "token",
			FilePath:    "session.json",
			RedisPrefix: "gosession:",
		},
		RateLimit: RateLimitConfig{
			Enabled:   false,
			PerSecond: 1,
			Burst:     5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	// Gateway
	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("Gateway BaseURL must be an absolute http(s) URL")
	}
	if c.Gateway.Timeout < 0 {
		return errors.New("Gateway Timeout must be >= 0")
	}

	// Storage
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("Storage Key must not be empty")
	}
	switch c.Storage.Backend {
	case StorageMemory, StorageRedis:
	case StorageFile:
		if strings.TrimSpace(c.Storage.FilePath) == "" {
			return errors.New("Storage FilePath required for file backend")
		}
	default:
		return errors.New("Storage Backend must be 'memory', 'file' or 'redis'")
	}
	if c.Storage.RedisDB < 0 {
		return errors.New("Storage RedisDB must be >= 0")
	}

	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.PerSecond <= 0 {
			return errors.New("RateLimit PerSecond must be > 0 when enabled")
		}
		if c.RateLimit.Burst <= 0 {
			return errors.New("RateLimit Burst must be > 0 when enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("Logging Level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return errors.New("Logging Format must be 'json' or 'text'")
	}

	return nil
}

/*
====================================
LOADING
====================================
*/

// LoadConfig layers defaults, the optional YAML file at path, a .env file in
// the working directory and GOSESSION_* environment variables, in that order,
// then validates the result. An empty path skips the YAML layer; a missing
// .env is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
