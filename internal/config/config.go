package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"policysim/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Upstream UpstreamConfig
	Catalog  CatalogConfig
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// UpstreamConfig points at the policy catalog and scoring service
type UpstreamConfig struct {
	PolicyURL  string
	ScoringURL string
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration
}

// CatalogConfig holds pagination settings
type CatalogConfig struct {
	PageSize int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the optional run-history database
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether run history should be persisted
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.URL) != ""
}

// LoggingConfig holds log verbosity
type LoggingConfig struct {
	Level string
}

const (
	DefaultPolicyURL = "http://localhost:5000"
	DefaultPageSize  = 15
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	policyURL := getEnvOrDefault("POLICY_API_URL", DefaultPolicyURL)

	cfg := &Config{
		Upstream: UpstreamConfig{
			PolicyURL:  policyURL,
			ScoringURL: getEnvOrDefault("SCORING_API_URL", policyURL),
			Timeout:    getEnvDurationOrDefault("UPSTREAM_TIMEOUT", 0),
		},
		Catalog: CatalogConfig{
			PageSize: getEnvIntOrDefault("PAGE_SIZE", DefaultPageSize),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

// Validate checks the invariants the rest of the application relies on
func Validate(cfg *Config) error {
	if err := validateURL("POLICY_API_URL", cfg.Upstream.PolicyURL); err != nil {
		return err
	}
	if err := validateURL("SCORING_API_URL", cfg.Upstream.ScoringURL); err != nil {
		return err
	}
	if cfg.Upstream.Timeout < 0 {
		return errors.ConfigInvalid("UPSTREAM_TIMEOUT cannot be negative")
	}
	if cfg.Catalog.PageSize <= 0 {
		return errors.ConfigInvalid("PAGE_SIZE must be positive")
	}
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid(name + " must be an absolute URL")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
