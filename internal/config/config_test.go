package config

import (
	"testing"
	"time"

	"policysim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"POLICY_API_URL", "SCORING_API_URL", "UPSTREAM_TIMEOUT", "PAGE_SIZE", "PORT", "GIN_MODE", "DATABASE_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPolicyURL, cfg.Upstream.PolicyURL)
	assert.Equal(t, DefaultPolicyURL, cfg.Upstream.ScoringURL)
	assert.Equal(t, time.Duration(0), cfg.Upstream.Timeout)
	assert.Equal(t, 15, cfg.Catalog.PageSize)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLICY_API_URL", "http://catalog.internal:9000")
	t.Setenv("SCORING_API_URL", "http://scorer.internal:9001")
	t.Setenv("UPSTREAM_TIMEOUT", "15s")
	t.Setenv("PAGE_SIZE", "30")
	t.Setenv("DATABASE_URL", "file:runs.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://scorer.internal:9001", cfg.Upstream.ScoringURL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 30, cfg.Catalog.PageSize)
	assert.True(t, cfg.Database.Enabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Upstream: UpstreamConfig{PolicyURL: "http://a:1", ScoringURL: "http://b:2"},
			Catalog:  CatalogConfig{PageSize: 15},
			Server:   ServerConfig{Port: "8080"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"relative policy url", func(c *Config) { c.Upstream.PolicyURL = "/api" }, false},
		{"negative timeout", func(c *Config) { c.Upstream.Timeout = -time.Second }, false},
		{"zero page size", func(c *Config) { c.Catalog.PageSize = 0 }, false},
		{"missing port", func(c *Config) { c.Server.Port = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
