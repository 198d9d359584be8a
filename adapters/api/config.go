package api

import (
	"net/http"
	"strings"
	"time"

	"policysim/internal"
	"policysim/internal/config"
	"policysim/internal/metrics"
)

// ClientConfig holds connection settings for the policy and scoring services
type ClientConfig struct {
	PolicyURL  string
	ScoringURL string
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration

	HTTPClient *http.Client
	Metrics    *metrics.Recorder
	Logger     *internal.Logger
}

// ClientConfigFrom builds a client config from the application config
func ClientConfigFrom(cfg config.UpstreamConfig) ClientConfig {
	return ClientConfig{
		PolicyURL:  cfg.PolicyURL,
		ScoringURL: cfg.ScoringURL,
		Timeout:    cfg.Timeout,
	}
}

func (c ClientConfig) withDefaults() ClientConfig {
	c.PolicyURL = strings.TrimRight(c.PolicyURL, "/")
	c.ScoringURL = strings.TrimRight(c.ScoringURL, "/")
	if c.ScoringURL == "" {
		c.ScoringURL = c.PolicyURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	if c.Logger == nil {
		c.Logger = internal.DefaultLogger
	}
	return c
}
