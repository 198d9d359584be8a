package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"policysim/domain/core"
	"policysim/domain/policy"
	"policysim/domain/simulation"
	"policysim/internal"
	"policysim/internal/errors"
	"policysim/internal/metrics"
)

// Upstream endpoint labels
const (
	EndpointPolicies = "policies"
	EndpointPolicy   = "policy"
	EndpointSimulate = "simulate"
)

// maxErrorBody caps how much of an error response is read for a message
const maxErrorBody = 64 << 10

// Client talks to the policy catalog and scoring services over HTTP. It
// never retries; every failure is returned to the caller as an AppError
// whose Message is fit for display.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	metrics *metrics.Recorder
	log     *internal.Logger
	drift   *SchemaDriftDetector
}

// NewClient creates a client
func NewClient(cfg ClientConfig) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		http:    cfg.HTTPClient,
		metrics: cfg.Metrics,
		log:     cfg.Logger.WithComponent("API"),
		drift:   NewSchemaDriftDetector(),
	}
}

// FetchPolicies lists policies, narrowed server-side by any facet parameters
func (c *Client) FetchPolicies(ctx context.Context, query url.Values) ([]policy.Policy, error) {
	endpoint := c.cfg.PolicyURL + "/api/policies"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	resp, body, err := c.do(ctx, EndpointPolicies, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.ExternalServiceError("An error occurred while fetching policies.", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.ExternalServiceError(fmt.Sprintf("Failed to fetch policies: %d", resp.StatusCode), nil)
	}

	var policies []policy.Policy
	if err := json.Unmarshal(body, &policies); err != nil {
		return nil, errors.ExternalServiceError("Policy service returned an unreadable collection.", err)
	}
	c.reportDrift(body)
	return policies, nil
}

// reportDrift logs fields that appeared, vanished or changed type since the
// previous collection
func (c *Client) reportDrift(body []byte) {
	report := c.drift.Observe(body)
	for _, change := range report.Changes {
		if change.Severity == DriftSeverityHigh {
			c.log.Warn("policy schema drift: %s", change)
		} else {
			c.log.Debug("policy schema drift: %s", change)
		}
	}
}

// FetchPolicy retrieves a single policy with its simulated scores
func (c *Client) FetchPolicy(ctx context.Context, id core.PolicyID) (*policy.Policy, error) {
	if id == "" {
		return nil, errors.InvalidInput("Policy ID is missing.")
	}
	endpoint := c.cfg.PolicyURL + "/api/policy/" + url.PathEscape(id.String())

	resp, body, err := c.do(ctx, EndpointPolicy, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.ExternalServiceError("An error occurred while fetching policy data.", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFound("Policy not found")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.ExternalServiceError(fmt.Sprintf("Failed to fetch policy: %d", resp.StatusCode), nil)
	}

	var p policy.Policy
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errors.ExternalServiceError("Policy service returned an unreadable record.", err)
	}
	return &p, nil
}

// Simulate posts a configuration to the scoring service
func (c *Client) Simulate(ctx context.Context, payload simulation.Payload) (*simulation.Result, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode simulation request")
	}

	resp, body, err := c.do(ctx, EndpointSimulate, http.MethodPost, c.cfg.ScoringURL+"/simulate", raw)
	if err != nil {
		return nil, errors.ExternalServiceError("An error occurred while running the simulation.", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.ExternalServiceError(ErrorMessage(body, resp.StatusCode), nil)
	}

	// The scoring service reports missing inputs as {"error": ...} with a 200
	if parsed := gjson.ParseBytes(body); parsed.IsObject() && !parsed.Get("badge").Exists() {
		if msg := parsed.Get("error"); msg.Type == gjson.String && msg.Str != "" {
			return nil, errors.ExternalServiceError(msg.Str, nil)
		}
	}

	var result simulation.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.ExternalServiceError("Scoring service returned an unreadable result.", err)
	}
	return &result, nil
}

// ErrorMessage extracts a human-readable message from an error body,
// preferring "message" over "error", and falls back to the status code.
func ErrorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, key := range []string{"message", "error"} {
			if v := parsed.Get(key); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

func (c *Client) do(ctx context.Context, endpoint, method, target string, body []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, 0, time.Since(start))
		c.log.Warn("%s %s failed (request %s): %v", method, target, requestID, err)
		return nil, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	limit := int64(-1)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		limit = maxErrorBody
	}
	var data []byte
	if limit > 0 {
		data, err = io.ReadAll(io.LimitReader(resp.Body, limit))
	} else {
		data, err = io.ReadAll(resp.Body)
	}
	c.metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("%s %s -> %d in %s (request %s)", method, target, resp.StatusCode, time.Since(start), requestID)
	return resp, data, nil
}
