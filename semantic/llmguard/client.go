// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package llmguard implements the semantic validation layer over the
// Anthropic messages API. The classifier receives the sanitized
// prompt built by the pipeline and answers with a single JSON verdict.
package llmguard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"aegisgate/platform/guard/pipeline"
	"aegisgate/platform/shared/logger"
	"aegisgate/platform/shared/types"
)

const (
	// DefaultBaseURL is the default Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAPIVersion is the Anthropic API version.
	DefaultAPIVersion = "2023-06-01"

	// DefaultModel is the classifier model. A small fast model keeps
	// validation latency inside the pipeline timeout.
	DefaultModel = "claude-3-5-haiku-20241022"

	// DefaultTimeout is the HTTP client timeout. The pipeline applies
	// its own per-call deadline on top.
	DefaultTimeout = 30 * time.Second

	// classifierMaxTokens bounds the verdict response.
	classifierMaxTokens = 512
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration for the semantic classifier client.
type Config struct {
	APIKey     string        // Required: Anthropic API key
	BaseURL    string        // Optional: API base URL (default: https://api.anthropic.com)
	APIVersion string        // Optional: API version (default: 2023-06-01)
	Model      string        // Optional: classifier model (default: claude-3-5-haiku)
	Timeout    time.Duration // Optional: HTTP timeout (default: 30s)
}

// Client implements pipeline.SemanticClient over the Anthropic
// messages API. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	client     HTTPClient
	log        *logger.Logger

	mu        sync.RWMutex
	available bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(h HTTPClient) ClientOption {
	return func(c *Client) { c.client = h }
}

// WithClientLogger injects the structured logger.
func WithClientLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a semantic classifier client.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: semantic API key is required", types.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        logger.New("llmguard"),
		available:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IsAvailable reports whether the client considers the upstream
// reachable. It flips false after a transport failure and back true
// after a success.
func (c *Client) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

func (c *Client) setAvailable(ok bool) {
	c.mu.Lock()
	c.available = ok
	c.mu.Unlock()
}

// messagesRequest is the Anthropic messages API request body.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the subset of the response the classifier needs.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// classifierVerdict is the JSON object the classifier prompt asks for.
type classifierVerdict struct {
	Safe             bool   `json:"safe"`
	ViolatedGate     string `json:"violated_gate"`
	Risk             string `json:"risk"`
	Reasoning        string `json:"reasoning"`
	InjectionAttempt bool   `json:"injection_attempt"`
}

// Validate sends the sanitized prompt to the classifier and parses the
// JSON verdict. The context deadline set by the pipeline bounds the
// round trip.
func (c *Client) Validate(ctx context.Context, prompt string) (*pipeline.SemanticVerdict, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: classifierMaxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		c.setAvailable(false)
		return nil, fmt.Errorf("classifier call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read classifier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			c.setAvailable(false)
		}
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	c.setAvailable(true)

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	if mr.Error != nil {
		return nil, fmt.Errorf("classifier error: %s", mr.Error.Message)
	}
	if len(mr.Content) == 0 {
		return nil, fmt.Errorf("classifier returned empty content")
	}

	return parseVerdict(mr.Content[0].Text)
}

// parseVerdict extracts the JSON verdict from the classifier's text.
// Models sometimes wrap the object in prose; the parser takes the
// first balanced object.
func parseVerdict(text string) (*pipeline.SemanticVerdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("classifier response carries no JSON verdict")
	}

	var cv classifierVerdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &cv); err != nil {
		return nil, fmt.Errorf("decode classifier verdict: %w", err)
	}

	verdict := &pipeline.SemanticVerdict{
		IsSafe:                   cv.Safe,
		Reasoning:                cv.Reasoning,
		InjectionAttemptDetected: cv.InjectionAttempt,
	}

	if cv.Risk != "" {
		risk, err := types.ParseRiskLevel(cv.Risk)
		if err != nil {
			return nil, fmt.Errorf("classifier verdict: %w", err)
		}
		verdict.Risk = risk
	} else if cv.Safe {
		verdict.Risk = types.RiskSafe
	} else {
		verdict.Risk = types.RiskHigh
	}

	switch cv.ViolatedGate {
	case "":
	case string(types.GateTruth), string(types.GateHarm), string(types.GateScope), string(types.GatePurpose):
		verdict.ViolatedGate = types.Gate(cv.ViolatedGate)
	default:
		return nil, fmt.Errorf("classifier verdict names unknown gate %q", cv.ViolatedGate)
	}

	return verdict, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
