// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package llmguard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegisgate/platform/shared/logger"
	"aegisgate/platform/shared/types"
)

func classifierResponse(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(body)
}

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL},
		WithClientLogger(logger.NewNull()))
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestValidateParsesSafeVerdict(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, DefaultAPIVersion, r.Header.Get("anthropic-version"))

		w.Write([]byte(classifierResponse(
			`{"safe": true, "violated_gate": "", "risk": "safe", "reasoning": "benign", "injection_attempt": false}`)))
	})

	verdict, err := c.Validate(context.Background(), "classify this")
	require.NoError(t, err)

	assert.True(t, verdict.IsSafe)
	assert.Equal(t, types.RiskSafe, verdict.Risk)
	assert.Equal(t, "benign", verdict.Reasoning)
	assert.True(t, c.IsAvailable())
}

func TestValidateParsesUnsafeVerdict(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(classifierResponse(
			`{"safe": false, "violated_gate": "harm", "risk": "critical", "reasoning": "weapon instructions", "injection_attempt": false}`)))
	})

	verdict, err := c.Validate(context.Background(), "classify this")
	require.NoError(t, err)

	assert.False(t, verdict.IsSafe)
	assert.Equal(t, types.GateHarm, verdict.ViolatedGate)
	assert.Equal(t, types.RiskCritical, verdict.Risk)
}

func TestValidateVerdictWrappedInProse(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(classifierResponse(
			"Here is my assessment:\n" +
				`{"safe": false, "violated_gate": "scope", "risk": "high", "reasoning": "jailbreak", "injection_attempt": true}` +
				"\nLet me know if you need more.")))
	})

	verdict, err := c.Validate(context.Background(), "classify this")
	require.NoError(t, err)

	assert.Equal(t, types.GateScope, verdict.ViolatedGate)
	assert.True(t, verdict.InjectionAttemptDetected)
}

func TestValidateDefaultsRiskWhenOmitted(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(classifierResponse(`{"safe": false, "violated_gate": "harm", "reasoning": "bad"}`)))
	})

	verdict, err := c.Validate(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, types.RiskHigh, verdict.Risk)
}

func TestValidateRejectsUnknownGate(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(classifierResponse(`{"safe": false, "violated_gate": "vibes", "risk": "high"}`)))
	})

	_, err := c.Validate(context.Background(), "classify this")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown gate")
}

func TestValidateNoJSONInResponse(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(classifierResponse("I cannot classify that.")))
	})

	_, err := c.Validate(context.Background(), "classify this")
	assert.Error(t, err)
}

func TestValidateServerErrorFlipsAvailability(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.Validate(context.Background(), "classify this")
	require.Error(t, err)
	assert.False(t, c.IsAvailable())
}

func TestValidateClientErrorKeepsAvailability(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := c.Validate(context.Background(), "classify this")
	require.Error(t, err)
	assert.True(t, c.IsAvailable(), "4xx is a request problem, not an outage")
}

func TestValidateHonorsContextCancellation(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Validate(ctx, "classify this")
	assert.Error(t, err)
}
