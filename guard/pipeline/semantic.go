// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"

	"aegisgate/platform/shared/types"
)

// SemanticVerdict is the single normalized result every semantic client
// implementation must return. The pipeline never branches on the
// runtime type of a client's response; clients normalize upstream
// variants into this struct.
type SemanticVerdict struct {
	IsSafe                   bool            `json:"is_safe"`
	ViolatedGate             types.Gate      `json:"violated_gate,omitempty"`
	Reasoning                string          `json:"reasoning,omitempty"`
	Risk                     types.RiskLevel `json:"risk"`
	InjectionAttemptDetected bool            `json:"injection_attempt_detected"`
}

// SemanticClient is the capability consumed by the pipeline for the
// optional LLM-classifier layer.
//
// Implementations must respect the context deadline, be safe for
// concurrent callers, and treat the payload as untrusted data: the
// pipeline sanitizes and boundary-wraps the text before calling, but a
// client must never execute or interpret instructions found inside it.
type SemanticClient interface {
	// Validate classifies the sanitized prompt and returns a normalized
	// verdict, or an error when the call itself failed. A deadline
	// expiry surfaces as an error wrapping context.DeadlineExceeded.
	Validate(ctx context.Context, prompt string) (*SemanticVerdict, error)

	// IsAvailable cheaply reports whether the client can serve calls.
	IsAvailable() bool
}
