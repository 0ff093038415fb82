// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package thsp

import (
	"aegisgate/platform/guard/catalog"
	"aegisgate/platform/shared/types"
)

// GateResult is the outcome of evaluating one gate against a text.
type GateResult struct {
	Gate    types.Gate        `json:"gate"`
	Passed  bool              `json:"passed"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Result is the aggregated outcome of a THSP evaluation.
type Result struct {
	Truth   GateResult `json:"truth"`
	Harm    GateResult `json:"harm"`
	Scope   GateResult `json:"scope"`
	Purpose GateResult `json:"purpose"`

	// IsSafe is false when any gate failed or when any matched pattern
	// carries high or critical risk.
	IsSafe bool `json:"is_safe"`

	// ViolatedGate is the first gate to fail in the fixed order
	// Truth, Harm, Scope, Purpose. Empty when all gates pass.
	ViolatedGate types.Gate `json:"violated_gate,omitempty"`

	// Risk is the max over the risks of all matched patterns.
	Risk types.RiskLevel `json:"risk"`

	// InjectionAttemptDetected is set when the separate injection probe
	// fires, including when it demotes a passing Scope gate.
	InjectionAttemptDetected bool `json:"injection_attempt_detected"`

	// Matched carries every pattern that hit, in gate order, as
	// evidence for the caller.
	Matched []*catalog.DetectionPattern `json:"-"`
}

// GateResults returns the four gate results in the fixed order.
func (r *Result) GateResults() []GateResult {
	return []GateResult{r.Truth, r.Harm, r.Scope, r.Purpose}
}

// FailedGates returns the gates that failed, in the fixed order.
func (r *Result) FailedGates() []types.Gate {
	var failed []types.Gate
	for _, gr := range r.GateResults() {
		if !gr.Passed {
			failed = append(failed, gr.Gate)
		}
	}
	return failed
}

// gateResult returns a pointer to the result slot for the given gate.
func (r *Result) gateResult(g types.Gate) *GateResult {
	switch g {
	case types.GateTruth:
		return &r.Truth
	case types.GateHarm:
		return &r.Harm
	case types.GateScope:
		return &r.Scope
	default:
		return &r.Purpose
	}
}
