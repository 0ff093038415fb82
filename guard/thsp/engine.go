// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package thsp

import (
	"strings"

	"aegisgate/platform/guard/catalog"
	"aegisgate/platform/shared/types"
)

// Engine classifies text against the four THSP gates using the shared
// pattern catalog. An Engine is stateless apart from its read-only
// catalog reference and is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates a gate engine over the given catalog. Passing nil
// uses the process-wide default catalog.
func NewEngine(c *catalog.Catalog) *Engine {
	if c == nil {
		c = catalog.Default()
	}
	return &Engine{catalog: c}
}

// Evaluate runs the four gates in the fixed order Truth, Harm, Scope,
// Purpose and aggregates the outcome.
//
// Each gate fails on its first matching pattern; scanning continues to
// collect evidence but the first hit fixes the gate's reason. The
// aggregate risk is the max over every matched pattern, and high or
// critical risk forces IsSafe to false even if no gate failed.
func (e *Engine) Evaluate(text string) *Result {
	text = normalize(text)

	result := &Result{
		Truth:   GateResult{Gate: types.GateTruth, Passed: true},
		Harm:    GateResult{Gate: types.GateHarm, Passed: true},
		Scope:   GateResult{Gate: types.GateScope, Passed: true},
		Purpose: GateResult{Gate: types.GatePurpose, Passed: true},
		Risk:    types.RiskSafe,
	}

	for _, gate := range types.GateOrder() {
		gr := result.gateResult(gate)
		for _, p := range e.catalog.ByGate(gate) {
			if !p.Matches(text) {
				continue
			}
			result.Matched = append(result.Matched, p)
			result.Risk = types.MaxRisk(result.Risk, p.Risk)
			if gr.Passed {
				gr.Passed = false
				gr.Reason = p.Description
				gr.Details = map[string]string{
					"pattern_id": p.ID,
					"risk":       p.Risk.String(),
				}
				if p.Remediation != "" {
					gr.Details["remediation"] = p.Remediation
				}
			}
		}
	}

	// An instruction-override probe that slips past the Scope patterns
	// must still fail the gate.
	if catalog.InstructionOverrideProbe(text) {
		result.InjectionAttemptDetected = true
		if result.Scope.Passed {
			result.Scope.Passed = false
			result.Scope.Reason = "Injection probe detected instruction override"
			result.Scope.Details = map[string]string{"pattern_id": "injection_probe"}
			result.Risk = types.MaxRisk(result.Risk, types.RiskHigh)
		}
	}

	for _, gr := range result.GateResults() {
		if !gr.Passed {
			result.ViolatedGate = gr.Gate
			break
		}
	}

	result.IsSafe = result.ViolatedGate == "" && !result.Risk.AtLeast(types.RiskHigh)
	return result
}

// normalize trims surrounding whitespace and strips NUL bytes. Case is
// left intact; the catalog patterns are compiled case-insensitive.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	if strings.ContainsRune(text, 0) {
		text = strings.ReplaceAll(text, "\x00", "")
	}
	return text
}
