// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package types

// Layer identifies which validation layer produced a verdict.
type Layer string

const (
	// LayerNone means no layer ran (empty input short-circuit).
	LayerNone Layer = "none"

	// LayerHeuristic means only the pattern-catalog gate engine decided.
	LayerHeuristic Layer = "heuristic"

	// LayerSemantic means only the semantic classifier decided.
	LayerSemantic Layer = "semantic"

	// LayerBoth means both layers ran and agreed on the decision.
	LayerBoth Layer = "both"
)

// Mode identifies what kind of content a verdict applies to.
type Mode string

const (
	// ModeGeneric validates arbitrary text.
	ModeGeneric Mode = "generic"

	// ModeInput validates content flowing into an agent or model.
	ModeInput Mode = "input"

	// ModeOutput validates content produced by an agent or model.
	ModeOutput Mode = "output"
)

// Verdict is the unified result returned by every validation path.
// A verdict is immutable once returned to a caller.
//
// Invariants:
//   - Safe == (len(Violations) == 0 && Error == "")
//   - Risk == RiskCritical implies Safe == false
//   - Mode == ModeInput implies FailureTypes is empty
//   - Mode == ModeOutput implies AttackTypes is empty
type Verdict struct {
	Safe         bool      `json:"safe"`
	Layer        Layer     `json:"layer"`
	Mode         Mode      `json:"mode"`
	Risk         RiskLevel `json:"risk"`
	Violations   []string  `json:"violations,omitempty"`
	AttackTypes  []string  `json:"attack_types,omitempty"`
	FailureTypes []string  `json:"failure_types,omitempty"`
	GatesFailed  []Gate    `json:"gates_failed,omitempty"`
	Reasoning    string    `json:"reasoning,omitempty"`
	Blocked      bool      `json:"blocked"`
	InputContext string    `json:"input_context,omitempty"`
	Error        string    `json:"error,omitempty"`
	LatencyMS    float64   `json:"latency_ms"`
}

// SafeVerdict returns an allow verdict for the given mode and layer.
func SafeVerdict(mode Mode, layer Layer) *Verdict {
	return &Verdict{
		Safe:  true,
		Layer: layer,
		Mode:  mode,
		Risk:  RiskSafe,
	}
}

// AddViolation appends a violation cause and flips the verdict to deny.
// The risk is promoted to at least the given level.
func (v *Verdict) AddViolation(cause string, risk RiskLevel) {
	v.Safe = false
	v.Violations = append(v.Violations, cause)
	v.Risk = MaxRisk(v.Risk, risk)
}

// HasGateFailed reports whether the named gate appears in GatesFailed.
func (v *Verdict) HasGateFailed(gate Gate) bool {
	for _, g := range v.GatesFailed {
		if g == gate {
			return true
		}
	}
	return false
}
