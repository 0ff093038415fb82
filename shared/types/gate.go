// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package types

// Gate identifies one of the four orthogonal validation gates.
type Gate string

const (
	// GateTruth checks for deception and false-claim scaffolding.
	GateTruth Gate = "truth"

	// GateHarm checks whether executing the request would cause
	// physical, financial, or security damage.
	GateHarm Gate = "harm"

	// GateScope checks for boundary and authority manipulation such as
	// jailbreaks, role hijacks, and prompt-injection markup.
	GateScope Gate = "scope"

	// GatePurpose checks for legitimate beneficial intent.
	GatePurpose Gate = "purpose"
)

// GateOrder returns the fixed evaluation order: Truth, Harm, Scope, Purpose.
// The first gate to fail in this order becomes the violated gate.
func GateOrder() []Gate {
	return []Gate{GateTruth, GateHarm, GateScope, GatePurpose}
}

// IsValid reports whether the gate is one of the four known gates.
func (g Gate) IsValid() bool {
	switch g {
	case GateTruth, GateHarm, GateScope, GatePurpose:
		return true
	default:
		return false
	}
}

// String returns the string representation of the gate.
func (g Gate) String() string {
	return string(g)
}
