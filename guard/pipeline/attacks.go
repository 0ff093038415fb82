// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"aegisgate/platform/guard/catalog"
	"aegisgate/platform/shared/types"
)

// attackTypeFor maps a violation type to the attack taxonomy reported
// on input-mode verdicts.
func attackTypeFor(v catalog.ViolationType) string {
	switch v {
	case catalog.ViolationSQLInjection:
		return "injection"
	case catalog.ViolationPromptInjection:
		return "jailbreak"
	case catalog.ViolationHarmfulContent:
		return "harmful_request"
	case catalog.ViolationDestructiveOp, catalog.ViolationSchemaChange:
		return "destructive_operation"
	case catalog.ViolationCryptoRisk:
		return "crypto_abuse"
	case catalog.ViolationDeception:
		return "deception"
	case catalog.ViolationExcessiveAccess:
		return "data_overreach"
	case catalog.ViolationIllegitimatePurpose:
		return "suspicious_intent"
	default:
		return "unknown"
	}
}

// failureTypeFor maps a failed gate to the failure taxonomy reported on
// output-mode verdicts.
func failureTypeFor(g types.Gate) string {
	switch g {
	case types.GateTruth:
		return "fabrication"
	case types.GateHarm:
		return "harmful_output"
	case types.GateScope:
		return "boundary_violation"
	case types.GatePurpose:
		return "purpose_drift"
	default:
		return "unknown"
	}
}

// appendUnique appends s to list when not already present.
func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
