// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"strings"

	"aegisgate/platform/shared/types"
)

// ActionPlanOptions selects the extra physical-world checks applied on
// top of the text pipeline when validating an agent's action plan.
type ActionPlanOptions struct {
	CheckPhysicalSafety bool `json:"check_physical_safety"`
}

// physicalHazard pairs trigger tokens with the concern reported when
// one appears in a plan.
type physicalHazard struct {
	tokens  []string
	concern string
}

var physicalHazards = []physicalHazard{
	{
		tokens:  []string{"knife", "blade", "scalpel", "scissors", "saw"},
		concern: "Sharp object handling",
	},
	{
		tokens:  []string{"fire", "flame", "ignite", "burn", "stove"},
		concern: "Fire hazard",
	},
	{
		tokens:  []string{"poison", "toxic", "bleach", "ammonia", "pesticide"},
		concern: "Toxic substance handling",
	},
	{
		tokens:  []string{"gun", "firearm", "weapon", "explosive"},
		concern: "Weapon handling",
	},
	{
		tokens:  []string{"electrical", "high voltage", "live wire", "exposed wiring"},
		concern: "Electrical hazard",
	},
}

var irreversibleTokens = []string{
	"delete all", "format", "overwrite", "wipe", "factory reset",
}

var unsupervisedTokens = []string{
	"unattended", "leave it running", "walk away", "while away", "unsupervised",
}

// ValidateActionPlan validates a proposed plan of agent actions. The
// plan text runs through the normal pipeline; when physical safety
// checks are requested, hazard token scans add their own violations.
// An unsupervised-operation concern is only raised when a hazard is
// also present, since leaving a safe task running is not a risk.
func (v *LayeredValidator) ValidateActionPlan(ctx context.Context, plan string, opts ActionPlanOptions) *types.Verdict {
	start := v.clock.Now()

	verdict := v.validate(ctx, plan, types.ModeGeneric)

	if opts.CheckPhysicalSafety {
		applyPhysicalChecks(verdict, plan)
	}

	verdict.LatencyMS = float64(v.clock.Since(start).Microseconds()) / 1000
	v.finish(verdict, plan)
	return verdict
}

// applyPhysicalChecks scans the plan for physical hazards, irreversible
// operations, and unsupervised operation with a hazard present. Every
// hit promotes the verdict to at least high risk.
func applyPhysicalChecks(verdict *types.Verdict, plan string) {
	lower := strings.ToLower(plan)
	hazardFound := false

	for _, h := range physicalHazards {
		if containsAny(lower, h.tokens) {
			hazardFound = true
			verdict.AddViolation(h.concern, types.RiskHigh)
		}
	}

	if containsAny(lower, irreversibleTokens) {
		verdict.AddViolation("Irreversible operation in plan", types.RiskHigh)
	}

	if hazardFound && containsAny(lower, unsupervisedTokens) {
		verdict.AddViolation("Unsupervised operation with hazard present", types.RiskHigh)
	}

	if !verdict.Safe {
		verdict.Blocked = true
	}
}

func containsAny(text string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
