// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"aegisgate/platform/guard/audit"
	"aegisgate/platform/guard/catalog"
	"aegisgate/platform/guard/thsp"
	"aegisgate/platform/shared/clock"
	"aegisgate/platform/shared/logger"
	"aegisgate/platform/shared/types"
)

const subsystem = "pipeline"

// LayeredValidator orchestrates the heuristic and semantic layers and
// emits the unified Verdict. A validator has no lifecycle beyond
// construction and is safe for concurrent use provided its
// SemanticClient is.
type LayeredValidator struct {
	name     string
	cfg      Config
	engine   *thsp.Engine
	semantic SemanticClient
	clock    clock.Clock
	log      *logger.Logger
	metrics  *audit.Metrics
	trail    *audit.Trail
	stats    Stats
}

// Option configures a LayeredValidator at construction.
type Option func(*LayeredValidator)

// WithName labels the validator in logs and metrics.
func WithName(name string) Option {
	return func(v *LayeredValidator) { v.name = name }
}

// WithEngine sets a custom gate engine (default: engine over the
// process catalog).
func WithEngine(e *thsp.Engine) Option {
	return func(v *LayeredValidator) { v.engine = e }
}

// WithSemanticClient attaches the semantic layer capability.
func WithSemanticClient(c SemanticClient) Option {
	return func(v *LayeredValidator) { v.semantic = c }
}

// WithClock injects the clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(v *LayeredValidator) { v.clock = c }
}

// WithLogger injects the structured logger.
func WithLogger(l *logger.Logger) Option {
	return func(v *LayeredValidator) { v.log = l }
}

// WithMetrics injects the shared Prometheus collectors.
func WithMetrics(m *audit.Metrics) Option {
	return func(v *LayeredValidator) { v.metrics = m }
}

// WithTrail attaches a bounded audit trail.
func WithTrail(t *audit.Trail) Option {
	return func(v *LayeredValidator) { v.trail = t }
}

// NewLayeredValidator validates the config and builds a validator.
// When the config chooses fail-open with a semantic layer enabled, a
// warning is logged and the fail_open_enabled metric is set so
// deployments can detect the less-safe policy.
func NewLayeredValidator(cfg Config, opts ...Option) (*LayeredValidator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &LayeredValidator{
		name:    "default",
		cfg:     cfg,
		clock:   clock.Real(),
		log:     logger.New("pipeline"),
		metrics: audit.NopMetrics(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.engine == nil {
		v.engine = thsp.NewEngine(catalog.Default())
	}

	if cfg.UseSemantic && !cfg.FailClosed {
		v.log.Warn("validator running fail-open: semantic errors will allow", map[string]interface{}{
			"validator": v.name,
		})
		v.metrics.FailOpenEnabled.WithLabelValues(v.name).Set(1)
	} else {
		v.metrics.FailOpenEnabled.WithLabelValues(v.name).Set(0)
	}

	return v, nil
}

// Stats returns a snapshot of the validator's counters.
func (v *LayeredValidator) Stats() StatsSnapshot {
	return v.stats.Snapshot()
}

// ResetStats zeroes the validator's counters.
func (v *LayeredValidator) ResetStats() {
	v.stats.Reset()
}

// Validate runs the two-layer pipeline on text in the given mode.
func (v *LayeredValidator) Validate(ctx context.Context, text string, mode types.Mode) *types.Verdict {
	start := v.clock.Now()

	verdict := v.validate(ctx, text, mode)

	verdict.LatencyMS = float64(v.clock.Since(start).Microseconds()) / 1000
	v.finish(verdict, text)
	return verdict
}

// ValidateInput validates content flowing into an agent and populates
// the attack taxonomy on deny.
func (v *LayeredValidator) ValidateInput(ctx context.Context, text string) *types.Verdict {
	return v.Validate(ctx, text, types.ModeInput)
}

// ValidateOutput validates agent-produced content. The originating
// input may be passed as context for audit correlation; it does not
// influence the decision.
func (v *LayeredValidator) ValidateOutput(ctx context.Context, text, inputContext string) *types.Verdict {
	verdict := v.Validate(ctx, text, types.ModeOutput)
	verdict.InputContext = inputContext
	return verdict
}

func (v *LayeredValidator) validate(ctx context.Context, text string, mode types.Mode) *types.Verdict {
	if text == "" {
		return types.SafeVerdict(mode, types.LayerNone)
	}

	if len(text) > v.cfg.MaxTextSizeBytes {
		verdict := &types.Verdict{
			Layer:   types.LayerHeuristic,
			Mode:    mode,
			Risk:    types.RiskHigh,
			Blocked: true,
		}
		verdict.AddViolation(
			fmt.Sprintf("content too large: %d bytes exceeds limit of %d", len(text), v.cfg.MaxTextSizeBytes),
			types.RiskHigh,
		)
		return verdict
	}

	verdict := types.SafeVerdict(mode, types.LayerNone)
	heuristicPassed := true

	if v.cfg.UseHeuristic {
		gateResult := v.engine.Evaluate(text)
		verdict = v.applyHeuristic(gateResult, mode)
		heuristicPassed = gateResult.IsSafe

		if !heuristicPassed {
			v.stats.heuristicBlocks.Add(1)
			if v.cfg.SkipSemanticIfHeuristicBlocks || !v.semanticEnabled() {
				return verdict
			}
		} else if !v.semanticEnabled() {
			return verdict
		}
	}

	if v.semanticEnabled() {
		v.runSemantic(ctx, text, verdict, heuristicPassed)
	}
	return verdict
}

func (v *LayeredValidator) semanticEnabled() bool {
	return v.cfg.UseSemantic && v.semantic != nil
}

// applyHeuristic converts a THSP result into a verdict for the mode.
func (v *LayeredValidator) applyHeuristic(res *thsp.Result, mode types.Mode) *types.Verdict {
	verdict := &types.Verdict{
		Safe:  res.IsSafe,
		Layer: types.LayerHeuristic,
		Mode:  mode,
		Risk:  res.Risk,
	}
	if res.IsSafe {
		return verdict
	}

	verdict.Blocked = true
	verdict.GatesFailed = res.FailedGates()
	for _, p := range res.Matched {
		verdict.Violations = appendUnique(verdict.Violations, p.Description)
		switch mode {
		case types.ModeInput:
			verdict.AttackTypes = appendUnique(verdict.AttackTypes, attackTypeFor(p.Type))
		}
	}
	if res.InjectionAttemptDetected && mode == types.ModeInput {
		verdict.AttackTypes = appendUnique(verdict.AttackTypes, "jailbreak")
	}
	if len(verdict.Violations) == 0 {
		// Scope was demoted by the injection probe without a catalog hit.
		verdict.AddViolation("Injection probe detected instruction override", types.RiskHigh)
	}
	if mode == types.ModeOutput {
		for _, g := range verdict.GatesFailed {
			verdict.FailureTypes = appendUnique(verdict.FailureTypes, failureTypeFor(g))
		}
	}
	return verdict
}

// runSemantic executes the semantic layer under the configured timeout
// and merges the outcome into verdict in place.
func (v *LayeredValidator) runSemantic(ctx context.Context, text string, verdict *types.Verdict, heuristicPassed bool) {
	if !v.semantic.IsAvailable() {
		v.handleSemanticFailure(verdict, heuristicPassed, types.ErrProviderUnavailable)
		return
	}

	prompt, injectionDetected := sanitizeForSemantic(text, v.cfg.MaxSemanticBytes)
	_ = injectionDetected // recorded by the heuristic layer; kept for audit parity

	callCtx, cancel := context.WithTimeout(ctx, v.cfg.ValidationTimeout)
	defer cancel()

	sv, err := v.semantic.Validate(callCtx, prompt)
	if err != nil {
		v.handleSemanticFailure(verdict, heuristicPassed, err)
		return
	}

	if sv.IsSafe {
		if heuristicPassed {
			verdict.Safe = true
			verdict.Blocked = false
		}
		if v.cfg.UseHeuristic {
			verdict.Layer = types.LayerBoth
		} else {
			verdict.Layer = types.LayerSemantic
		}
		if sv.Reasoning != "" {
			verdict.Reasoning = sv.Reasoning
		}
		return
	}

	// Semantic deny.
	v.stats.semanticBlocks.Add(1)
	verdict.Safe = false
	verdict.Blocked = true
	verdict.Risk = types.MaxRisk(verdict.Risk, sv.Risk)
	verdict.Reasoning = sv.Reasoning
	if v.cfg.UseHeuristic {
		verdict.Layer = types.LayerBoth
	} else {
		verdict.Layer = types.LayerSemantic
	}
	if sv.ViolatedGate != "" && !verdict.HasGateFailed(sv.ViolatedGate) {
		verdict.GatesFailed = append(verdict.GatesFailed, sv.ViolatedGate)
	}
	cause := "semantic layer flagged content"
	if sv.Reasoning != "" {
		cause = "semantic: " + sv.Reasoning
	}
	verdict.Violations = appendUnique(verdict.Violations, cause)
	if verdict.Mode == types.ModeOutput {
		for _, g := range verdict.GatesFailed {
			verdict.FailureTypes = appendUnique(verdict.FailureTypes, failureTypeFor(g))
		}
	}
}

// handleSemanticFailure applies the fail-open/fail-closed policy to a
// semantic timeout or error.
func (v *LayeredValidator) handleSemanticFailure(verdict *types.Verdict, heuristicPassed bool, err error) {
	timedOut := errors.Is(err, context.DeadlineExceeded)
	if timedOut {
		v.stats.timeouts.Add(1)
		v.metrics.TimeoutsTotal.Inc()
	} else {
		v.stats.errors.Add(1)
		v.metrics.ErrorsTotal.Inc()
	}

	if v.cfg.FailClosed {
		verdict.Safe = false
		verdict.Blocked = true
		verdict.Layer = types.LayerHeuristic
		if timedOut {
			verdict.AddViolation("semantic validation timeout (fail-closed)", types.RiskHigh)
		} else {
			verdict.AddViolation("semantic validation error (fail-closed)", types.RiskHigh)
			verdict.Error = err.Error()
		}
		return
	}

	// Fail-open: keep the heuristic verdict.
	verdict.Layer = types.LayerHeuristic
	v.log.Warn("semantic layer failed, continuing with heuristic verdict", map[string]interface{}{
		"validator": v.name,
		"error":     err.Error(),
		"timeout":   timedOut,
	})
	_ = heuristicPassed
}

// finish records stats, metrics, and the audit entry for a completed
// verdict.
func (v *LayeredValidator) finish(verdict *types.Verdict, text string) {
	v.stats.recordCall(verdict.LatencyMS)
	if verdict.Safe {
		v.stats.allowed.Add(1)
	}

	decision := "allow"
	if !verdict.Safe {
		decision = "deny"
	}
	v.metrics.ValidationsTotal.WithLabelValues(subsystem, decision).Inc()
	v.metrics.LatencyMS.WithLabelValues(subsystem).Observe(verdict.LatencyMS)
	if !verdict.Safe {
		v.metrics.BlocksTotal.WithLabelValues(subsystem, string(verdict.Layer)).Inc()
	}

	if !v.cfg.LogValidations {
		return
	}
	if v.trail != nil {
		entry := audit.NewEntry(subsystem, decision, verdict.Risk, text)
		entry.Concerns = verdict.Violations
		entry.Identifiers = map[string]string{
			"mode":  string(verdict.Mode),
			"layer": string(verdict.Layer),
		}
		v.trail.Append(entry)
	}
	v.log.Debug("validation complete", map[string]interface{}{
		"validator": v.name,
		"mode":      string(verdict.Mode),
		"safe":      verdict.Safe,
		"risk":      string(verdict.Risk),
		"layer":     string(verdict.Layer),
	})
}
