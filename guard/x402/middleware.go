// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package x402

import (
	"context"
	"strings"
	"sync"

	"aegisgate/platform/guard/audit"
	"aegisgate/platform/guard/txguard"
	"aegisgate/platform/shared/logger"
	"aegisgate/platform/shared/types"
)

// PaymentDecision is the aggregate outcome of the four payment gates.
type PaymentDecision string

const (
	DecisionApprove             PaymentDecision = "approve"
	DecisionRequireConfirmation PaymentDecision = "require_confirmation"
	DecisionReject              PaymentDecision = "reject"
	DecisionBlock               PaymentDecision = "block"
)

// PaymentVerdict is the result of evaluating a payment challenge.
type PaymentVerdict struct {
	Decision PaymentDecision `json:"decision"`
	Risk     types.RiskLevel `json:"risk"`
	Gates    []GateCheck     `json:"gates"`
	Reasons  []string        `json:"reasons,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Approved reports whether the payment may proceed, with or without
// confirmation.
func (v *PaymentVerdict) Approved() bool {
	return v.Decision == DecisionApprove || v.Decision == DecisionRequireConfirmation
}

// PolicyConfig configures the x402 payment policy.
type PolicyConfig struct {
	Limits                 txguard.SpendingLimits `yaml:"limits" json:"limits"`
	RequireHTTPS           bool                   `yaml:"require_https" json:"require_https"`
	AllowUnknownEndpoints  bool                   `yaml:"allow_unknown_endpoints" json:"allow_unknown_endpoints"`
	AllowUnknownRecipients bool                   `yaml:"allow_unknown_recipients" json:"allow_unknown_recipients"`
	BlockedRecipients      map[string]bool        `yaml:"blocked_recipients,omitempty" json:"blocked_recipients,omitempty"`
	BlockedEndpoints       map[string]bool        `yaml:"blocked_endpoints,omitempty" json:"blocked_endpoints,omitempty"`
}

// DefaultPolicyConfig returns the default payment policy: HTTPS
// required, unknown counterparties allowed with a warning.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Limits:                 txguard.DefaultSpendingLimits(),
		RequireHTTPS:           true,
		AllowUnknownEndpoints:  true,
		AllowUnknownRecipients: true,
		BlockedRecipients:      make(map[string]bool),
		BlockedEndpoints:       make(map[string]bool),
	}
}

// Policy evaluates x402 payment challenges before an agent pays them
// and records the completed ones after. Safe for concurrent use.
type Policy struct {
	cfg     PolicyConfig
	tracker txguard.Store
	log     *logger.Logger
	trail   *audit.Trail

	mu             sync.Mutex
	seenEndpoints  map[string]bool
	seenRecipients map[string]bool
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithPolicyTracker injects a shared spending store.
func WithPolicyTracker(t txguard.Store) PolicyOption {
	return func(p *Policy) { p.tracker = t }
}

// WithPolicyLogger injects the structured logger.
func WithPolicyLogger(l *logger.Logger) PolicyOption {
	return func(p *Policy) { p.log = l }
}

// WithPolicyTrail attaches a bounded audit trail.
func WithPolicyTrail(t *audit.Trail) PolicyOption {
	return func(p *Policy) { p.trail = t }
}

// NewPolicy builds a payment policy.
func NewPolicy(cfg PolicyConfig, opts ...PolicyOption) *Policy {
	p := &Policy{
		cfg:            cfg,
		log:            logger.New("x402"),
		seenEndpoints:  make(map[string]bool),
		seenRecipients: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracker == nil {
		p.tracker = txguard.NewSpendingTracker()
	}
	return p
}

func (p *Policy) seenEndpoint(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seenEndpoints[key]
}

func (p *Policy) seenRecipient(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seenRecipients[key]
}

// Before evaluates a payment challenge against the four gates in fixed
// order and aggregates the outcome.
func (p *Policy) Before(ctx context.Context, req PaymentRequest, wallet string) (*PaymentVerdict, error) {
	sum, err := p.tracker.Summary(ctx, wallet)
	if err != nil {
		return nil, err
	}

	gates := []GateCheck{
		p.checkTruth(req),
		p.checkHarm(req),
		p.checkScope(req, sum),
		p.checkPurpose(req),
	}

	verdict := aggregate(gates, req.AmountUSD(), p.cfg.Limits)
	p.audit(req, wallet, verdict)
	return verdict, nil
}

// aggregate folds the four gate checks into a decision:
// Harm failure blocks; two or more failed gates is critical; one is
// high; warnings or a large amount require confirmation.
func aggregate(gates []GateCheck, amount float64, limits txguard.SpendingLimits) *PaymentVerdict {
	verdict := &PaymentVerdict{Gates: gates}

	failed := 0
	harmFailed := false
	for _, g := range gates {
		if !g.Passed {
			failed++
			if g.Gate == types.GateHarm {
				harmFailed = true
			}
			verdict.Reasons = append(verdict.Reasons, g.Failures...)
		}
		verdict.Warnings = append(verdict.Warnings, g.Warnings...)
	}

	switch {
	case harmFailed:
		verdict.Decision = DecisionBlock
		verdict.Risk = types.RiskCritical
	case failed >= 2:
		verdict.Decision = DecisionReject
		verdict.Risk = types.RiskCritical
	case failed == 1:
		verdict.Decision = DecisionReject
		verdict.Risk = types.RiskHigh
	case len(verdict.Warnings) > 0 || limits.RequiresConfirmation(amount):
		verdict.Decision = DecisionRequireConfirmation
		verdict.Risk = types.RiskMedium
	default:
		verdict.Decision = DecisionApprove
		verdict.Risk = types.RiskSafe
	}
	return verdict
}

// BeforeStrict is Before with deny outcomes raised as typed errors for
// callers that prefer control flow over verdict inspection.
func (p *Policy) BeforeStrict(ctx context.Context, req PaymentRequest, wallet string) (*PaymentVerdict, error) {
	verdict, err := p.Before(ctx, req, wallet)
	if err != nil {
		return nil, err
	}
	switch verdict.Decision {
	case DecisionBlock:
		return verdict, &types.PaymentBlockedError{Reason: strings.Join(verdict.Reasons, "; ")}
	case DecisionReject:
		return verdict, &types.PaymentRejectedError{Reason: strings.Join(verdict.Reasons, "; "), Risk: verdict.Risk}
	case DecisionRequireConfirmation:
		return verdict, &types.ConfirmationRequiredError{Reason: strings.Join(verdict.Warnings, "; ")}
	}
	return verdict, nil
}

// After records the outcome of an attempted payment. Only successful
// payments count against spending windows; every attempt is audited.
func (p *Policy) After(ctx context.Context, req PaymentRequest, wallet string, success bool, txHash, errMsg string) error {
	if success {
		endpoint := endpointKey(req.ResourceURL)
		if err := p.tracker.Record(ctx, wallet, req.AmountUSD(), endpoint); err != nil {
			return err
		}
		p.mu.Lock()
		p.seenEndpoints[endpoint] = true
		p.seenRecipients[strings.ToLower(req.PayTo)] = true
		p.mu.Unlock()
	}

	if p.trail != nil {
		decision := "payment_failed"
		if success {
			decision = "payment_settled"
		}
		entry := audit.NewEntry("x402", decision, types.RiskSafe, req.ResourceURL)
		entry.Identifiers = map[string]string{
			"wallet":  strings.ToLower(wallet),
			"network": req.Network,
			"tx_hash": txHash,
		}
		if errMsg != "" {
			entry.Concerns = []string{errMsg}
		}
		p.trail.Append(entry)
	}
	return nil
}

func (p *Policy) audit(req PaymentRequest, wallet string, verdict *PaymentVerdict) {
	if p.trail != nil {
		entry := audit.NewEntry("x402", string(verdict.Decision), verdict.Risk, req.ResourceURL)
		entry.Concerns = verdict.Reasons
		entry.Identifiers = map[string]string{
			"wallet":  strings.ToLower(wallet),
			"network": req.Network,
		}
		p.trail.Append(entry)
	}
	p.log.Debug("payment gate decision", map[string]interface{}{
		"decision": string(verdict.Decision),
		"risk":     string(verdict.Risk),
		"network":  req.Network,
	})
}
