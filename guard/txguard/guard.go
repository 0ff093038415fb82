// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"aegisgate/platform/guard/audit"
	"aegisgate/platform/shared/clock"
	"aegisgate/platform/shared/logger"
	"aegisgate/platform/shared/types"
)

// Decision is the outcome of a transaction validation.
type Decision string

const (
	// DecisionApprove allows the transaction without friction.
	DecisionApprove Decision = "approve"

	// DecisionApproveWithConfirmation allows after an explicit user
	// confirmation.
	DecisionApproveWithConfirmation Decision = "approve_with_confirmation"

	// DecisionReject denies but the caller may retry after conditions
	// change (limits roll over, purpose supplied).
	DecisionReject Decision = "reject"

	// DecisionBlock denies permanently for this request.
	DecisionBlock Decision = "block"
)

// Action risk classes.
var (
	safeActions = map[string]bool{
		"transfer": true, "swap": true, "wrap": true, "unwrap": true,
	}
	highRiskActions = map[string]bool{
		"approve": true, "bridge": true, "delegate": true,
		"add_liquidity": true, "remove_liquidity": true, "borrow": true,
	}
	blockedActions = map[string]bool{
		"selfdestruct": true, "delegatecall": true,
	}
)

// TxRequest describes a proposed on-chain action.
type TxRequest struct {
	Chain          string  `json:"chain"`
	Action         string  `json:"action"`
	From           string  `json:"from"`
	To             string  `json:"to,omitempty"`
	Amount         float64 `json:"amount"`
	Token          string  `json:"token,omitempty"`
	ApprovalAmount string  `json:"approval_amount,omitempty"`
	Purpose        string  `json:"purpose,omitempty"`
}

// TxVerdict is the result of a transaction validation.
type TxVerdict struct {
	Decision Decision        `json:"decision"`
	Risk     types.RiskLevel `json:"risk"`
	Reason   string          `json:"reason,omitempty"`
	Concerns []string        `json:"concerns,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Approved reports whether the transaction may proceed, with or
// without confirmation.
func (v *TxVerdict) Approved() bool {
	return v.Decision == DecisionApprove || v.Decision == DecisionApproveWithConfirmation
}

// UserContext carries the user profile handed to a fiduciary
// validator.
type UserContext struct {
	RiskTolerance   string   `json:"risk_tolerance,omitempty"`
	Goals           []string `json:"goals,omitempty"`
	Constraints     []string `json:"constraints,omitempty"`
	SensitiveTopics []string `json:"sensitive_topics,omitempty"`
}

// FiduciaryViolation is one finding from a fiduciary validator.
type FiduciaryViolation struct {
	Rule     string `json:"rule"`
	Detail   string `json:"detail"`
	Blocking bool   `json:"blocking"`
}

// FiduciaryValidator is an optional overlay that checks a proposed
// action against the user's stated interests.
type FiduciaryValidator interface {
	Check(ctx context.Context, description string, user UserContext, proposedOutcome string) ([]FiduciaryViolation, error)
}

// GuardConfig configures a TransactionGuard.
type GuardConfig struct {
	BlockUnlimitedApprovals bool `yaml:"block_unlimited_approvals" json:"block_unlimited_approvals"`

	// RequireChecksums makes an invalid EIP-55 checksum a Block instead
	// of a warning. Absent checksums stay warnings either way.
	RequireChecksums bool `yaml:"require_checksums" json:"require_checksums"`

	// RequirePurposeForHighRisk adds a concern and promotes risk when a
	// high-risk action has no stated purpose.
	RequirePurposeForHighRisk bool `yaml:"require_purpose_for_high_risk" json:"require_purpose_for_high_risk"`

	// RequireConfirmationForHighValue asks for confirmation on any
	// high-risk verdict even below the amount threshold.
	RequireConfirmationForHighValue bool `yaml:"require_confirmation_for_high_value" json:"require_confirmation_for_high_value"`

	// StrictFiduciary makes every fiduciary violation blocking.
	StrictFiduciary bool `yaml:"strict_fiduciary" json:"strict_fiduciary"`

	// AllowedActions, when non-empty, blocks any action outside it.
	AllowedActions map[string]bool `yaml:"allowed_actions,omitempty" json:"allowed_actions,omitempty"`
}

// DefaultGuardConfig returns the default guard configuration.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		BlockUnlimitedApprovals:         true,
		RequirePurposeForHighRisk:       true,
		RequireConfirmationForHighValue: true,
	}
}

// GuardStats is a snapshot of a guard's decision counters.
type GuardStats struct {
	Total        int64   `json:"total"`
	Approved     int64   `json:"approved"`
	Rejected     int64   `json:"rejected"`
	Blocked      int64   `json:"blocked"`
	ApprovalRate float64 `json:"approval_rate"`
}

// TransactionGuard enforces chain policies and spending limits over
// proposed transactions. Safe for concurrent use.
type TransactionGuard struct {
	cfg       GuardConfig
	policies  map[string]ChainPolicy
	tracker   Store
	fiduciary FiduciaryValidator
	user      *UserContext
	clock     clock.Clock
	log       *logger.Logger
	trail     *audit.Trail
	metrics   *audit.Metrics

	mu       sync.Mutex
	total    int64
	approved int64
	rejected int64
	blocked  int64
}

// GuardOption configures a TransactionGuard.
type GuardOption func(*TransactionGuard)

// WithChainPolicy registers or overrides the policy for a chain.
func WithChainPolicy(p ChainPolicy) GuardOption {
	return func(g *TransactionGuard) { g.policies[p.ChainID] = p }
}

// WithTracker injects a shared spending store. The in-memory tracker
// is the default; a Redis store shares windows across replicas.
func WithTracker(t Store) GuardOption {
	return func(g *TransactionGuard) { g.tracker = t }
}

// WithFiduciary attaches the fiduciary overlay for the given user.
func WithFiduciary(f FiduciaryValidator, user UserContext) GuardOption {
	return func(g *TransactionGuard) {
		g.fiduciary = f
		g.user = &user
	}
}

// WithGuardClock injects the clock, mainly for tests.
func WithGuardClock(c clock.Clock) GuardOption {
	return func(g *TransactionGuard) { g.clock = c }
}

// WithGuardLogger injects the structured logger.
func WithGuardLogger(l *logger.Logger) GuardOption {
	return func(g *TransactionGuard) { g.log = l }
}

// WithGuardTrail attaches a bounded audit trail.
func WithGuardTrail(t *audit.Trail) GuardOption {
	return func(g *TransactionGuard) { g.trail = t }
}

// WithGuardMetrics injects the shared Prometheus collectors.
func WithGuardMetrics(m *audit.Metrics) GuardOption {
	return func(g *TransactionGuard) { g.metrics = m }
}

// NewTransactionGuard builds a guard with the given config.
func NewTransactionGuard(cfg GuardConfig, opts ...GuardOption) *TransactionGuard {
	g := &TransactionGuard{
		cfg:      cfg,
		policies: make(map[string]ChainPolicy),
		clock:    clock.Real(),
		log:      logger.New("txguard"),
		metrics:  audit.NopMetrics(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.tracker == nil {
		g.tracker = NewSpendingTracker(WithTrackerClock(g.clock))
	}
	return g
}

// policy returns the chain's policy, materializing the default when
// the chain has not been configured.
func (g *TransactionGuard) policy(chain string) ChainPolicy {
	if p, ok := g.policies[chain]; ok {
		return p
	}
	return DefaultChainPolicy(chain)
}

// classifyAction returns the risk class name for an action.
func classifyAction(action string) string {
	action = strings.ToLower(action)
	switch {
	case blockedActions[action]:
		return "blocked"
	case highRiskActions[action]:
		return "high-risk"
	case safeActions[action]:
		return "safe"
	default:
		return "other"
	}
}

// Validate decides approve, approve-with-confirmation, reject, or
// block for a proposed transaction.
func (g *TransactionGuard) Validate(ctx context.Context, req TxRequest) (*TxVerdict, error) {
	verdict := g.validate(ctx, req)
	g.recordDecision(req, verdict)
	return verdict, nil
}

func (g *TransactionGuard) validate(ctx context.Context, req TxRequest) *TxVerdict {
	verdict := &TxVerdict{Decision: DecisionApprove, Risk: types.RiskLow}
	policy := g.policy(req.Chain)
	action := strings.ToLower(req.Action)

	// 1. Address validity.
	if block := g.checkAddresses(req, verdict); block != "" {
		return blockVerdict(block)
	}

	// 2. Recipient blocklist.
	if req.To != "" && policy.IsBlockedContract(req.To) {
		return blockVerdict("recipient blocked")
	}
	if req.To != "" && !policy.IsAllowedContract(req.To) {
		return blockVerdict("recipient not on chain allowlist")
	}

	// 3. Action allowlist.
	actionClass := classifyAction(action)
	if actionClass == "blocked" {
		return blockVerdict(fmt.Sprintf("action %q is blocked", action))
	}
	if len(g.cfg.AllowedActions) > 0 && !g.cfg.AllowedActions[action] {
		return blockVerdict(fmt.Sprintf("action %q is not allowlisted", action))
	}

	// 4. Spending limits.
	if req.Amount > 0 {
		if block := g.checkSpending(ctx, req, policy.Limits, verdict); block != "" {
			return blockVerdict(block)
		}
	}

	// 5. Unlimited approval.
	if action == "approve" && IsUnlimitedApproval(req.ApprovalAmount) {
		if g.cfg.BlockUnlimitedApprovals {
			return blockVerdict("unlimited approval requested")
		}
		verdict.Concerns = append(verdict.Concerns, "unlimited approval requested")
		verdict.Risk = types.MaxRisk(verdict.Risk, types.RiskHigh)
	}

	// 6. Purpose requirement.
	if g.cfg.RequirePurposeForHighRisk && actionClass == "high-risk" && strings.TrimSpace(req.Purpose) == "" {
		verdict.Concerns = append(verdict.Concerns, "no stated purpose for high-risk action")
		verdict.Risk = types.MaxRisk(verdict.Risk, types.RiskMedium)
	}

	// 7. Fiduciary overlay.
	if g.fiduciary != nil {
		g.applyFiduciary(ctx, req, verdict)
	}

	// 8. Risk level.
	verdict.Risk = types.MaxRisk(verdict.Risk, actionRisk(actionClass))
	verdict.Risk = types.MaxRisk(verdict.Risk, amountRisk(req.Amount))

	// 9. Decision.
	g.decide(req, policy.Limits, verdict)
	return verdict
}

func blockVerdict(reason string) *TxVerdict {
	return &TxVerdict{
		Decision: DecisionBlock,
		Risk:     types.RiskCritical,
		Reason:   reason,
		Concerns: []string{reason},
	}
}

// checkAddresses validates address syntax and checksums. A non-empty
// return is a block reason.
func (g *TransactionGuard) checkAddresses(req TxRequest, verdict *TxVerdict) string {
	if !IsHexAddress(req.From) {
		return fmt.Sprintf("invalid from address %q", req.From)
	}
	if req.To != "" && !IsHexAddress(req.To) {
		return fmt.Sprintf("invalid to address %q", req.To)
	}

	for _, addr := range []string{req.From, req.To} {
		if addr == "" {
			continue
		}
		switch VerifyChecksum(addr) {
		case ChecksumAbsent:
			verdict.Warnings = append(verdict.Warnings,
				fmt.Sprintf("address %s carries no checksum", addr))
		case ChecksumInvalid:
			if g.cfg.RequireChecksums {
				return fmt.Sprintf("address %s fails checksum", addr)
			}
			verdict.Warnings = append(verdict.Warnings,
				fmt.Sprintf("address %s fails checksum", addr))
		}
	}
	return ""
}

// checkSpending applies the per-single, windowed total, and count
// limits. A non-empty return is a block reason; softer breaches add
// concerns.
func (g *TransactionGuard) checkSpending(ctx context.Context, req TxRequest, limits SpendingLimits, verdict *TxVerdict) string {
	if limits.ExceedsSingle(req.Amount) {
		return fmt.Sprintf("amount %.2f exceeds single-transaction limit %.2f", req.Amount, limits.MaxSingle)
	}

	sum, err := g.tracker.Summary(ctx, req.From)
	if err != nil {
		verdict.Warnings = append(verdict.Warnings, "spending history unavailable: "+err.Error())
		return ""
	}

	if sum.HourlyTotal+req.Amount > limits.MaxHourlyTotal {
		verdict.Concerns = append(verdict.Concerns,
			fmt.Sprintf("hourly limit: %.2f spent + %.2f exceeds %.2f", sum.HourlyTotal, req.Amount, limits.MaxHourlyTotal))
	}
	if sum.DailyTotal+req.Amount > limits.MaxDailyTotal {
		verdict.Concerns = append(verdict.Concerns,
			fmt.Sprintf("daily limit: %.2f spent + %.2f exceeds %.2f", sum.DailyTotal, req.Amount, limits.MaxDailyTotal))
	}
	if sum.HourlyCount >= limits.MaxTxPerHour || sum.DailyCount >= limits.MaxTxPerDay {
		verdict.Concerns = append(verdict.Concerns, "rate limit reached")
	}
	return ""
}

// applyFiduciary runs the fiduciary overlay and folds violations into
// the verdict.
func (g *TransactionGuard) applyFiduciary(ctx context.Context, req TxRequest, verdict *TxVerdict) {
	description := fmt.Sprintf("%s %.2f %s on %s", req.Action, req.Amount, req.Token, req.Chain)
	var user UserContext
	if g.user != nil {
		user = *g.user
	}

	violations, err := g.fiduciary.Check(ctx, description, user, req.Purpose)
	if err != nil {
		verdict.Warnings = append(verdict.Warnings, "fiduciary check unavailable: "+err.Error())
		return
	}
	for _, v := range violations {
		verdict.Concerns = append(verdict.Concerns, "fiduciary: "+v.Detail)
		verdict.Risk = types.MaxRisk(verdict.Risk, types.RiskHigh)
		if v.Blocking || g.cfg.StrictFiduciary {
			verdict.Decision = DecisionReject
			if verdict.Reason == "" {
				verdict.Reason = "fiduciary violation: " + v.Rule
			}
		}
	}
}

// decide applies the final decision rule over accumulated concerns.
func (g *TransactionGuard) decide(req TxRequest, limits SpendingLimits, verdict *TxVerdict) {
	if verdict.Decision == DecisionReject {
		return
	}

	for _, c := range verdict.Concerns {
		if strings.HasPrefix(c, "hourly limit") || strings.HasPrefix(c, "daily limit") || c == "rate limit reached" {
			verdict.Decision = DecisionReject
			if verdict.Reason == "" {
				verdict.Reason = c
			}
			return
		}
	}

	if limits.RequiresConfirmation(req.Amount) ||
		(g.cfg.RequireConfirmationForHighValue && verdict.Risk.AtLeast(types.RiskHigh)) {
		verdict.Decision = DecisionApproveWithConfirmation
		return
	}

	verdict.Decision = DecisionApprove
}

func actionRisk(class string) types.RiskLevel {
	switch class {
	case "high-risk":
		return types.RiskHigh
	case "other":
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func amountRisk(amount float64) types.RiskLevel {
	switch {
	case amount > 500:
		return types.RiskHigh
	case amount > 100:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// RecordCompleted records a confirmed transaction into the spending
// tracker. Callers invoke this only after the action settles.
func (g *TransactionGuard) RecordCompleted(ctx context.Context, from string, amount float64) error {
	return g.tracker.Record(ctx, from, amount, "")
}

// SpendingSummary returns the wallet's current windows.
func (g *TransactionGuard) SpendingSummary(ctx context.Context, wallet string) (SpendingSummary, error) {
	return g.tracker.Summary(ctx, wallet)
}

// Stats returns the guard's decision counters.
func (g *TransactionGuard) Stats() GuardStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	stats := GuardStats{
		Total:    g.total,
		Approved: g.approved,
		Rejected: g.rejected,
		Blocked:  g.blocked,
	}
	if stats.Total > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(stats.Total)
	}
	return stats
}

// recordDecision updates counters, metrics, and the audit trail.
func (g *TransactionGuard) recordDecision(req TxRequest, verdict *TxVerdict) {
	g.mu.Lock()
	g.total++
	switch verdict.Decision {
	case DecisionApprove, DecisionApproveWithConfirmation:
		g.approved++
	case DecisionReject:
		g.rejected++
	case DecisionBlock:
		g.blocked++
	}
	g.mu.Unlock()

	decision := string(verdict.Decision)
	g.metrics.ValidationsTotal.WithLabelValues("txguard", decision).Inc()

	if g.trail != nil {
		entry := audit.NewEntry("txguard", decision, verdict.Risk,
			fmt.Sprintf("%s %.2f %s", req.Action, req.Amount, req.Token))
		entry.Concerns = verdict.Concerns
		entry.Identifiers = map[string]string{
			"chain": req.Chain,
			"from":  normalizeWallet(req.From),
		}
		g.trail.Append(entry)
	}

	g.log.Debug("transaction decision", map[string]interface{}{
		"chain":    req.Chain,
		"action":   req.Action,
		"decision": decision,
		"risk":     string(verdict.Risk),
	})
}
