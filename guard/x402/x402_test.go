// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package x402

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegisgate/platform/guard/txguard"
	"aegisgate/platform/shared/logger"
	"aegisgate/platform/shared/types"
)

const (
	usdcBase  = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	payeeAddr = "0xcccccccccccccccccccccccccccccccccccccccc"
	payerAddr = "0xdddddddddddddddddddddddddddddddddddddddd"
)

func validRequest() PaymentRequest {
	return PaymentRequest{
		Scheme:       "exact",
		Network:      "base",
		ResourceURL:  "https://api.example.com/v1/weather",
		PayTo:        payeeAddr,
		Asset:        usdcBase,
		AmountAtomic: "1000000", // 1 USDC
		Description:  "weather data access",
	}
}

func newTestPolicy(cfg PolicyConfig, opts ...PolicyOption) *Policy {
	opts = append(opts, WithPolicyLogger(logger.NewNull()))
	return NewPolicy(cfg, opts...)
}

func TestAmountUSD(t *testing.T) {
	req := validRequest()
	assert.InDelta(t, 1.0, req.AmountUSD(), 1e-9)

	req.AmountAtomic = "2500000"
	assert.InDelta(t, 2.5, req.AmountUSD(), 1e-9)

	req.AmountAtomic = "not a number"
	assert.Zero(t, req.AmountUSD())
}

func TestKnownAsset(t *testing.T) {
	req := validRequest()
	assert.True(t, req.KnownAsset())

	req.Asset = payeeAddr
	assert.False(t, req.KnownAsset())

	req = validRequest()
	req.Network = "unknown-net"
	assert.False(t, req.KnownAsset())
}

func TestBeforeApprovesCleanPayment(t *testing.T) {
	p := newTestPolicy(DefaultPolicyConfig())

	// Settle one payment first so the counterparty is known.
	require.NoError(t, p.After(context.Background(), validRequest(), payerAddr, true, "0xhash", ""))

	verdict, err := p.Before(context.Background(), validRequest(), payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionApprove, verdict.Decision)
	assert.Equal(t, types.RiskSafe, verdict.Risk)
	assert.True(t, verdict.Approved())
}

func TestBeforeFirstPaymentRequiresConfirmation(t *testing.T) {
	p := newTestPolicy(DefaultPolicyConfig())

	verdict, err := p.Before(context.Background(), validRequest(), payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionRequireConfirmation, verdict.Decision)
	assert.NotEmpty(t, verdict.Warnings)
}

func TestBeforeTruthGateRejectsUnknownAsset(t *testing.T) {
	p := newTestPolicy(DefaultPolicyConfig())
	req := validRequest()
	req.Asset = payeeAddr

	verdict, err := p.Before(context.Background(), req, payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionReject, verdict.Decision)
	assert.Equal(t, types.RiskHigh, verdict.Risk)
}

func TestBeforeHarmGateBlocks(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.BlockedRecipients[payeeAddr] = true
	p := newTestPolicy(cfg)

	verdict, err := p.Before(context.Background(), validRequest(), payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionBlock, verdict.Decision)
	assert.Equal(t, types.RiskCritical, verdict.Risk)
}

func TestBeforeSuspiciousURLBlocks(t *testing.T) {
	p := newTestPolicy(DefaultPolicyConfig())
	req := validRequest()
	req.ResourceURL = "https://coinbase.verify-wallet.example/pay"

	verdict, err := p.Before(context.Background(), req, payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionBlock, verdict.Decision)
}

func TestBeforeTwoFailedGatesCritical(t *testing.T) {
	p := newTestPolicy(DefaultPolicyConfig())
	req := validRequest()
	// Truth fails on the asset, Purpose on the description.
	req.Asset = payeeAddr
	req.Description = "urgent: confirm seed phrase"

	verdict, err := p.Before(context.Background(), req, payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionReject, verdict.Decision)
	assert.Equal(t, types.RiskCritical, verdict.Risk)
}

func TestBeforeScopeGateDailyCap(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.Limits.MaxDailyTotal = 5
	tracker := txguard.NewSpendingTracker()
	p := newTestPolicy(cfg, WithPolicyTracker(tracker))
	ctx := context.Background()

	require.NoError(t, tracker.Record(ctx, payerAddr, 4.5, ""))

	verdict, err := p.Before(ctx, validRequest(), payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionReject, verdict.Decision)
}

func TestBeforeConfirmationThresholdAmount(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.Limits.ConfirmationThreshold = 0.5
	p := newTestPolicy(cfg)

	require.NoError(t, p.After(context.Background(), validRequest(), payerAddr, true, "0xhash", ""))

	verdict, err := p.Before(context.Background(), validRequest(), payerAddr)
	require.NoError(t, err)

	assert.Equal(t, DecisionRequireConfirmation, verdict.Decision)
}

func TestBeforeStrictRaisesTypedErrors(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.BlockedRecipients[payeeAddr] = true
	p := newTestPolicy(cfg)

	_, err := p.BeforeStrict(context.Background(), validRequest(), payerAddr)
	var blocked *types.PaymentBlockedError
	require.ErrorAs(t, err, &blocked)

	cfg = DefaultPolicyConfig()
	p = newTestPolicy(cfg)
	req := validRequest()
	req.Asset = payeeAddr
	_, err = p.BeforeStrict(context.Background(), req, payerAddr)
	var rejected *types.PaymentRejectedError
	require.ErrorAs(t, err, &rejected)

	p = newTestPolicy(DefaultPolicyConfig())
	_, err = p.BeforeStrict(context.Background(), validRequest(), payerAddr)
	var confirm *types.ConfirmationRequiredError
	require.ErrorAs(t, err, &confirm)
}

func TestAfterRecordsOnlySuccess(t *testing.T) {
	tracker := txguard.NewSpendingTracker()
	p := newTestPolicy(DefaultPolicyConfig(), WithPolicyTracker(tracker))
	ctx := context.Background()

	require.NoError(t, p.After(ctx, validRequest(), payerAddr, false, "", "insufficient funds"))
	sum, _ := tracker.Summary(ctx, payerAddr)
	assert.Zero(t, sum.DailyTotal)

	require.NoError(t, p.After(ctx, validRequest(), payerAddr, true, "0xhash", ""))
	sum, _ = tracker.Summary(ctx, payerAddr)
	assert.InDelta(t, 1.0, sum.DailyTotal, 1e-9)
}

func TestSuspiciousURLReasons(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"clean", "https://api.example.com/data", 0},
		{"official provider", "https://api.coinbase.com/pay", 0},
		{"ip host", "https://93.184.216.34/pay", 1},
		{"punycode", "https://xn--coinbse-9za.com/pay", 1},
		{"typosquat", "https://coinbase.payments-verify.net/pay", 1},
		{"unparseable", "://bad", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, SuspiciousURLReasons(tt.url), tt.want)
		})
	}
}
