// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"fmt"
	"strings"

	"aegisgate/platform/shared/types"
)

// DeFiRequest describes a proposed DeFi position.
type DeFiRequest struct {
	Protocol        string  `json:"protocol"`
	Action          string  `json:"action"`
	AmountUSD       float64 `json:"amount_usd"`
	CollateralRatio float64 `json:"collateral_ratio,omitempty"`
	APY             float64 `json:"apy,omitempty"`
}

// DeFiAssessment is the scored result of a DeFi risk evaluation.
type DeFiAssessment struct {
	Risk            types.RiskLevel `json:"risk"`
	Score           int             `json:"score"`
	Factors         []string        `json:"factors"`
	Warnings        []string        `json:"warnings,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
}

// Base risk per protocol, from public audit history and TVL maturity.
var protocolBaseRisk = map[string]int{
	"aave":      10,
	"compound":  10,
	"uniswap":   12,
	"curve":     15,
	"lido":      12,
	"morpho":    20,
	"pendle":    25,
	"aerodrome": 25,
	"pumpfun":   45,
}

// Protocol-specific additions beyond the base table.
var protocolExtraRisk = map[string]struct {
	score  int
	factor string
}{
	"pumpfun": {25, "token-launch platform carries rug risk"},
}

// Action weight as a percentage multiplier over the protocol base.
var actionWeight = map[string]int{
	"supply":           100,
	"withdraw":         80,
	"stake":            100,
	"unstake":          80,
	"swap":             110,
	"borrow":           150,
	"repay":            80,
	"add_liquidity":    130,
	"remove_liquidity": 100,
	"leverage":         200,
}

// Score thresholds and adders.
const (
	minSafeCollateralRatio = 1.5

	largeAmountUSD    = 10000
	notableAmountUSD  = 1000
	unknownProtocol   = 30
	unsustainableAPY  = 100
	highAPY           = 50
	scoreCriticalBand = 75
	scoreHighBand     = 50
	scoreMediumBand   = 25
)

// AssessDeFiRisk scores a proposed DeFi position against fixed
// protocol and action tables.
func AssessDeFiRisk(req DeFiRequest) DeFiAssessment {
	a := DeFiAssessment{}
	protocol := strings.ToLower(req.Protocol)
	action := strings.ToLower(req.Action)

	base, known := protocolBaseRisk[protocol]
	if !known {
		base = 20
		a.Score += unknownProtocol
		a.Factors = append(a.Factors, fmt.Sprintf("unknown protocol %q", req.Protocol))
		a.Recommendations = append(a.Recommendations, "verify the protocol contract and audit status before proceeding")
	}

	weight, ok := actionWeight[action]
	if !ok {
		weight = 120
	}
	a.Score += base * weight / 100
	a.Factors = append(a.Factors, fmt.Sprintf("%s on %s", action, protocol))

	switch {
	case req.AmountUSD > largeAmountUSD:
		a.Score += 30
		a.Factors = append(a.Factors, "large amount")
		a.Recommendations = append(a.Recommendations, "split the position into smaller tranches")
	case req.AmountUSD > notableAmountUSD:
		a.Score += 15
		a.Factors = append(a.Factors, "notable amount")
	}

	if action == "borrow" {
		switch {
		case req.CollateralRatio == 0:
			a.Score += 20
			a.Factors = append(a.Factors, "collateral ratio unassessable")
			a.Warnings = append(a.Warnings, "no collateral ratio supplied for borrow")
		case req.CollateralRatio < 1.0:
			a.Score += 50
			a.Factors = append(a.Factors, "under-collateralized")
			a.Warnings = append(a.Warnings, "position is under-collateralized and can be liquidated immediately")
		case req.CollateralRatio < minSafeCollateralRatio:
			a.Score += 30
			a.Factors = append(a.Factors, fmt.Sprintf("collateral ratio %.2f below safe minimum %.1f", req.CollateralRatio, minSafeCollateralRatio))
			a.Recommendations = append(a.Recommendations, "raise collateral above the safe minimum to survive volatility")
		}
	}

	switch {
	case req.APY >= unsustainableAPY:
		a.Score += 40
		a.Factors = append(a.Factors, "unsustainable yield")
		a.Warnings = append(a.Warnings, fmt.Sprintf("advertised APY of %.0f%% is typically a ponzi or emissions trap", req.APY))
	case req.APY >= highAPY:
		a.Score += 20
		a.Factors = append(a.Factors, "high yield")
	}

	if extra, ok := protocolExtraRisk[protocol]; ok {
		a.Score += extra.score
		a.Factors = append(a.Factors, extra.factor)
	}

	a.Risk = scoreToRisk(a.Score)
	return a
}

func scoreToRisk(score int) types.RiskLevel {
	switch {
	case score >= scoreCriticalBand:
		return types.RiskCritical
	case score >= scoreHighBand:
		return types.RiskHigh
	case score >= scoreMediumBand:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}
