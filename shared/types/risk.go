// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package types

import "fmt"

// RiskLevel represents the severity of a validation finding.
// The ordering is total: safe < low < medium < high < critical.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskRank maps each level to its position in the total order.
var riskRank = map[RiskLevel]int{
	RiskSafe:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Rank returns the position of the level in the total order.
// Unknown levels rank below safe so they never promote a verdict.
func (r RiskLevel) Rank() int {
	if rank, ok := riskRank[r]; ok {
		return rank
	}
	return -1
}

// IsValid reports whether the level is one of the five known levels.
func (r RiskLevel) IsValid() bool {
	_, ok := riskRank[r]
	return ok
}

// AtLeast reports whether r is at or above other in the total order.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Rank() >= other.Rank()
}

// String returns the string representation of the level.
func (r RiskLevel) String() string {
	return string(r)
}

// MaxRisk returns the higher of two risk levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseRiskLevel parses a string into a RiskLevel, returning an error if invalid.
func ParseRiskLevel(s string) (RiskLevel, error) {
	level := RiskLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid risk level: %q, valid levels are: safe, low, medium, high, critical", s)
	}
	return level, nil
}
