// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"fmt"

	"aegisgate/platform/shared/types"
)

// SpendingLimits bounds what a single wallet may move through the
// gateway. Amounts are in the chain's native display unit.
type SpendingLimits struct {
	MaxSingle             float64 `yaml:"max_single" json:"max_single"`
	MaxHourlyTotal        float64 `yaml:"max_hourly_total" json:"max_hourly_total"`
	MaxDailyTotal         float64 `yaml:"max_daily_total" json:"max_daily_total"`
	MaxTxPerHour          int     `yaml:"max_tx_per_hour" json:"max_tx_per_hour"`
	MaxTxPerDay           int     `yaml:"max_tx_per_day" json:"max_tx_per_day"`
	ConfirmationThreshold float64 `yaml:"confirmation_threshold" json:"confirmation_threshold"`
}

// DefaultSpendingLimits returns the mainnet defaults.
func DefaultSpendingLimits() SpendingLimits {
	return SpendingLimits{
		MaxSingle:             100,
		MaxHourlyTotal:        200,
		MaxDailyTotal:         500,
		MaxTxPerHour:          10,
		MaxTxPerDay:           50,
		ConfirmationThreshold: 50,
	}
}

// Validate checks limit invariants.
func (l SpendingLimits) Validate() error {
	if l.MaxSingle <= 0 || l.MaxHourlyTotal <= 0 || l.MaxDailyTotal <= 0 {
		return fmt.Errorf("%w: spending limits must be positive", types.ErrInvalidConfig)
	}
	if l.MaxTxPerHour <= 0 || l.MaxTxPerDay <= 0 {
		return fmt.Errorf("%w: transaction count limits must be positive", types.ErrInvalidConfig)
	}
	if l.ConfirmationThreshold < 0 {
		return fmt.Errorf("%w: confirmation threshold must not be negative", types.ErrInvalidConfig)
	}
	return nil
}

// ExceedsSingle reports whether the amount is over the per-transaction
// cap.
func (l SpendingLimits) ExceedsSingle(amount float64) bool {
	return amount > l.MaxSingle
}

// RequiresConfirmation reports whether the amount is over the
// confirmation threshold.
func (l SpendingLimits) RequiresConfirmation(amount float64) bool {
	return amount > l.ConfirmationThreshold
}

// Scaled returns a copy with every limit multiplied by factor, used by
// testnet chain policies.
func (l SpendingLimits) Scaled(factor float64) SpendingLimits {
	l.MaxSingle *= factor
	l.MaxHourlyTotal *= factor
	l.MaxDailyTotal *= factor
	l.MaxTxPerHour = int(float64(l.MaxTxPerHour) * factor)
	l.MaxTxPerDay = int(float64(l.MaxTxPerDay) * factor)
	l.ConfirmationThreshold *= factor
	return l
}
