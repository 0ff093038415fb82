// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a configuration fails validation
	// at construction. It is fatal; it is never surfaced at call time.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPatternCompile is returned when a catalog pattern fails to
	// compile. Catalog construction aborts on the first such error.
	ErrPatternCompile = errors.New("pattern failed to compile")

	// ErrDuplicatePatternID is returned when two catalog declarations
	// share an id.
	ErrDuplicatePatternID = errors.New("duplicate pattern id")

	// ErrValidationTimeout is returned when the semantic layer does not
	// answer before the configured deadline.
	ErrValidationTimeout = errors.New("semantic validation timed out")

	// ErrProviderUnavailable is returned when the semantic client is
	// configured but reports itself unavailable.
	ErrProviderUnavailable = errors.New("semantic provider unavailable")
)

// QueryBlockedError is raised only by the strict DatabaseGuard wrapper.
// The non-strict API returns the verdict and lets the caller decide.
type QueryBlockedError struct {
	Risk       RiskLevel
	Violations []string
}

func (e *QueryBlockedError) Error() string {
	return fmt.Sprintf("query blocked (risk=%s): %v", e.Risk, e.Violations)
}

// PaymentBlockedError is raised by the strict payment middleware when a
// payment fails the Harm gate and must not proceed.
type PaymentBlockedError struct {
	Reason string
}

func (e *PaymentBlockedError) Error() string {
	return fmt.Sprintf("payment blocked: %s", e.Reason)
}

// PaymentRejectedError is raised by the strict payment middleware when
// one or more gates fail without a hard block.
type PaymentRejectedError struct {
	Reason string
	Risk   RiskLevel
}

func (e *PaymentRejectedError) Error() string {
	return fmt.Sprintf("payment rejected (risk=%s): %s", e.Risk, e.Reason)
}

// ConfirmationRequiredError is raised by the strict payment middleware
// when the payment may proceed only after explicit user confirmation.
type ConfirmationRequiredError struct {
	Reason string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required: %s", e.Reason)
}
