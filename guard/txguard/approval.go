// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"math/big"
	"strings"
)

// maxUint256Decimal is 2^256 - 1 in decimal, the canonical "infinite"
// ERC-20 allowance.
const maxUint256Decimal = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

// unlimitedFloor is the threshold above which any allowance is treated
// as effectively unlimited: 10^30.
var unlimitedFloor = new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)

// IsUnlimitedApproval reports whether an ERC-20 approval amount grants
// an effectively unlimited allowance. Recognized forms: "-1", the
// uint256 all-ones decimal, "0x" followed by 64 f characters, and any
// numeric value at or above 10^30.
func IsUnlimitedApproval(amount string) bool {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return false
	}
	if amount == "-1" {
		return true
	}
	if amount == maxUint256Decimal {
		return true
	}

	if strings.HasPrefix(amount, "0x") || strings.HasPrefix(amount, "0X") {
		hexPart := amount[2:]
		if len(hexPart) == 64 && strings.Count(strings.ToLower(hexPart), "f") == 64 {
			return true
		}
		if n, ok := new(big.Int).SetString(hexPart, 16); ok {
			return n.Cmp(unlimitedFloor) >= 0
		}
		return false
	}

	if n, ok := new(big.Int).SetString(amount, 10); ok {
		return n.Cmp(unlimitedFloor) >= 0
	}
	return false
}
