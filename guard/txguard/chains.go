// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import "strings"

// testnetLimitFactor relaxes every spending limit on test networks.
const testnetLimitFactor = 10

// ChainPolicy configures per-chain transaction rules.
type ChainPolicy struct {
	ChainID                  string          `yaml:"chain_id" json:"chain_id"`
	Limits                   SpendingLimits  `yaml:"limits" json:"limits"`
	BlockedContracts         map[string]bool `yaml:"blocked_contracts" json:"blocked_contracts"`
	AllowedContracts         map[string]bool `yaml:"allowed_contracts,omitempty" json:"allowed_contracts,omitempty"`
	MaxGasPriceGwei          float64         `yaml:"max_gas_price_gwei,omitempty" json:"max_gas_price_gwei,omitempty"`
	RequireVerifiedContracts bool            `yaml:"require_verified_contracts" json:"require_verified_contracts"`
}

// IsTestnet reports whether the chain id names a test network.
func IsTestnet(chainID string) bool {
	lower := strings.ToLower(chainID)
	for _, marker := range []string{"sepolia", "goerli", "testnet", "devnet", "localhost"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// DefaultChainPolicy returns the policy for a chain id. Testnets get
// the default limits relaxed by a fixed factor.
func DefaultChainPolicy(chainID string) ChainPolicy {
	limits := DefaultSpendingLimits()
	if IsTestnet(chainID) {
		limits = limits.Scaled(testnetLimitFactor)
	}
	return ChainPolicy{
		ChainID:          chainID,
		Limits:           limits,
		BlockedContracts: make(map[string]bool),
	}
}

// IsBlockedContract reports whether addr is on the chain's blocklist.
// Comparison is case-insensitive.
func (p ChainPolicy) IsBlockedContract(addr string) bool {
	return p.BlockedContracts[strings.ToLower(addr)]
}

// IsAllowedContract reports whether addr passes the chain's allowlist.
// A nil allowlist allows every contract.
func (p ChainPolicy) IsAllowedContract(addr string) bool {
	if p.AllowedContracts == nil {
		return true
	}
	return p.AllowedContracts[strings.ToLower(addr)]
}
