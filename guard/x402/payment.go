// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package x402

import (
	"math/big"
	"strings"
)

// PaymentRequest is the chain-agnostic normalization of a
// payment-required challenge.
type PaymentRequest struct {
	Scheme       string            `json:"scheme"`
	Network      string            `json:"network"`
	ResourceURL  string            `json:"resource_url"`
	PayTo        string            `json:"pay_to"`
	Asset        string            `json:"asset"`
	AmountAtomic string            `json:"amount_atomic"`
	Description  string            `json:"description,omitempty"`
	TimeoutS     int               `json:"timeout_s,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// assetDecimals maps a lowercased asset contract to its token
// decimals. Stablecoin entries cover the networks the gateway pays on.
var assetDecimals = map[string]int{
	// USDC
	"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": 6, // base
	"0x036cbd53842c5426634e7929541ec2318f3dcf7e": 6, // base-sepolia
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": 6, // ethereum
	"0x94a9d9ac8a22534e3faca9f4e7f2e2cf85d5e4c8": 6, // ethereum-sepolia
	// DAI
	"0x6b175474e89094c44da98b954eedeac495271d0f": 18,
	// WETH
	"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": 18,
}

// knownAssets maps a network to the asset contracts the gateway
// recognizes on it.
var knownAssets = map[string]map[string]bool{
	"base": {
		"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": true,
	},
	"base-sepolia": {
		"0x036cbd53842c5426634e7929541ec2318f3dcf7e": true,
	},
	"ethereum": {
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": true,
		"0x6b175474e89094c44da98b954eedeac495271d0f": true,
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": true,
	},
}

const defaultDecimals = 6

// Decimals returns the token decimals for the request's asset,
// defaulting to 6 for unknown stable-value assets.
func (r PaymentRequest) Decimals() int {
	if d, ok := assetDecimals[strings.ToLower(r.Asset)]; ok {
		return d
	}
	return defaultDecimals
}

// AmountUSD converts the atomic amount to a display value using the
// decimals table. Returns 0 for unparseable amounts; Truth-gate
// validation rejects those separately.
func (r PaymentRequest) AmountUSD() float64 {
	n, ok := new(big.Int).SetString(strings.TrimSpace(r.AmountAtomic), 10)
	if !ok || n.Sign() < 0 {
		return 0
	}
	f := new(big.Float).SetInt(n)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(r.Decimals())), nil))
	out, _ := new(big.Float).Quo(f, scale).Float64()
	return out
}

// KnownAsset reports whether the asset is on the known-contract list
// for the declared network.
func (r PaymentRequest) KnownAsset() bool {
	assets, ok := knownAssets[strings.ToLower(r.Network)]
	if !ok {
		return false
	}
	return assets[strings.ToLower(r.Asset)]
}
