// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package txguard enforces transaction and payment policy: address
// validation, per-chain spending limits over rolling windows,
// unlimited-approval detection, and DeFi position risk scoring.
package txguard
