// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package x402 enforces payment policy over HTTP-native payment
// challenges. Four gate validators run in fixed order before the
// spending layer; lifecycle hooks record settled payments into the
// shared spending tracker.
package x402
