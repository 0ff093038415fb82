// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package types holds the shared value types of the gateway: the risk
// level ordering, the four THSP gates, the unified Verdict, and the
// error taxonomy. Every subsystem depends on this package and nothing
// in it depends on anything else.
package types
