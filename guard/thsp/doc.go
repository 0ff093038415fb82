// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package thsp implements the Truth, Harm, Scope, Purpose gate engine:
// four orthogonal predicates over text, evaluated in fixed order
// against the shared pattern catalog and aggregated into a single
// risk-ranked result. This is the heuristic layer of the validation
// pipeline; it does no I/O and completes in sub-millisecond time on
// typical inputs.
package thsp
