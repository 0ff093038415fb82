// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package pipeline implements the two-layer validation pipeline. The
// heuristic layer runs the THSP gate engine over the pattern catalog;
// the optional semantic layer consults an LLM classifier through a
// SemanticClient. Both layers fold into a single types.Verdict.
package pipeline
