// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "sync/atomic"

// Stats holds the per-validator counters. All updates are atomic so a
// snapshot never observes a partial update.
type Stats struct {
	total           atomic.Int64
	allowed         atomic.Int64
	heuristicBlocks atomic.Int64
	semanticBlocks  atomic.Int64
	errors          atomic.Int64
	timeouts        atomic.Int64
	latencyMicros   atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters with derived
// values.
type StatsSnapshot struct {
	Total           int64   `json:"total"`
	Allowed         int64   `json:"allowed"`
	HeuristicBlocks int64   `json:"heuristic_blocks"`
	SemanticBlocks  int64   `json:"semantic_blocks"`
	Errors          int64   `json:"errors"`
	Timeouts        int64   `json:"timeouts"`
	AvgLatencyMS    float64 `json:"avg_latency_ms"`
	BlockRate       float64 `json:"block_rate"`
}

func (s *Stats) recordCall(latencyMS float64) {
	s.total.Add(1)
	s.latencyMicros.Add(int64(latencyMS * 1000))
}

// Snapshot returns the current counters and derived averages.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Total:           s.total.Load(),
		Allowed:         s.allowed.Load(),
		HeuristicBlocks: s.heuristicBlocks.Load(),
		SemanticBlocks:  s.semanticBlocks.Load(),
		Errors:          s.errors.Load(),
		Timeouts:        s.timeouts.Load(),
	}
	if snap.Total > 0 {
		snap.AvgLatencyMS = float64(s.latencyMicros.Load()) / 1000 / float64(snap.Total)
		snap.BlockRate = float64(snap.HeuristicBlocks+snap.SemanticBlocks) / float64(snap.Total)
	}
	return snap
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.total.Store(0)
	s.allowed.Store(0)
	s.heuristicBlocks.Store(0)
	s.semanticBlocks.Store(0)
	s.errors.Store(0)
	s.timeouts.Store(0)
	s.latencyMicros.Store(0)
}
