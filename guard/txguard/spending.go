// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"context"
	"strings"
	"sync"
	"time"

	"aegisgate/platform/shared/clock"
)

// DefaultMaxPaymentLog bounds the in-memory payment log per tracker.
const DefaultMaxPaymentLog = 1000

// SpendingSummary is a point-in-time view of a wallet's current
// windows.
type SpendingSummary struct {
	Wallet      string  `json:"wallet"`
	HourlyTotal float64 `json:"hourly_total"`
	HourlyCount int     `json:"hourly_count"`
	DailyTotal  float64 `json:"daily_total"`
	DailyCount  int     `json:"daily_count"`
}

// PaymentRecord is one entry in the bounded payment log.
type PaymentRecord struct {
	Wallet    string    `json:"wallet"`
	Amount    float64   `json:"amount"`
	Endpoint  string    `json:"endpoint,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence capability behind a SpendingTracker. The
// in-memory tracker is the default; a Redis-backed store shares windows
// across gateway replicas.
type Store interface {
	Record(ctx context.Context, wallet string, amount float64, endpoint string) error
	Summary(ctx context.Context, wallet string) (SpendingSummary, error)
	Reset(ctx context.Context, wallet string) error
}

// window is one rolling spending window for a wallet.
type window struct {
	start time.Time
	total float64
	count int
}

// rollover resets the window when its length has elapsed.
func (w *window) rollover(now time.Time, length time.Duration) {
	if now.Sub(w.start) >= length {
		w.start = now
		w.total = 0
		w.count = 0
	}
}

type walletRecord struct {
	hourly window
	daily  window
}

// SpendingTracker aggregates completed payments per wallet into hourly
// and daily windows. All operations take the tracker's single mutex so
// per-wallet reads are linearizable with respect to records.
type SpendingTracker struct {
	mu      sync.Mutex
	clock   clock.Clock
	wallets map[string]*walletRecord
	log     []PaymentRecord
	maxLog  int
}

// TrackerOption configures a SpendingTracker.
type TrackerOption func(*SpendingTracker)

// WithTrackerClock injects the clock, mainly for tests.
func WithTrackerClock(c clock.Clock) TrackerOption {
	return func(t *SpendingTracker) { t.clock = c }
}

// WithMaxPaymentLog bounds the in-memory payment log.
func WithMaxPaymentLog(n int) TrackerOption {
	return func(t *SpendingTracker) { t.maxLog = n }
}

// NewSpendingTracker returns an empty tracker.
func NewSpendingTracker(opts ...TrackerOption) *SpendingTracker {
	t := &SpendingTracker{
		clock:   clock.Real(),
		wallets: make(map[string]*walletRecord),
		maxLog:  DefaultMaxPaymentLog,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// normalizeWallet lowercases the wallet so checksummed and plain forms
// of the same address share a counter.
func normalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// current returns the wallet's record after lazy rollover. Caller holds
// the mutex.
func (t *SpendingTracker) current(wallet string, now time.Time) *walletRecord {
	rec, ok := t.wallets[wallet]
	if !ok {
		rec = &walletRecord{
			hourly: window{start: now},
			daily:  window{start: now},
		}
		t.wallets[wallet] = rec
		return rec
	}
	rec.hourly.rollover(now, time.Hour)
	rec.daily.rollover(now, 24*time.Hour)
	return rec
}

// Record adds a completed payment to the wallet's current windows and
// appends a minimal row to the bounded payment log.
func (t *SpendingTracker) Record(ctx context.Context, wallet string, amount float64, endpoint string) error {
	wallet = normalizeWallet(wallet)
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.current(wallet, now)
	rec.hourly.total += amount
	rec.hourly.count++
	rec.daily.total += amount
	rec.daily.count++

	t.log = append(t.log, PaymentRecord{
		Wallet:    wallet,
		Amount:    amount,
		Endpoint:  endpoint,
		Timestamp: now,
	})
	if len(t.log) > t.maxLog {
		t.log = t.log[len(t.log)-t.maxLog:]
	}
	return nil
}

// Summary returns the wallet's four counters after lazy rollover.
func (t *SpendingTracker) Summary(ctx context.Context, wallet string) (SpendingSummary, error) {
	wallet = normalizeWallet(wallet)
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.current(wallet, now)
	return SpendingSummary{
		Wallet:      wallet,
		HourlyTotal: rec.hourly.total,
		HourlyCount: rec.hourly.count,
		DailyTotal:  rec.daily.total,
		DailyCount:  rec.daily.count,
	}, nil
}

// HourlyTotal returns the wallet's current hourly window total.
func (t *SpendingTracker) HourlyTotal(ctx context.Context, wallet string) float64 {
	s, _ := t.Summary(ctx, wallet)
	return s.HourlyTotal
}

// DailyTotal returns the wallet's current daily window total.
func (t *SpendingTracker) DailyTotal(ctx context.Context, wallet string) float64 {
	s, _ := t.Summary(ctx, wallet)
	return s.DailyTotal
}

// Reset clears one wallet, or every wallet when wallet is empty.
func (t *SpendingTracker) Reset(ctx context.Context, wallet string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wallet == "" {
		t.wallets = make(map[string]*walletRecord)
		t.log = nil
		return nil
	}
	delete(t.wallets, normalizeWallet(wallet))
	return nil
}

// PaymentLog returns a copy of the bounded payment log.
func (t *SpendingTracker) PaymentLog() []PaymentRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PaymentRecord, len(t.log))
	copy(out, t.log)
	return out
}
