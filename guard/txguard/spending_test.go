// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegisgate/platform/shared/clock"
)

func TestTrackerRecordAndSummary(t *testing.T) {
	tr := NewSpendingTracker()
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "0xABCD", 10, "api.example.com"))
	require.NoError(t, tr.Record(ctx, "0xabcd", 5, ""))

	sum, err := tr.Summary(ctx, "0xAbCd")
	require.NoError(t, err)
	assert.Equal(t, 15.0, sum.HourlyTotal)
	assert.Equal(t, 2, sum.HourlyCount)
	assert.Equal(t, 15.0, sum.DailyTotal)
	assert.Equal(t, 2, sum.DailyCount)
	assert.Equal(t, "0xabcd", sum.Wallet, "wallet keys normalize to lowercase")
}

func TestTrackerWalletsAreIndependent(t *testing.T) {
	tr := NewSpendingTracker()
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "0xaaa", 100, ""))

	sum, err := tr.Summary(ctx, "0xbbb")
	require.NoError(t, err)
	assert.Zero(t, sum.DailyTotal)
}

func TestTrackerHourlyRollover(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	tr := NewSpendingTracker(WithTrackerClock(fake))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "0x1", 50, ""))
	fake.Advance(59 * time.Minute)
	sum, _ := tr.Summary(ctx, "0x1")
	assert.Equal(t, 50.0, sum.HourlyTotal, "window still open")

	fake.Advance(time.Minute)
	sum, _ = tr.Summary(ctx, "0x1")
	assert.Zero(t, sum.HourlyTotal, "hourly window rolled over")
	assert.Zero(t, sum.HourlyCount)
	assert.Equal(t, 50.0, sum.DailyTotal, "daily window still open")

	require.NoError(t, tr.Record(ctx, "0x1", 20, ""))
	sum, _ = tr.Summary(ctx, "0x1")
	assert.Equal(t, 20.0, sum.HourlyTotal, "boundary record is not double counted")
	assert.Equal(t, 70.0, sum.DailyTotal)
}

func TestTrackerDailyRollover(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	tr := NewSpendingTracker(WithTrackerClock(fake))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "0x1", 400, ""))
	fake.Advance(24 * time.Hour)

	sum, _ := tr.Summary(ctx, "0x1")
	assert.Zero(t, sum.DailyTotal)
	assert.Zero(t, sum.DailyCount)
}

func TestTrackerReset(t *testing.T) {
	tr := NewSpendingTracker()
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "0x1", 10, ""))
	require.NoError(t, tr.Record(ctx, "0x2", 20, ""))

	require.NoError(t, tr.Reset(ctx, "0x1"))
	sum, _ := tr.Summary(ctx, "0x1")
	assert.Zero(t, sum.DailyTotal)
	sum, _ = tr.Summary(ctx, "0x2")
	assert.Equal(t, 20.0, sum.DailyTotal)

	require.NoError(t, tr.Reset(ctx, ""))
	sum, _ = tr.Summary(ctx, "0x2")
	assert.Zero(t, sum.DailyTotal)
}

func TestTrackerPaymentLogBounded(t *testing.T) {
	tr := NewSpendingTracker(WithMaxPaymentLog(5))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, tr.Record(ctx, "0x1", float64(i), ""))
	}

	log := tr.PaymentLog()
	require.Len(t, log, 5)
	assert.Equal(t, 5.0, log[0].Amount, "oldest entries evicted first")
	assert.Equal(t, 9.0, log[4].Amount)
}

func TestTrackerConcurrentLinearizable(t *testing.T) {
	tr := NewSpendingTracker()
	ctx := context.Background()

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = tr.Record(ctx, "0xShared", 1, "")
				// Every read must observe a whole number of records.
				total := tr.DailyTotal(ctx, "0xshared")
				if total != float64(int(total)) {
					t.Errorf("torn read: %v", total)
				}
			}
		}()
	}
	wg.Wait()

	sum, _ := tr.Summary(ctx, "0xSHARED")
	assert.Equal(t, float64(writers*perWriter), sum.DailyTotal)
	assert.Equal(t, writers*perWriter, sum.DailyCount)
}
