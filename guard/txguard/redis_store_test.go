// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegisgate/platform/shared/clock"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *clock.Fake) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	fake := clock.NewFake(time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC))
	return NewRedisStore(client, WithRedisClock(fake)), fake
}

func TestRedisStoreRecordAndSummary(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "0xABC", 12.5, "api.example.com"))
	require.NoError(t, store.Record(ctx, "0xabc", 7.5, ""))

	sum, err := store.Summary(ctx, "0xAbC")
	require.NoError(t, err)
	assert.Equal(t, 20.0, sum.HourlyTotal)
	assert.Equal(t, 2, sum.HourlyCount)
	assert.Equal(t, 20.0, sum.DailyTotal)
	assert.Equal(t, 2, sum.DailyCount)
}

func TestRedisStoreHourlyWindowChanges(t *testing.T) {
	store, fake := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "0x1", 40, ""))
	fake.Advance(time.Hour)

	sum, err := store.Summary(ctx, "0x1")
	require.NoError(t, err)
	assert.Zero(t, sum.HourlyTotal, "new hour bucket starts empty")
	assert.Equal(t, 40.0, sum.DailyTotal, "same day bucket")
}

func TestRedisStoreReset(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "0x1", 40, ""))
	require.NoError(t, store.Reset(ctx, "0x1"))

	sum, err := store.Summary(ctx, "0x1")
	require.NoError(t, err)
	assert.Zero(t, sum.HourlyTotal)
	assert.Zero(t, sum.DailyTotal)
}

func TestRedisStoreEmptyWallet(t *testing.T) {
	store, _ := newTestRedisStore(t)

	sum, err := store.Summary(context.Background(), "0xnever")
	require.NoError(t, err)
	assert.Zero(t, sum.DailyTotal)
	assert.Zero(t, sum.DailyCount)
}
