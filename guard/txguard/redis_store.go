// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"aegisgate/platform/shared/clock"
)

// RedisStore shares spending windows across gateway replicas. Keys are
// bucketed by window start so rollover is a key change and expiry
// handles cleanup.
type RedisStore struct {
	client *redis.Client
	clock  clock.Clock
	prefix string
}

// NewRedisStore builds a store over an existing Redis client.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		clock:  clock.Real(),
		prefix: "aegis:spend",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisClock injects the clock, mainly for tests.
func WithRedisClock(c clock.Clock) RedisStoreOption {
	return func(s *RedisStore) { s.clock = c }
}

// WithRedisPrefix overrides the key namespace.
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func (s *RedisStore) hourKey(wallet string, now time.Time) string {
	return fmt.Sprintf("%s:h:%s:%d", s.prefix, wallet, now.Unix()/3600)
}

func (s *RedisStore) dayKey(wallet string, now time.Time) string {
	return fmt.Sprintf("%s:d:%s:%d", s.prefix, wallet, now.Unix()/86400)
}

// Record adds a completed payment to both windows atomically via a
// pipeline. Window keys expire two window-lengths out.
func (s *RedisStore) Record(ctx context.Context, wallet string, amount float64, endpoint string) error {
	wallet = normalizeWallet(wallet)
	now := s.clock.Now()
	hourKey := s.hourKey(wallet, now)
	dayKey := s.dayKey(wallet, now)

	pipe := s.client.TxPipeline()
	pipe.HIncrByFloat(ctx, hourKey, "total", amount)
	pipe.HIncrBy(ctx, hourKey, "count", 1)
	pipe.Expire(ctx, hourKey, 2*time.Hour)
	pipe.HIncrByFloat(ctx, dayKey, "total", amount)
	pipe.HIncrBy(ctx, dayKey, "count", 1)
	pipe.Expire(ctx, dayKey, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis spending record: %w", err)
	}
	return nil
}

// Summary reads both current windows.
func (s *RedisStore) Summary(ctx context.Context, wallet string) (SpendingSummary, error) {
	wallet = normalizeWallet(wallet)
	now := s.clock.Now()

	sum := SpendingSummary{Wallet: wallet}

	hourly, err := s.readWindow(ctx, s.hourKey(wallet, now))
	if err != nil {
		return sum, err
	}
	daily, err := s.readWindow(ctx, s.dayKey(wallet, now))
	if err != nil {
		return sum, err
	}

	sum.HourlyTotal, sum.HourlyCount = hourly.total, hourly.count
	sum.DailyTotal, sum.DailyCount = daily.total, daily.count
	return sum, nil
}

func (s *RedisStore) readWindow(ctx context.Context, key string) (window, error) {
	var w window
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return w, fmt.Errorf("redis spending read: %w", err)
	}
	if raw, ok := fields["total"]; ok {
		fmt.Sscanf(raw, "%f", &w.total)
	}
	if raw, ok := fields["count"]; ok {
		fmt.Sscanf(raw, "%d", &w.count)
	}
	return w, nil
}

// Reset deletes the wallet's current window keys.
func (s *RedisStore) Reset(ctx context.Context, wallet string) error {
	wallet = normalizeWallet(wallet)
	now := s.clock.Now()
	if err := s.client.Del(ctx, s.hourKey(wallet, now), s.dayKey(wallet, now)).Err(); err != nil {
		return fmt.Errorf("redis spending reset: %w", err)
	}
	return nil
}
