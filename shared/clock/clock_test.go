// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockAdvances(t *testing.T) {
	c := Real()

	start := c.Now()
	time.Sleep(5 * time.Millisecond)

	assert.True(t, c.Since(start) > 0)
	assert.True(t, c.Now().After(start))
}

func TestFakeClockIsPinned(t *testing.T) {
	start := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	f := NewFake(start)

	assert.Equal(t, start, f.Now())
	assert.Equal(t, start, f.Now(), "fake clock does not move on its own")
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	f := NewFake(start)

	f.Advance(90 * time.Minute)

	assert.Equal(t, start.Add(90*time.Minute), f.Now())
	assert.Equal(t, 90*time.Minute, f.Since(start))
}

func TestFakeClockConcurrentAdvance(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				f.Advance(time.Second)
				f.Now()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, time.Unix(800, 0), f.Now())
}
