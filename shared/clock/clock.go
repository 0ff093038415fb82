// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the monotonic clock capability consumed by the
// validators and the spending tracker. Production code uses Real();
// tests inject a Fake to drive window rollover deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock is the time capability used by every component that measures
// latency or buckets events into windows.
type Clock interface {
	// Now returns the current instant. The real implementation carries
	// a monotonic reading so Since() is immune to wall-clock jumps.
	Now() time.Time

	// Since returns the elapsed time between t and now.
	Since(t time.Time) time.Duration
}

type realClock struct{}

func (realClock) Now() time.Time                  { return time.Now() }
func (realClock) Since(t time.Time) time.Duration { return time.Since(t) }

// Real returns the system clock.
func Real() Clock {
	return realClock{}
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a fake clock pinned to the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Since returns the elapsed fake time since t.
func (f *Fake) Since(t time.Time) time.Duration {
	return f.Now().Sub(t)
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
