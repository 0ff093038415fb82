// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Queue drains audit entries to a durable sink asynchronously. Writes
// that fail after retries land in a JSONL fallback file so no entry is
// silently lost. The queue implements Sink, so it can be attached to a
// Trail directly.
type Queue struct {
	queue        chan Entry
	workers      int
	wg           sync.WaitGroup
	sink         Sink
	fallbackFile *os.File
	mu           sync.Mutex

	processed uint64
	failed    uint64
	dropped   uint64
}

// NewQueue starts a queue with the given buffer size and worker count,
// draining into sink. fallbackPath receives entries that could not be
// written after retries; it is created if missing.
func NewQueue(sink Sink, queueSize, workers int, fallbackPath string) (*Queue, error) {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if workers <= 0 {
		workers = 3
	}

	fallbackFile, err := os.OpenFile(fallbackPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit fallback file: %w", err)
	}

	q := &Queue{
		queue:        make(chan Entry, queueSize),
		workers:      workers,
		sink:         sink,
		fallbackFile: fallbackFile,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q, nil
}

// Write queues an entry for async persistence. When the queue is full
// the entry goes straight to the fallback file.
func (q *Queue) Write(entry Entry) error {
	select {
	case q.queue <- entry:
		return nil
	default:
		q.mu.Lock()
		defer q.mu.Unlock()
		q.dropped++
		return q.writeToFallback(entry)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for entry := range q.queue {
		var err error
		for retry := 0; retry < 3; retry++ {
			if err = q.sink.Write(entry); err == nil {
				q.mu.Lock()
				q.processed++
				q.mu.Unlock()
				break
			}
			time.Sleep(time.Millisecond * time.Duration(100*(retry+1)))
		}
		if err != nil {
			q.mu.Lock()
			q.failed++
			if fallbackErr := q.writeToFallback(entry); fallbackErr != nil {
				// Nothing left to do; the entry is lost.
				_ = fallbackErr
			}
			q.mu.Unlock()
		}
	}
}

// writeToFallback appends the entry as one JSON line. Caller holds q.mu.
func (q *Queue) writeToFallback(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if _, err := fmt.Fprintf(q.fallbackFile, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write audit fallback: %w", err)
	}
	return q.fallbackFile.Sync()
}

// Shutdown closes the queue and waits for the workers to drain, up to
// the context deadline. Entries still queued at the deadline are saved
// to the fallback file.
func (q *Queue) Shutdown(ctx context.Context) error {
	close(q.queue)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return q.fallbackFile.Close()
	case <-ctx.Done():
		q.mu.Lock()
		for entry := range q.queue {
			_ = q.writeToFallback(entry)
		}
		q.mu.Unlock()
		_ = q.fallbackFile.Close()
		return ctx.Err()
	}
}

// Stats returns queue counters for observability.
func (q *Queue) Stats() map[string]uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return map[string]uint64{
		"processed": q.processed,
		"failed":    q.failed,
		"dropped":   q.dropped,
		"pending":   uint64(len(q.queue)),
	}
}
