// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	"aegisgate/platform/shared/types"
)

// PreviewLength is the maximum number of characters of validated
// content that may appear in an audit entry. The full content never
// does; only the preview, a SHA-256 of the original, and structural
// metadata are recorded.
const PreviewLength = 200

// DefaultMaxEntries bounds the in-memory trail when no explicit bound
// is configured.
const DefaultMaxEntries = 1000

// Entry is one structured audit record. Entries are append-only; the
// oldest entry is evicted when the trail is full.
type Entry struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Subsystem   string            `json:"subsystem"`
	Decision    string            `json:"decision"`
	Risk        types.RiskLevel   `json:"risk"`
	Concerns    []string          `json:"concerns,omitempty"`
	Identifiers map[string]string `json:"identifiers,omitempty"`
	Preview     string            `json:"preview,omitempty"`
	ContentHash string            `json:"content_hash,omitempty"`
}

// NewEntry builds an entry for the given content, computing the bounded
// preview and the content hash. Content may be empty for decisions that
// have no text payload (e.g. transactions).
func NewEntry(subsystem, decision string, risk types.RiskLevel, content string) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Subsystem: subsystem,
		Decision:  decision,
		Risk:      risk,
	}
	if content != "" {
		sum := sha256.Sum256([]byte(content))
		e.ContentHash = hex.EncodeToString(sum[:])
		if len(content) > PreviewLength {
			content = content[:PreviewLength]
		}
		e.Preview = content
	}
	return e
}

// Trail is a ring-bounded, thread-safe audit list. Each guard instance
// owns one trail; sinks that need durability drain it externally.
type Trail struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	sink    Sink
}

// Sink receives every appended entry. Implementations must not block
// for long; the Postgres sink queues internally.
type Sink interface {
	Write(entry Entry) error
}

// NewTrail creates a bounded trail. A max of zero or below uses
// DefaultMaxEntries.
func NewTrail(max int) *Trail {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Trail{max: max}
}

// WithSink attaches a sink that receives each appended entry. Sink
// errors are ignored here; the sink is responsible for its own retry
// and fallback behavior.
func (t *Trail) WithSink(sink Sink) *Trail {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
	return t
}

// Append adds an entry, evicting the oldest when the trail is full.
func (t *Trail) Append(entry Entry) {
	t.mu.Lock()
	if len(t.entries) >= t.max {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, entry)
	sink := t.sink
	t.mu.Unlock()

	if sink != nil {
		_ = sink.Write(entry)
	}
}

// Entries returns a copy of the current entries, oldest first.
func (t *Trail) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of retained entries.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
