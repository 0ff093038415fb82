// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegisgate/platform/shared/types"
)

func TestNewEntryBoundsPreview(t *testing.T) {
	content := strings.Repeat("x", PreviewLength*3)

	e := NewEntry("pipeline", "deny", types.RiskHigh, content)

	assert.Len(t, e.Preview, PreviewLength)
	assert.NotContains(t, e.Preview, content[PreviewLength:])

	sum := sha256.Sum256([]byte(content))
	assert.Equal(t, hex.EncodeToString(sum[:]), e.ContentHash,
		"hash covers the full content, not the preview")
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestNewEntryEmptyContent(t *testing.T) {
	e := NewEntry("txguard", "block", types.RiskCritical, "")

	assert.Empty(t, e.Preview)
	assert.Empty(t, e.ContentHash)
}

func TestTrailEvictsOldestFirst(t *testing.T) {
	trail := NewTrail(3)

	for i := 0; i < 5; i++ {
		trail.Append(NewEntry("pipeline", "allow", types.RiskSafe, fmt.Sprintf("entry %d", i)))
	}

	entries := trail.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 2", entries[0].Preview)
	assert.Equal(t, "entry 4", entries[2].Preview)
}

func TestTrailDefaultBound(t *testing.T) {
	trail := NewTrail(0)

	for i := 0; i < DefaultMaxEntries+10; i++ {
		trail.Append(Entry{ID: fmt.Sprint(i)})
	}

	assert.Equal(t, DefaultMaxEntries, trail.Len())
}

func TestTrailEntriesReturnsCopy(t *testing.T) {
	trail := NewTrail(10)
	trail.Append(NewEntry("pipeline", "allow", types.RiskSafe, "original"))

	entries := trail.Entries()
	entries[0].Preview = "mutated"

	assert.Equal(t, "original", trail.Entries()[0].Preview)
}

type captureSink struct {
	entries []Entry
}

func (s *captureSink) Write(entry Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func TestTrailForwardsToSink(t *testing.T) {
	sink := &captureSink{}
	trail := NewTrail(10).WithSink(sink)

	trail.Append(NewEntry("dbguard", "deny", types.RiskCritical, "DELETE FROM users"))
	trail.Append(NewEntry("dbguard", "allow", types.RiskSafe, "SELECT 1"))

	require.Len(t, sink.entries, 2)
	assert.Equal(t, "deny", sink.entries[0].Decision)
}
