// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Logger{
		Component:  "test",
		InstanceID: "test-instance",
		out:        log.New(buf, "", 0),
	}, buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestLogWritesStructuredJSON(t *testing.T) {
	l, buf := newBufferLogger()

	l.Info("validation complete", map[string]interface{}{"decision": "allow"})

	entry := lastEntry(t, buf)
	assert.Equal(t, INFO, entry.Level)
	assert.Equal(t, "test", entry.Component)
	assert.Equal(t, "validation complete", entry.Message)
	assert.Equal(t, "allow", entry.Fields["decision"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestLogRedactsPIIFields(t *testing.T) {
	l, buf := newBufferLogger()

	l.Warn("payment recorded", map[string]interface{}{
		"email":   "user@example.com",
		"Phone":   "+1-555-0100",
		"API_KEY": "sk-secret",
		"wallet":  "0xabc",
	})

	entry := lastEntry(t, buf)
	assert.Equal(t, "[REDACTED]", entry.Fields["email"])
	assert.Equal(t, "[REDACTED]", entry.Fields["Phone"], "redaction is case-insensitive")
	assert.Equal(t, "[REDACTED]", entry.Fields["API_KEY"])
	assert.Equal(t, "0xabc", entry.Fields["wallet"])
	assert.NotContains(t, buf.String(), "user@example.com")
}

func TestLogTruncatesLongStrings(t *testing.T) {
	l, buf := newBufferLogger()
	long := strings.Repeat("a", MaxFieldLength*2)

	l.Debug("content preview", map[string]interface{}{"content": long})

	entry := lastEntry(t, buf)
	got, ok := entry.Fields["content"].(string)
	require.True(t, ok)
	assert.Len(t, got, MaxFieldLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestLogDoesNotMutateCallerFields(t *testing.T) {
	l, _ := newBufferLogger()
	fields := map[string]interface{}{"email": "user@example.com"}

	l.Info("msg", fields)

	assert.Equal(t, "user@example.com", fields["email"])
}

func TestInfoWithDuration(t *testing.T) {
	l, buf := newBufferLogger()

	l.InfoWithDuration("validated", 12.5, nil)

	entry := lastEntry(t, buf)
	assert.Equal(t, 12.5, entry.Fields["duration_ms"])
}

func TestWithRequestCarriesRequestID(t *testing.T) {
	l, buf := newBufferLogger()

	l.WithRequest(ERROR, "req-42", "upstream failed", nil)

	entry := lastEntry(t, buf)
	assert.Equal(t, "req-42", entry.RequestID)
	assert.Equal(t, ERROR, entry.Level)
}

func TestNewNullDiscards(t *testing.T) {
	l := NewNull()
	// Must not panic and must write nowhere observable.
	l.Info("dropped", map[string]interface{}{"k": "v"})
}
