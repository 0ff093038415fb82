// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// MaxFieldLength is the cap applied to string field values before they
// are written. Longer values are truncated with an ellipsis marker.
const MaxFieldLength = 200

// redactedFields are field names whose values are never written out.
// Matching is case-insensitive on the field name.
var redactedFields = map[string]bool{
	"email":   true,
	"phone":   true,
	"ssn":     true,
	"card":    true,
	"api_key": true,
}

// Logger provides structured JSON logging with automatic PII redaction.
type Logger struct {
	Component  string
	InstanceID string
	out        *log.Logger
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Component string                 `json:"component"`
	Instance  string                 `json:"instance_id"`
	RequestID string                 `json:"request_id,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component writing to stdout.
func New(component string) *Logger {
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID, _ = os.Hostname()
	}
	if instanceID == "" {
		instanceID = "unknown"
	}

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		out:        log.New(os.Stdout, "", 0),
	}
}

// NewNull returns a logger that discards everything. Components accept
// an injected logger; callers that want silence pass this instead of nil.
func NewNull() *Logger {
	return &Logger{
		Component:  "null",
		InstanceID: "null",
		out:        log.New(io.Discard, "", 0),
	}
}

// Log creates a structured log entry and writes it as one JSON line.
// Fields named email, phone, ssn, card, or api_key are redacted and
// string values are truncated at MaxFieldLength characters.
func (l *Logger) Log(level LogLevel, requestID, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Component: l.Component,
		Instance:  l.InstanceID,
		RequestID: requestID,
		Message:   message,
		Fields:    sanitizeFields(fields),
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		l.out.Printf("ERROR: failed to marshal log entry: %v", err)
		return
	}

	l.out.Println(string(jsonBytes))
}

// sanitizeFields returns a copy of fields with PII redacted and long
// strings truncated. The input map is never mutated.
func sanitizeFields(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if redactedFields[strings.ToLower(name)] {
			clean[name] = "[REDACTED]"
			continue
		}
		if s, ok := value.(string); ok && len(s) > MaxFieldLength {
			clean[name] = s[:MaxFieldLength] + "..."
			continue
		}
		clean[name] = value
	}
	return clean
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields map[string]interface{}) {
	l.Log(DEBUG, "", message, fields)
}

// Info logs an informational message
func (l *Logger) Info(message string, fields map[string]interface{}) {
	l.Log(INFO, "", message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields map[string]interface{}) {
	l.Log(WARN, "", message, fields)
}

// Error logs an error message
func (l *Logger) Error(message string, fields map[string]interface{}) {
	l.Log(ERROR, "", message, fields)
}

// InfoWithDuration logs an info message with a duration field
func (l *Logger) InfoWithDuration(message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(message, fields)
}

// WithRequest logs at the given level tagged with a request id.
func (l *Logger) WithRequest(level LogLevel, requestID, message string, fields map[string]interface{}) {
	l.Log(level, requestID, message, fields)
}
