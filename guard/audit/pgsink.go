// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresSink persists audit entries into the gateway_audit_log table.
// The core stays in-memory; this sink is the external-durability
// adapter for deployments that need a queryable audit history.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink opens a Postgres connection for audit persistence and
// verifies it with a ping.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// NewPostgresSinkFromDB wraps an existing connection, mainly for tests.
func NewPostgresSinkFromDB(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Write inserts one audit entry with exponential backoff on transient
// failures.
func (s *PostgresSink) Write(entry Entry) error {
	identifiersJSON, err := json.Marshal(entry.Identifiers)
	if err != nil {
		return fmt.Errorf("failed to marshal identifiers: %w", err)
	}
	concernsJSON, err := json.Marshal(entry.Concerns)
	if err != nil {
		return fmt.Errorf("failed to marshal concerns: %w", err)
	}

	insertQuery := `
		INSERT INTO gateway_audit_log (id, ts, subsystem, decision, risk, concerns, identifiers, preview, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return s.execWithRetry(insertQuery,
		entry.ID,
		entry.Timestamp,
		entry.Subsystem,
		entry.Decision,
		string(entry.Risk),
		concernsJSON,
		identifiersJSON,
		entry.Preview,
		entry.ContentHash,
	)
}

// execWithRetry executes a statement with exponential backoff.
func (s *PostgresSink) execWithRetry(query string, args ...interface{}) error {
	const maxRetries = 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if _, err := s.db.Exec(query, args...); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < maxRetries-1 {
			time.Sleep(baseDelay * time.Duration(1<<uint(attempt)))
		}
	}
	return fmt.Errorf("audit write failed after %d attempts: %w", maxRetries, lastErr)
}

// Close closes the underlying connection.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
