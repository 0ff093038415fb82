// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package dbguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyQueryType(t *testing.T) {
	tests := []struct {
		query string
		want  QueryType
	}{
		{"SELECT id FROM users", QuerySelect},
		{"  select 1", QuerySelect},
		{"INSERT INTO logs VALUES (1)", QueryInsert},
		{"UPDATE users SET name = 'x' WHERE id = 1", QueryUpdate},
		{"DELETE FROM users WHERE id = 1", QueryDelete},
		{"CREATE TABLE t (id int)", QueryCreate},
		{"DROP TABLE t", QueryDrop},
		{"ALTER TABLE t ADD COLUMN c int", QueryAlter},
		{"TRUNCATE TABLE t", QueryTruncate},
		{"EXEC sp_help", QueryExecute},
		{"EXECUTE my_proc", QueryExecute},
		{"EXPLAIN SELECT 1", QueryUnknown},
		{"", QueryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query).Type)
		})
	}
}

func TestClassifyExtractsTables(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			"from single",
			"SELECT id FROM Users",
			[]string{"users"},
		},
		{
			"join",
			"SELECT * FROM orders o JOIN customers c ON o.cid = c.id",
			[]string{"customers", "orders"},
		},
		{
			"insert into",
			"INSERT INTO audit_log (msg) VALUES ('x')",
			[]string{"audit_log"},
		},
		{
			"update",
			"UPDATE accounts SET balance = 0",
			[]string{"accounts"},
		},
		{
			"schema qualified",
			"SELECT 1 FROM public.users",
			[]string{"public.users"},
		},
		{
			"stacked statements",
			"SELECT * FROM users; DROP TABLE users; --",
			[]string{"users"},
		},
		{
			"no tables",
			"SELECT 1",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query).Tables)
		})
	}
}
