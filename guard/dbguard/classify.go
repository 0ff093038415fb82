// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package dbguard

import (
	"regexp"
	"sort"
	"strings"
)

// QueryType is the leading-keyword classification of a SQL statement.
type QueryType string

const (
	QuerySelect   QueryType = "select"
	QueryInsert   QueryType = "insert"
	QueryUpdate   QueryType = "update"
	QueryDelete   QueryType = "delete"
	QueryCreate   QueryType = "create"
	QueryDrop     QueryType = "drop"
	QueryAlter    QueryType = "alter"
	QueryTruncate QueryType = "truncate"
	QueryExecute  QueryType = "execute"
	QueryUnknown  QueryType = "unknown"
)

// Classification is the parsed shape of a query: its type and the
// tables it touches, lower-cased.
type Classification struct {
	Type   QueryType `json:"type"`
	Tables []string  `json:"tables"`
}

// Table references are pulled with four regex families. Identifiers
// may be quoted or schema-qualified.
var tableExtractors = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bFROM\s+(?:ONLY\s+)?["'` + "`" + `]?([a-zA-Z_][a-zA-Z0-9_.]*)`),
	regexp.MustCompile(`(?i)\bJOIN\s+["'` + "`" + `]?([a-zA-Z_][a-zA-Z0-9_.]*)`),
	regexp.MustCompile(`(?i)\bINTO\s+["'` + "`" + `]?([a-zA-Z_][a-zA-Z0-9_.]*)`),
	regexp.MustCompile(`(?i)\bUPDATE\s+(?:ONLY\s+)?["'` + "`" + `]?([a-zA-Z_][a-zA-Z0-9_.]*)`),
}

// Classify determines the query type from its leading keyword and
// extracts the referenced tables.
func Classify(query string) Classification {
	c := Classification{Type: QueryUnknown}

	trimmed := strings.TrimSpace(query)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return c
	}

	switch keyword := strings.ToUpper(fields[0]); {
	case keyword == "SELECT":
		c.Type = QuerySelect
	case keyword == "INSERT":
		c.Type = QueryInsert
	case keyword == "UPDATE":
		c.Type = QueryUpdate
	case keyword == "DELETE":
		c.Type = QueryDelete
	case keyword == "CREATE":
		c.Type = QueryCreate
	case keyword == "DROP":
		c.Type = QueryDrop
	case keyword == "ALTER":
		c.Type = QueryAlter
	case keyword == "TRUNCATE":
		c.Type = QueryTruncate
	case strings.HasPrefix(keyword, "EXEC"):
		c.Type = QueryExecute
	}

	c.Tables = extractTables(query)
	return c
}

// extractTables returns the distinct lower-cased table names referenced
// by the query, sorted for determinism.
func extractTables(query string) []string {
	seen := make(map[string]bool)
	for _, re := range tableExtractors {
		for _, m := range re.FindAllStringSubmatch(query, -1) {
			name := strings.ToLower(m[1])
			if !sqlKeyword(name) {
				seen[name] = true
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	tables := make([]string, 0, len(seen))
	for name := range seen {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	return tables
}

// sqlKeyword filters keywords that the extraction regexes can capture
// in place of an identifier.
func sqlKeyword(s string) bool {
	switch s {
	case "select", "where", "set", "values", "outfile", "dumpfile":
		return true
	}
	return false
}
