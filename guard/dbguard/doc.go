// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package dbguard decides allow or deny for SQL query strings against
// a policy: injection patterns, destructive statements, table access
// lists, required predicates, and sensitive-column scanning.
package dbguard
