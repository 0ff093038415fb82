// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package dbguard

import (
	"regexp"
	"strings"
	"sync"

	"aegisgate/platform/guard/audit"
	"aegisgate/platform/guard/catalog"
	"aegisgate/platform/shared/logger"
	"aegisgate/platform/shared/types"
)

// QueryVerdict is the result of validating one SQL query.
type QueryVerdict struct {
	Allowed        bool                     `json:"allowed"`
	Classification Classification           `json:"classification"`
	Risk           types.RiskLevel          `json:"risk"`
	Violations     []string                 `json:"violations,omitempty"`
	Sensitive      []catalog.SensitiveMatch `json:"sensitive,omitempty"`
}

var (
	whereClause  = regexp.MustCompile(`(?i)\bWHERE\b`)
	limitClause  = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	selectStarRE = regexp.MustCompile(`(?i)SELECT\s+\*`)
	unionRE      = regexp.MustCompile(`(?i)\bUNION\b`)
)

// DatabaseGuard decides allow or deny for SQL query strings against a
// policy. Safe for concurrent use.
type DatabaseGuard struct {
	policy  Policy
	catalog *catalog.Catalog
	custom  *catalog.Catalog
	log     *logger.Logger
	trail   *audit.Trail
	metrics *audit.Metrics

	mu      sync.Mutex
	total   int64
	allowed int64
}

// DBGuardOption configures a DatabaseGuard.
type DBGuardOption func(*DatabaseGuard)

// WithDBCatalog overrides the pattern catalog.
func WithDBCatalog(c *catalog.Catalog) DBGuardOption {
	return func(g *DatabaseGuard) { g.catalog = c }
}

// WithDBLogger injects the structured logger.
func WithDBLogger(l *logger.Logger) DBGuardOption {
	return func(g *DatabaseGuard) { g.log = l }
}

// WithDBTrail attaches a bounded audit trail.
func WithDBTrail(t *audit.Trail) DBGuardOption {
	return func(g *DatabaseGuard) { g.trail = t }
}

// WithDBMetrics injects the shared Prometheus collectors.
func WithDBMetrics(m *audit.Metrics) DBGuardOption {
	return func(g *DatabaseGuard) { g.metrics = m }
}

// NewDatabaseGuard builds a guard for the given policy. Custom policy
// patterns are compiled eagerly; a compile failure aborts construction.
func NewDatabaseGuard(policy Policy, opts ...DBGuardOption) (*DatabaseGuard, error) {
	g := &DatabaseGuard{
		policy:  policy,
		catalog: catalog.Default(),
		log:     logger.New("dbguard"),
		metrics: audit.NopMetrics(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if len(policy.CustomPatterns) > 0 {
		custom, err := catalog.New(policy.CustomPatterns, nil)
		if err != nil {
			return nil, err
		}
		g.custom = custom
	}
	return g, nil
}

// Validate runs the policy checks over a query and returns the verdict.
func (g *DatabaseGuard) Validate(query string) *QueryVerdict {
	verdict := &QueryVerdict{
		Allowed:        true,
		Classification: Classify(query),
		Risk:           types.RiskSafe,
	}

	g.checkPatterns(query, verdict)
	g.checkTables(verdict)
	g.checkPredicates(query, verdict)
	g.checkSensitive(query, verdict)

	if len(verdict.Violations) > 0 {
		verdict.Allowed = false
	} else if len(verdict.Sensitive) > 0 {
		verdict.Risk = types.MaxRisk(verdict.Risk, types.RiskMedium)
	}

	g.record(verdict, query)
	return verdict
}

// ValidateStrict is Validate with denies raised as a QueryBlockedError.
func (g *DatabaseGuard) ValidateStrict(query string) (*QueryVerdict, error) {
	verdict := g.Validate(query)
	if !verdict.Allowed {
		return verdict, &types.QueryBlockedError{
			Risk:       verdict.Risk,
			Violations: verdict.Violations,
		}
	}
	return verdict, nil
}

// checkPatterns runs the catalog families enabled by the policy plus
// any custom patterns.
func (g *DatabaseGuard) checkPatterns(query string, verdict *QueryVerdict) {
	g.runFamily(query, verdict, catalog.ViolationSQLInjection)
	if g.policy.BlockDestructive {
		g.runFamily(query, verdict, catalog.ViolationDestructiveOp)
	}
	if g.policy.BlockSchemaChanges {
		g.runFamily(query, verdict, catalog.ViolationSchemaChange)
	}
	if g.policy.BlockSelectStar && selectStarRE.MatchString(query) {
		g.addViolation(verdict, "SELECT * returns every column", types.RiskMedium)
	}
	if g.policy.BlockUnion && unionRE.MatchString(query) {
		g.addViolation(verdict, "UNION combines result sets and is a common injection vehicle", types.RiskHigh)
	}
	if g.custom != nil {
		for _, p := range g.custom.Patterns() {
			if p.Matches(query) {
				g.addViolation(verdict, p.Description, p.Risk)
			}
		}
	}
}

func (g *DatabaseGuard) runFamily(query string, verdict *QueryVerdict, family catalog.ViolationType) {
	for _, p := range g.catalog.ByType(family) {
		if p.Matches(query) {
			g.addViolation(verdict, p.Description, p.Risk)
		}
	}
}

// checkTables enforces the table allowlist and blocklist.
func (g *DatabaseGuard) checkTables(verdict *QueryVerdict) {
	for _, table := range verdict.Classification.Tables {
		if len(g.policy.AllowedTables) > 0 && !g.policy.AllowedTables[table] {
			g.addViolation(verdict, "unauthorized table access: "+table, types.RiskHigh)
		}
		if g.policy.BlockedTables[table] {
			g.addViolation(verdict, "blocked table access: "+table, types.RiskHigh)
		}
	}
}

// checkPredicates enforces required WHERE and LIMIT clauses.
func (g *DatabaseGuard) checkPredicates(query string, verdict *QueryVerdict) {
	hasWhere := whereClause.MatchString(query)

	switch verdict.Classification.Type {
	case QueryUpdate:
		if g.policy.RequireWhereOnUpdate && !hasWhere {
			g.addViolation(verdict, "UPDATE without WHERE clause modifies every row", types.RiskHigh)
		}
	case QueryDelete:
		if g.policy.RequireWhereOnDelete && !hasWhere {
			g.addViolation(verdict, "DELETE without WHERE clause removes every row", types.RiskCritical)
		}
	case QuerySelect:
		if g.policy.RequireLimitOnSelect && !limitClause.MatchString(query) {
			g.addViolation(verdict, "SELECT without LIMIT clause", types.RiskMedium)
		}
	}
}

// checkSensitive scans for sensitive column references.
func (g *DatabaseGuard) checkSensitive(query string, verdict *QueryVerdict) {
	matches := g.catalog.Sensitive(query)
	lower := strings.ToLower(query)
	for _, col := range g.policy.SensitiveColumns {
		col = strings.ToLower(col)
		if idx := strings.Index(lower, col); idx >= 0 {
			matches = append(matches, catalog.SensitiveMatch{
				Category:  catalog.SensitivePII,
				PatternID: "policy_column",
				Token:     col,
				Start:     idx,
				End:       idx + len(col),
			})
		}
	}
	if len(matches) == 0 {
		return
	}

	verdict.Sensitive = matches
	if g.policy.BlockSensitiveData {
		g.addViolation(verdict, "query touches sensitive columns", types.RiskHigh)
	}
}

func (g *DatabaseGuard) addViolation(verdict *QueryVerdict, cause string, risk types.RiskLevel) {
	verdict.Violations = append(verdict.Violations, cause)
	verdict.Risk = types.MaxRisk(verdict.Risk, risk)
}

// record updates counters, metrics, and the audit trail.
func (g *DatabaseGuard) record(verdict *QueryVerdict, query string) {
	g.mu.Lock()
	g.total++
	if verdict.Allowed {
		g.allowed++
	}
	g.mu.Unlock()

	decision := "allow"
	if !verdict.Allowed {
		decision = "deny"
	}
	g.metrics.ValidationsTotal.WithLabelValues("dbguard", decision).Inc()

	if g.trail != nil {
		entry := audit.NewEntry("dbguard", decision, verdict.Risk, query)
		entry.Concerns = verdict.Violations
		entry.Identifiers = map[string]string{
			"policy":     g.policy.Name,
			"query_type": string(verdict.Classification.Type),
		}
		g.trail.Append(entry)
	}
	g.log.Debug("query decision", map[string]interface{}{
		"policy":     g.policy.Name,
		"decision":   decision,
		"risk":       string(verdict.Risk),
		"query_type": string(verdict.Classification.Type),
	})
}

// Stats returns the guard's counters.
func (g *DatabaseGuard) Stats() (total, allowed int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total, g.allowed
}
