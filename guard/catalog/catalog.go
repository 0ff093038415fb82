package catalog

import (
	"fmt"
	"regexp"
	"sync"

	"aegisgate/platform/shared/types"
)

// Catalog holds the immutable corpus of detection and sensitive-data
// patterns. It is constructed once at startup and shared by read-only
// reference; all lookup methods are safe for concurrent use.
type Catalog struct {
	patterns  []*DetectionPattern
	byType    map[ViolationType][]*DetectionPattern
	byGate    map[types.Gate][]*DetectionPattern
	byID      map[string]*DetectionPattern
	sensitive []*SensitivePattern
}

// New compiles the given declarations into a catalog. Every regex is
// compiled eagerly; the first compile error or duplicate id aborts
// construction.
func New(decls []Declaration, sensitive []SensitiveDeclaration) (*Catalog, error) {
	c := &Catalog{
		byType: make(map[ViolationType][]*DetectionPattern),
		byGate: make(map[types.Gate][]*DetectionPattern),
		byID:   make(map[string]*DetectionPattern),
	}

	for _, d := range decls {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: declaration with empty id (regex %q)", types.ErrInvalidConfig, d.Regex)
		}
		if _, exists := c.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %s", types.ErrDuplicatePatternID, d.ID)
		}
		if !d.Risk.IsValid() {
			return nil, fmt.Errorf("%w: pattern %s has invalid risk %q", types.ErrInvalidConfig, d.ID, d.Risk)
		}
		if !d.Gate.IsValid() {
			return nil, fmt.Errorf("%w: pattern %s has invalid gate %q", types.ErrInvalidConfig, d.ID, d.Gate)
		}

		src := d.Regex
		if !d.CaseSensitive {
			src = "(?i)" + src
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrPatternCompile, d.ID, err)
		}

		p := &DetectionPattern{
			ID:          d.ID,
			Regex:       re,
			Type:        d.Type,
			Gate:        d.Gate,
			Risk:        d.Risk,
			Description: d.Description,
			Remediation: d.Remediation,
		}
		c.patterns = append(c.patterns, p)
		c.byType[d.Type] = append(c.byType[d.Type], p)
		c.byGate[d.Gate] = append(c.byGate[d.Gate], p)
		c.byID[d.ID] = p
	}

	for _, s := range sensitive {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: sensitive declaration with empty id", types.ErrInvalidConfig)
		}
		if _, exists := c.byID[s.ID]; exists {
			return nil, fmt.Errorf("%w: %s", types.ErrDuplicatePatternID, s.ID)
		}
		re, err := regexp.Compile("(?i)" + s.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrPatternCompile, s.ID, err)
		}
		c.sensitive = append(c.sensitive, &SensitivePattern{
			ID:       s.ID,
			Category: s.Category,
			Regex:    re,
		})
		// Reserve the id so detection and sensitive patterns share one
		// namespace.
		c.byID[s.ID] = nil
	}

	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide catalog built from the built-in
// declarations. It is constructed on first use and shared thereafter.
// The built-in declarations are covered by tests; a compile failure
// here is a programming error, so Default panics instead of returning
// an error.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(defaultDeclarations(), sensitiveDeclarations())
		if err != nil {
			panic(fmt.Sprintf("catalog: built-in patterns failed to compile: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// ByType returns the patterns of the given violation type in declared
// order, so "first match wins" is deterministic.
func (c *Catalog) ByType(t ViolationType) []*DetectionPattern {
	return c.byType[t]
}

// ByGate returns the patterns attributed to the given gate in declared
// order.
func (c *Catalog) ByGate(g types.Gate) []*DetectionPattern {
	return c.byGate[g]
}

// ByMinRisk returns all patterns at or above the given risk level, in
// declared order.
func (c *Catalog) ByMinRisk(min types.RiskLevel) []*DetectionPattern {
	var result []*DetectionPattern
	for _, p := range c.patterns {
		if p.Risk.AtLeast(min) {
			result = append(result, p)
		}
	}
	return result
}

// Lookup returns the detection pattern with the given id, or nil.
func (c *Catalog) Lookup(id string) *DetectionPattern {
	return c.byID[id]
}

// Len returns the number of detection patterns in the catalog.
func (c *Catalog) Len() int {
	return len(c.patterns)
}

// Patterns returns all detection patterns in declared order.
func (c *Catalog) Patterns() []*DetectionPattern {
	return c.patterns
}
