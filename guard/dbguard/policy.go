// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package dbguard

import (
	"fmt"

	"aegisgate/platform/guard/catalog"
	"aegisgate/platform/shared/types"
)

// Policy controls what DatabaseGuard denies. The zero value denies
// nothing but injection; start from a preset.
type Policy struct {
	Name string `yaml:"name" json:"name"`

	BlockDestructive   bool `yaml:"block_destructive" json:"block_destructive"`
	BlockSchemaChanges bool `yaml:"block_schema_changes" json:"block_schema_changes"`
	BlockSelectStar    bool `yaml:"block_select_star" json:"block_select_star"`
	BlockUnion         bool `yaml:"block_union" json:"block_union"`
	BlockSensitiveData bool `yaml:"block_sensitive_data" json:"block_sensitive_data"`

	RequireWhereOnUpdate bool `yaml:"require_where_on_update" json:"require_where_on_update"`
	RequireWhereOnDelete bool `yaml:"require_where_on_delete" json:"require_where_on_delete"`
	RequireLimitOnSelect bool `yaml:"require_limit_on_select" json:"require_limit_on_select"`

	// StrictMode makes ValidateStrict the intended entry point: denies
	// surface as a QueryBlockedError instead of a verdict to inspect.
	StrictMode bool `yaml:"strict_mode" json:"strict_mode"`

	// AllowedTables, when non-empty, denies access to any table outside
	// it. BlockedTables denies the listed tables regardless.
	AllowedTables map[string]bool `yaml:"allowed_tables,omitempty" json:"allowed_tables,omitempty"`
	BlockedTables map[string]bool `yaml:"blocked_tables,omitempty" json:"blocked_tables,omitempty"`

	// SensitiveColumns extends the built-in sensitive catalog.
	SensitiveColumns []string `yaml:"sensitive_columns,omitempty" json:"sensitive_columns,omitempty"`

	// CustomPatterns are additional deny patterns evaluated alongside
	// the catalog.
	CustomPatterns []catalog.Declaration `yaml:"-" json:"-"`
}

// StrictPolicy denies destructive statements, schema changes, wide
// reads, unions, and sensitive-column access, and requires WHERE and
// LIMIT predicates.
func StrictPolicy() Policy {
	return Policy{
		Name:                 "strict",
		BlockDestructive:     true,
		BlockSchemaChanges:   true,
		BlockSelectStar:      true,
		BlockUnion:           true,
		BlockSensitiveData:   true,
		RequireWhereOnUpdate: true,
		RequireWhereOnDelete: true,
		RequireLimitOnSelect: true,
		StrictMode:           true,
	}
}

// ModeratePolicy is the balanced default: destructive and schema
// statements are denied, wide reads are allowed, sensitive matches are
// observed but not denied.
func ModeratePolicy() Policy {
	return Policy{
		Name:                 "moderate",
		BlockDestructive:     true,
		BlockSchemaChanges:   true,
		BlockUnion:           true,
		RequireWhereOnUpdate: true,
		RequireWhereOnDelete: true,
	}
}

// PermissivePolicy denies only injection. UNION stays blocked so the
// injection protection cannot be laundered through a permissive
// deployment.
func PermissivePolicy() Policy {
	return Policy{
		Name:       "permissive",
		BlockUnion: true,
	}
}

// PolicyByName resolves a preset by name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "strict":
		return StrictPolicy(), nil
	case "moderate", "":
		return ModeratePolicy(), nil
	case "permissive":
		return PermissivePolicy(), nil
	}
	return Policy{}, fmt.Errorf("%w: unknown policy %q", types.ErrInvalidConfig, name)
}
