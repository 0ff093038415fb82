// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"time"

	"aegisgate/platform/shared/types"
)

// Default configuration values.
const (
	DefaultValidationTimeout = 30 * time.Second
	DefaultMaxTextSizeBytes  = 50000
	DefaultMaxSemanticBytes  = 32000
)

// Config controls a LayeredValidator. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// UseHeuristic runs the THSP gate engine. On by default.
	UseHeuristic bool `yaml:"use_heuristic" json:"use_heuristic"`

	// UseSemantic additionally consults the SemanticClient.
	UseSemantic bool `yaml:"use_semantic" json:"use_semantic"`

	// SkipSemanticIfHeuristicBlocks returns immediately on a heuristic
	// deny instead of spending a semantic call on it.
	SkipSemanticIfHeuristicBlocks bool `yaml:"skip_semantic_if_heuristic_blocks" json:"skip_semantic_if_heuristic_blocks"`

	// FailClosed treats semantic errors and timeouts as deny. The
	// default is fail-open for availability; construction logs a
	// warning and sets a metric when that default is chosen.
	FailClosed bool `yaml:"fail_closed" json:"fail_closed"`

	// ValidationTimeout caps the wall-clock time of the semantic call.
	ValidationTimeout time.Duration `yaml:"validation_timeout" json:"validation_timeout"`

	// MaxTextSizeBytes denies inputs above this size with a size
	// violation instead of scanning them.
	MaxTextSizeBytes int `yaml:"max_text_size_bytes" json:"max_text_size_bytes"`

	// MaxSemanticBytes truncates the sanitized payload sent to the
	// semantic client.
	MaxSemanticBytes int `yaml:"max_semantic_bytes" json:"max_semantic_bytes"`

	// LogValidations emits a structured audit entry and stats per call.
	LogValidations bool `yaml:"log_validations" json:"log_validations"`
}

// DefaultConfig returns the default pipeline configuration: heuristic
// only, fail-open, 30s semantic timeout, 50 KB size cap.
func DefaultConfig() Config {
	return Config{
		UseHeuristic:                  true,
		UseSemantic:                   false,
		SkipSemanticIfHeuristicBlocks: true,
		FailClosed:                    false,
		ValidationTimeout:             DefaultValidationTimeout,
		MaxTextSizeBytes:              DefaultMaxTextSizeBytes,
		MaxSemanticBytes:              DefaultMaxSemanticBytes,
		LogValidations:                true,
	}
}

// Validate checks config invariants. Invalid configuration is fatal at
// construction and never recoverable at call time.
func (c Config) Validate() error {
	if !c.UseHeuristic && !c.UseSemantic {
		return fmt.Errorf("%w: at least one validation layer must be enabled", types.ErrInvalidConfig)
	}
	if c.ValidationTimeout <= 0 {
		return fmt.Errorf("%w: validation timeout must be positive", types.ErrInvalidConfig)
	}
	if c.MaxTextSizeBytes <= 0 {
		return fmt.Errorf("%w: max text size must be positive", types.ErrInvalidConfig)
	}
	if c.MaxSemanticBytes <= 0 {
		return fmt.Errorf("%w: max semantic payload size must be positive", types.ErrInvalidConfig)
	}
	return nil
}

// WithSemantic returns a copy with the semantic layer enabled.
func (c Config) WithSemantic() Config {
	c.UseSemantic = true
	return c
}

// WithFailClosed returns a copy that treats semantic failures as deny.
func (c Config) WithFailClosed() Config {
	c.FailClosed = true
	return c
}

// WithTimeout returns a copy with the given semantic timeout.
func (c Config) WithTimeout(d time.Duration) Config {
	c.ValidationTimeout = d
	return c
}
