// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package config loads the gateway configuration from a YAML file with
// environment variable expansion. Environment variables can be
// referenced using ${VAR_NAME} or ${VAR_NAME:-default} syntax.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"aegisgate/platform/guard/dbguard"
	"aegisgate/platform/guard/pipeline"
	"aegisgate/platform/guard/txguard"
	"aegisgate/platform/shared/types"
)

// GatewayConfig is the root structure of the gateway configuration file.
type GatewayConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Semantic SemanticConfig `yaml:"semantic"`
	Database DatabaseConfig `yaml:"database"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Payments PaymentsConfig `yaml:"payments"`
	Audit    AuditConfig    `yaml:"audit"`
}

// PipelineConfig mirrors pipeline.Config with millisecond timeouts so
// the YAML stays plain integers.
type PipelineConfig struct {
	UseHeuristic                  bool `yaml:"use_heuristic"`
	UseSemantic                   bool `yaml:"use_semantic"`
	SkipSemanticIfHeuristicBlocks bool `yaml:"skip_semantic_if_heuristic_blocks"`
	FailClosed                    bool `yaml:"fail_closed"`
	ValidationTimeoutMs           int  `yaml:"validation_timeout_ms"`
	MaxTextSizeBytes              int  `yaml:"max_text_size_bytes"`
	MaxSemanticBytes              int  `yaml:"max_semantic_bytes"`
	LogValidations                bool `yaml:"log_validations"`
}

// ToPipeline converts the file representation into the runtime config.
func (p PipelineConfig) ToPipeline() pipeline.Config {
	return pipeline.Config{
		UseHeuristic:                  p.UseHeuristic,
		UseSemantic:                   p.UseSemantic,
		SkipSemanticIfHeuristicBlocks: p.SkipSemanticIfHeuristicBlocks,
		FailClosed:                    p.FailClosed,
		ValidationTimeout:             time.Duration(p.ValidationTimeoutMs) * time.Millisecond,
		MaxTextSizeBytes:              p.MaxTextSizeBytes,
		MaxSemanticBytes:              p.MaxSemanticBytes,
		LogValidations:                p.LogValidations,
	}
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	APIKey         string   `yaml:"api_key"`
	JWTSecret      string   `yaml:"jwt_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReadTimeoutMs  int      `yaml:"read_timeout_ms"`
	WriteTimeoutMs int      `yaml:"write_timeout_ms"`
}

// SemanticConfig holds the classifier client settings. The layer is
// active only when Pipeline.UseSemantic is set and APIKey is non-empty.
type SemanticConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// DatabaseConfig selects the query-guard policy.
type DatabaseConfig struct {
	Policy           string   `yaml:"policy"`
	AllowedTables    []string `yaml:"allowed_tables,omitempty"`
	BlockedTables    []string `yaml:"blocked_tables,omitempty"`
	SensitiveColumns []string `yaml:"sensitive_columns,omitempty"`
}

// WalletConfig holds the transaction-guard settings.
type WalletConfig struct {
	Chain            string                 `yaml:"chain"`
	Limits           txguard.SpendingLimits `yaml:"limits"`
	BlockedContracts []string               `yaml:"blocked_contracts,omitempty"`
	AllowedContracts []string               `yaml:"allowed_contracts,omitempty"`
	RedisURL         string                 `yaml:"redis_url,omitempty"`
	BlockUnlimited   bool                   `yaml:"block_unlimited_approvals"`
	RequireChecksums bool                   `yaml:"require_checksums"`
	StrictFiduciary  bool                   `yaml:"strict_fiduciary"`
	RequirePurpose   bool                   `yaml:"require_purpose_for_high_risk"`
	ConfirmHighValue bool                   `yaml:"confirm_high_value"`
}

// PaymentsConfig holds the x402 payment-policy settings.
type PaymentsConfig struct {
	Limits            txguard.SpendingLimits `yaml:"limits"`
	RequireHTTPS      bool                   `yaml:"require_https"`
	AllowUnknown      bool                   `yaml:"allow_unknown_endpoints"`
	BlockedRecipients []string               `yaml:"blocked_recipients,omitempty"`
	BlockedEndpoints  []string               `yaml:"blocked_endpoints,omitempty"`
}

// AuditConfig holds the audit trail and persistence settings.
type AuditConfig struct {
	MaxEntries   int    `yaml:"max_entries"`
	PostgresDSN  string `yaml:"postgres_dsn,omitempty"`
	FallbackPath string `yaml:"fallback_path"`
	QueueSize    int    `yaml:"queue_size"`
	Workers      int    `yaml:"workers"`
}

// Default returns the gateway defaults: port 8090, heuristic-only
// pipeline, moderate database policy, default spending limits.
func Default() GatewayConfig {
	return GatewayConfig{
		Server: ServerConfig{
			Port:           8090,
			AllowedOrigins: []string{"*"},
			ReadTimeoutMs:  15000,
			WriteTimeoutMs: 30000,
		},
		Pipeline: PipelineConfig{
			UseHeuristic:                  true,
			SkipSemanticIfHeuristicBlocks: true,
			ValidationTimeoutMs:           int(pipeline.DefaultValidationTimeout / time.Millisecond),
			MaxTextSizeBytes:              pipeline.DefaultMaxTextSizeBytes,
			MaxSemanticBytes:              pipeline.DefaultMaxSemanticBytes,
			LogValidations:                true,
		},
		Database: DatabaseConfig{Policy: "moderate"},
		Wallet: WalletConfig{
			Chain:            "base",
			Limits:           txguard.DefaultSpendingLimits(),
			BlockUnlimited:   true,
			RequirePurpose:   true,
			ConfirmHighValue: true,
		},
		Payments: PaymentsConfig{
			Limits:       txguard.DefaultSpendingLimits(),
			RequireHTTPS: true,
			AllowUnknown: true,
		},
		Audit: AuditConfig{
			MaxEntries:   1000,
			FallbackPath: "audit_fallback.jsonl",
			QueueSize:    10000,
			Workers:      3,
		},
	}
}

// Load reads and parses the configuration file, expanding environment
// variable references. Fields absent from the file keep their defaults.
func Load(path string) (GatewayConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants before the gateway starts.
func (c GatewayConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", types.ErrInvalidConfig, c.Server.Port)
	}
	if err := c.Pipeline.ToPipeline().Validate(); err != nil {
		return err
	}
	if c.Pipeline.UseSemantic && c.Semantic.APIKey == "" {
		return fmt.Errorf("%w: semantic layer enabled without an API key", types.ErrInvalidConfig)
	}
	if _, err := dbguard.PolicyByName(c.Database.Policy); err != nil {
		return err
	}
	if err := c.Wallet.Limits.Validate(); err != nil {
		return fmt.Errorf("wallet limits: %w", err)
	}
	if err := c.Payments.Limits.Validate(); err != nil {
		return fmt.Errorf("payment limits: %w", err)
	}
	return nil
}

// ReadTimeout returns the server read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMs) * time.Millisecond
}

// WriteTimeout returns the server write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMs) * time.Millisecond
}

// envVarRegex matches ${VAR_NAME} patterns, with optional :-default.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR_NAME} and ${VAR_NAME:-default} references.
// Undefined variables without a default expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultVal
	})
}
