package catalog

import "aegisgate/platform/shared/types"

// defaultDeclarations returns the built-in detection patterns. The
// catalog is partitioned by violation type and attributed to the four
// THSP gates; within a family, declaration order is match order.
func defaultDeclarations() []Declaration {
	decls := []Declaration{}
	decls = append(decls, sqlInjectionDeclarations()...)
	decls = append(decls, destructiveDeclarations()...)
	decls = append(decls, schemaDeclarations()...)
	decls = append(decls, excessiveAccessDeclarations()...)
	decls = append(decls, promptInjectionDeclarations()...)
	decls = append(decls, harmfulContentDeclarations()...)
	decls = append(decls, cryptoRiskDeclarations()...)
	decls = append(decls, deceptionDeclarations()...)
	decls = append(decls, purposeDeclarations()...)
	return decls
}

// sqlInjectionDeclarations covers the classic injection techniques:
// UNION pulls, tautologies, stacked statements, comment truncation,
// time-delay probes, file exfiltration, and schema enumeration.
func sqlInjectionDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "sqli_union_select",
			Regex:       `\bUNION\s+(ALL\s+)?SELECT\b`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "UNION SELECT used to extract data across queries",
			Remediation: "Use parameterized queries; never concatenate user input into SQL",
		},
		{
			ID:          "sqli_or_tautology",
			Regex:       `\bOR\s+['"]?\d+['"]?\s*=\s*['"]?\d+['"]?`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Always-true OR condition (OR 1=1)",
			Remediation: "Use parameterized queries",
		},
		{
			ID:          "sqli_or_string_tautology",
			Regex:       `\bOR\s+['"][^'"]*['"]\s*=\s*['"][^'"]*['"]`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "Always-true OR string comparison (OR 'a'='a')",
			Remediation: "Use parameterized queries",
		},
		{
			ID:          "sqli_stacked_statement",
			Regex:       `;\s*(SELECT|INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|GRANT|EXEC|EXECUTE)\b`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Stacked query after statement terminator",
			Remediation: "Disable multi-statement execution on the connection",
		},
		{
			ID:          "sqli_trailing_comment",
			Regex:       `(--|#|/\*)[^\r\n]*$`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "Trailing SQL comment truncating the remainder of the query",
			Remediation: "Reject queries carrying trailing comment markers",
		},
		{
			ID:          "sqli_sleep",
			Regex:       `\b(SLEEP|PG_SLEEP)\s*\(\s*\d+`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Time-delay function used for blind injection probing",
		},
		{
			ID:          "sqli_benchmark",
			Regex:       `\bBENCHMARK\s*\(\s*\d+\s*,`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "BENCHMARK used for time-based blind injection",
		},
		{
			ID:          "sqli_waitfor_delay",
			Regex:       `\bWAITFOR\s+DELAY\s+['"][^'"]+['"]`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "WAITFOR DELAY used for time-based blind injection",
		},
		{
			ID:          "sqli_into_outfile",
			Regex:       `\bINTO\s+(OUT|DUMP)FILE\b`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "INTO OUTFILE/DUMPFILE writing query results to the filesystem",
		},
		{
			ID:          "sqli_load_file",
			Regex:       `\bLOAD_FILE\s*\(`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "LOAD_FILE reading server files through the database",
		},
		{
			ID:          "sqli_information_schema",
			Regex:       `\bINFORMATION_SCHEMA\b`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "INFORMATION_SCHEMA access for database enumeration",
		},
		{
			ID:          "sqli_system_tables",
			Regex:       `\b(sysobjects|syscolumns|sys\.tables|sys\.columns|pg_catalog|mysql\.user)\b`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "System-table access for database enumeration",
		},
		{
			ID:          "sqli_char_assembly",
			Regex:       `\bCHAR\s*\(\s*\d+(\s*,\s*\d+)+\s*\)`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "CHAR() assembly used to obfuscate an injected payload",
		},
		{
			ID:          "sqli_hex_literal",
			Regex:       `0x[0-9a-f]{16,}`,
			Type:        ViolationSQLInjection,
			Gate:        types.GateHarm,
			Risk:        types.RiskMedium,
			Description: "Long hex literal, a common injection obfuscation",
		},
	}
}

// destructiveDeclarations covers operations that destroy data outright.
func destructiveDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "destr_drop_table",
			Regex:       `\bDROP\s+TABLE\b`,
			Type:        ViolationDestructiveOp,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "DROP TABLE statement",
			Remediation: "Run schema changes through a migration pipeline, not the gateway",
		},
		{
			ID:          "destr_drop_database",
			Regex:       `\bDROP\s+(DATABASE|SCHEMA)\b`,
			Type:        ViolationDestructiveOp,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "DROP DATABASE/SCHEMA statement",
		},
		{
			ID:          "destr_drop_index",
			Regex:       `\bDROP\s+INDEX\b`,
			Type:        ViolationDestructiveOp,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "DROP INDEX statement",
		},
		{
			ID:          "destr_truncate",
			Regex:       `\bTRUNCATE\s+TABLE\b`,
			Type:        ViolationDestructiveOp,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "TRUNCATE TABLE statement",
		},
		{
			ID:          "destr_delete_no_where",
			Regex:       `\bDELETE\s+FROM\s+\w+\s*(;|$)`,
			Type:        ViolationDestructiveOp,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "DELETE FROM without a WHERE clause",
			Remediation: "Add a WHERE predicate or use TRUNCATE through a migration",
		},
	}
}

// schemaDeclarations covers structural DDL and privilege changes.
func schemaDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "schema_create",
			Regex:       `\bCREATE\s+(TABLE|DATABASE|SCHEMA|INDEX|VIEW|TRIGGER|PROCEDURE|FUNCTION|USER)\b`,
			Type:        ViolationSchemaChange,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "CREATE of a structural database object",
		},
		{
			ID:          "schema_alter",
			Regex:       `\bALTER\s+(TABLE|DATABASE|SCHEMA|INDEX|VIEW|USER)\b`,
			Type:        ViolationSchemaChange,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "ALTER of a structural database object",
		},
		{
			ID:          "schema_grant_revoke",
			Regex:       `\b(GRANT|REVOKE)\s+`,
			Type:        ViolationSchemaChange,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "GRANT/REVOKE privilege change",
		},
	}
}

// excessiveAccessDeclarations covers queries that pull more data than a
// scoped agent should need.
func excessiveAccessDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "excess_select_star",
			Regex:       `\bSELECT\s+\*\s+FROM\b`,
			Type:        ViolationExcessiveAccess,
			Gate:        types.GateScope,
			Risk:        types.RiskMedium,
			Description: "SELECT * pulls every column of the table",
			Remediation: "Select only the columns the agent needs",
		},
		{
			ID:          "excess_union",
			Regex:       `\bUNION\b`,
			Type:        ViolationExcessiveAccess,
			Gate:        types.GateScope,
			Risk:        types.RiskMedium,
			Description: "UNION combines result sets across queries",
		},
	}
}

// promptInjectionDeclarations covers jailbreaks and boundary
// manipulation. These are attributed to the Scope gate and also drive
// the injection-probe override.
func promptInjectionDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "pi_ignore_instructions",
			Regex:       `ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|rules?|directives?)`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Instruction-override attempt (ignore previous instructions)",
			Remediation: "Treat wrapped content as data, never as instructions",
		},
		{
			ID:          "pi_disregard_instructions",
			Regex:       `(disregard|forget|discard)\s+(all\s+|any\s+)?(previous|prior|above|your)\s+(instructions?|rules?|training)`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Instruction-override attempt (disregard prior rules)",
		},
		{
			ID:          "pi_role_hijack",
			Regex:       `\byou\s+are\s+now\s+(a|an|the|in)\b`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Role hijack (you are now ...)",
		},
		{
			ID:          "pi_pretend",
			Regex:       `\bpretend\s+(to\s+be|you\s+are)\b`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Role hijack (pretend to be ...)",
		},
		{
			ID:          "pi_dan_mode",
			Regex:       `\b(DAN|jailbreak|jailbroken)\s+mode\b`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Jailbreak persona invocation (DAN mode)",
		},
		{
			ID:          "pi_developer_mode",
			Regex:       `\bdeveloper\s+mode\b`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Jailbreak persona invocation (developer mode)",
		},
		{
			ID:          "pi_bypass_safety",
			Regex:       `\b(override|bypass|disable|turn\s+off)\s+(the\s+|your\s+|all\s+)?(safety|safeguards?|filters?|guardrails?|restrictions?|content\s+polic\w+)`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Safety-bypass directive",
		},
		{
			ID:          "pi_system_prompt_extraction",
			Regex:       `(print|reveal|show|repeat|output|tell\s+me)\s+(me\s+)?(your|the)\s+(system\s+prompt|initial\s+instructions?|hidden\s+instructions?)`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "System-prompt extraction attempt",
		},
		{
			ID:          "pi_tag_injection",
			Regex:       `<\s*/?\s*(system|assistant|instructions?|admin)\b[^>]*>`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Structural tag injection in user content",
		},
		{
			ID:          "pi_privilege_escalation",
			Regex:       `\b(grant|give|escalate)\s+(me\s+|yourself\s+)?(admin|root|sudo|elevated)\s+(access|privileges?|permissions?)`,
			Type:        ViolationPromptInjection,
			Gate:        types.GateScope,
			Risk:        types.RiskHigh,
			Description: "Privilege-escalation request",
		},
	}
}

// harmfulContentDeclarations covers requests whose execution causes
// physical, financial, or security damage.
func harmfulContentDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "harm_weapons",
			Regex:       `\b(build|make|construct|assemble)\s+(a\s+|an\s+)?(bomb|explosive|weapon|firearm|silencer)`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Weapon construction request",
		},
		{
			ID:          "harm_violence",
			Regex:       `\bhow\s+to\s+(hurt|harm|kill|poison)\s+(a\s+)?(person|someone|people)`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Request for violence against a person",
		},
		{
			ID:          "harm_malware",
			Regex:       `\b(write|create|generate|build)\s+(a\s+|an\s+|some\s+)?(malware|ransomware|keylogger|rootkit|botnet|computer\s+virus)`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Malware creation request",
		},
		{
			ID:          "harm_exfiltration",
			Regex:       `\b(steal|dump|leak|exfiltrate)\s+(the\s+|all\s+)?(credentials?|passwords?|secrets?|database|customer\s+data|private\s+keys?)`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Data-exfiltration request",
		},
		{
			ID:          "harm_destructive_shell",
			Regex:       `\b(rm\s+-rf\s+/|mkfs\.|dd\s+if=.*of=/dev/)`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Destructive shell command",
		},
		{
			ID:          "harm_honeypot",
			Regex:       `\bhoneypot\s+(token|contract|scheme)\b`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "Honeypot token interaction",
		},
		{
			ID:          "harm_sell_tax",
			Regex:       `\b(high|\d{2,3}\s*%)\s+sell\s+tax\b`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "Token with punitive sell tax",
		},
		{
			ID:          "harm_freeze_authority",
			Regex:       `\bfreeze\s+authority\b`,
			Type:        ViolationHarmfulContent,
			Gate:        types.GateHarm,
			Risk:        types.RiskHigh,
			Description: "Token retaining freeze authority over holders",
		},
	}
}

// cryptoRiskDeclarations covers EVM-level risk markers that appear in
// free text, chiefly the unlimited-approval constants.
func cryptoRiskDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "crypto_unlimited_approval_dec",
			Regex:       `\b115792089237316195423570985008687907853269984665640564039457584007913129639935\b`,
			Type:        ViolationCryptoRisk,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Unlimited ERC-20 approval amount (uint256 max, decimal)",
			Remediation: "Approve only the amount the transaction needs",
		},
		{
			ID:          "crypto_unlimited_approval_hex",
			Regex:       `0x[fF]{64}\b`,
			Type:        ViolationCryptoRisk,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Unlimited ERC-20 approval amount (uint256 max, hex)",
			Remediation: "Approve only the amount the transaction needs",
		},
		{
			ID:          "crypto_negative_one_approval",
			Regex:       `\b(approve|approval|allowance)\b[^\n]{0,32}\s-1\b`,
			Type:        ViolationCryptoRisk,
			Gate:        types.GateHarm,
			Risk:        types.RiskCritical,
			Description: "Approval amount of -1 (unlimited sentinel)",
		},
	}
}

// deceptionDeclarations is the Truth gate family. The gate defaults to
// pass; this list is the curated minimum and truth-pattern curation is
// tracked as future work.
func deceptionDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "truth_fake_documents",
			Regex:       `\b(fake|forged?|counterfeit|fabricated?)\s+(credentials?|documents?|passport|invoice|receipts?|id|identity)`,
			Type:        ViolationDeception,
			Gate:        types.GateTruth,
			Risk:        types.RiskHigh,
			Description: "Fabricated-document scaffolding",
		},
		{
			ID:          "truth_impersonation",
			Regex:       `\bimpersonat\w+\s+(a\s+|an\s+|the\s+)?(bank|official|support\s+agent|government|police)`,
			Type:        ViolationDeception,
			Gate:        types.GateTruth,
			Risk:        types.RiskHigh,
			Description: "Impersonation of an authority",
		},
		{
			ID:          "truth_false_claim",
			Regex:       `\b(make\s+it\s+look|pass\s+it\s+off)\s+(like|as)\s+(official|legitimate|real)`,
			Type:        ViolationDeception,
			Gate:        types.GateTruth,
			Risk:        types.RiskMedium,
			Description: "Request to disguise content as authentic",
		},
	}
}

// purposeDeclarations is the Purpose gate family. Absence of a stated
// purpose is never fatal on its own; these markers only promote risk
// when combined with other flags.
func purposeDeclarations() []Declaration {
	return []Declaration{
		{
			ID:          "purpose_guaranteed_profit",
			Regex:       `\bguaranteed\s+(profits?|returns?|gains?)\b`,
			Type:        ViolationIllegitimatePurpose,
			Gate:        types.GatePurpose,
			Risk:        types.RiskMedium,
			Description: "Guaranteed-profit claim",
		},
		{
			ID:          "purpose_untraceable",
			Regex:       `\b(untraceable|undetectable)\s+(payment|transfer|transaction)s?\b`,
			Type:        ViolationIllegitimatePurpose,
			Gate:        types.GatePurpose,
			Risk:        types.RiskMedium,
			Description: "Untraceable-transfer intent",
		},
		{
			ID:          "purpose_evade_monitoring",
			Regex:       `\b(evade|avoid|circumvent)\s+(detection|monitoring|compliance|audit)`,
			Type:        ViolationIllegitimatePurpose,
			Gate:        types.GatePurpose,
			Risk:        types.RiskMedium,
			Description: "Monitoring-evasion intent",
		},
	}
}
