package catalog

import (
	"regexp"

	"aegisgate/platform/shared/types"
)

// ViolationType classifies what a detection pattern flags.
type ViolationType string

const (
	// ViolationSQLInjection covers UNION, tautology, stacked-statement,
	// time-delay, and exfiltration payloads.
	ViolationSQLInjection ViolationType = "sql_injection"

	// ViolationDestructiveOp covers DROP/TRUNCATE and unbounded
	// DELETE/UPDATE statements.
	ViolationDestructiveOp ViolationType = "destructive_operation"

	// ViolationSchemaChange covers structural DDL and privilege grants.
	ViolationSchemaChange ViolationType = "schema_change"

	// ViolationExcessiveAccess covers SELECT * and UNION data pulls.
	ViolationExcessiveAccess ViolationType = "excessive_access"

	// ViolationPromptInjection covers jailbreaks, role hijacks, bypass
	// directives, and tag-injection markup.
	ViolationPromptInjection ViolationType = "prompt_injection"

	// ViolationHarmfulContent covers weapons, violence, malware, and
	// data-exfiltration requests.
	ViolationHarmfulContent ViolationType = "harmful_content"

	// ViolationDeception covers false-claim and impersonation
	// scaffolding evaluated by the Truth gate.
	ViolationDeception ViolationType = "deception"

	// ViolationCryptoRisk covers unlimited-approval constants and other
	// EVM-level risk markers.
	ViolationCryptoRisk ViolationType = "crypto_risk"

	// ViolationIllegitimatePurpose covers intent markers evaluated by
	// the Purpose gate.
	ViolationIllegitimatePurpose ViolationType = "illegitimate_purpose"
)

// Declaration is the source form of a detection pattern. Declarations
// are compiled eagerly at catalog construction; a compile failure or a
// duplicate id aborts startup.
type Declaration struct {
	// ID is the stable identifier of the pattern. Unique per catalog.
	ID string

	// Regex is the pattern source. Compiled case-insensitive unless
	// CaseSensitive is set.
	Regex string

	// Type classifies the violation the pattern detects.
	Type ViolationType

	// Gate attributes the pattern to one of the four THSP gates.
	Gate types.Gate

	// Risk is the level assigned when the pattern matches.
	Risk types.RiskLevel

	// Description explains what the pattern detects.
	Description string

	// Remediation is an optional hint surfaced on deny verdicts.
	Remediation string

	// CaseSensitive disables the default (?i) compilation.
	CaseSensitive bool
}

// DetectionPattern is the compiled, immutable form of a Declaration.
type DetectionPattern struct {
	ID          string
	Regex       *regexp.Regexp
	Type        ViolationType
	Gate        types.Gate
	Risk        types.RiskLevel
	Description string
	Remediation string
}

// Matches reports whether the pattern matches the text.
func (p *DetectionPattern) Matches(text string) bool {
	return p.Regex.MatchString(text)
}
