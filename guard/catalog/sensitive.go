package catalog

import "regexp"

// SensitiveCategory classifies a sensitive-column pattern.
type SensitiveCategory string

const (
	SensitiveAuthentication SensitiveCategory = "authentication"
	SensitiveFinancial      SensitiveCategory = "financial"
	SensitiveLegal          SensitiveCategory = "legal"
	SensitivePII            SensitiveCategory = "pii"
	SensitiveHealth         SensitiveCategory = "health"
)

// SensitiveDeclaration is the source form of a sensitive-column pattern.
// The regex must match on identifier token boundaries; declarations are
// compiled case-insensitive.
type SensitiveDeclaration struct {
	ID       string
	Regex    string
	Category SensitiveCategory
}

// SensitivePattern is the compiled form of a SensitiveDeclaration.
type SensitivePattern struct {
	ID       string
	Category SensitiveCategory
	Regex    *regexp.Regexp
}

// SensitiveMatch reports one sensitive identifier found in a text.
type SensitiveMatch struct {
	Category  SensitiveCategory `json:"category"`
	PatternID string            `json:"pattern_id"`
	Token     string            `json:"token"`
	Start     int               `json:"start"`
	End       int               `json:"end"`
}

// Sensitive scans the text against the sensitive-column catalog and
// returns every match with its category and span. Matches are returned
// in declared pattern order.
func (c *Catalog) Sensitive(text string) []SensitiveMatch {
	var matches []SensitiveMatch
	for _, p := range c.sensitive {
		for _, span := range p.Regex.FindAllStringIndex(text, -1) {
			matches = append(matches, SensitiveMatch{
				Category:  p.Category,
				PatternID: p.ID,
				Token:     text[span[0]:span[1]],
				Start:     span[0],
				End:       span[1],
			})
		}
	}
	return matches
}

// sensitiveDeclarations returns the built-in sensitive-column patterns.
// Matching is on identifier token boundaries so that "password" does
// not fire inside "passwordless_migration_notes".
func sensitiveDeclarations() []SensitiveDeclaration {
	return []SensitiveDeclaration{
		// Authentication material
		{ID: "sens_password", Regex: `\b(password|passwd|pwd_hash|password_hash)\b`, Category: SensitiveAuthentication},
		{ID: "sens_secret", Regex: `\b(secret|secret_key|private_key)\b`, Category: SensitiveAuthentication},
		{ID: "sens_token", Regex: `\b(access_token|refresh_token|session_token|auth_token)\b`, Category: SensitiveAuthentication},
		{ID: "sens_api_key", Regex: `\b(api_key|apikey|client_secret)\b`, Category: SensitiveAuthentication},
		{ID: "sens_mfa", Regex: `\b(mfa_secret|totp_seed|otp_secret)\b`, Category: SensitiveAuthentication},

		// Financial identifiers
		{ID: "sens_card", Regex: `\b(card_number|credit_card|cc_number|cvv|cvc)\b`, Category: SensitiveFinancial},
		{ID: "sens_bank", Regex: `\b(account_number|routing_number|iban|swift_code)\b`, Category: SensitiveFinancial},
		{ID: "sens_salary", Regex: `\b(salary|compensation|net_worth)\b`, Category: SensitiveFinancial},
		{ID: "sens_tax", Regex: `\b(tax_id|ein|vat_number)\b`, Category: SensitiveFinancial},

		// Legal
		{ID: "sens_legal_case", Regex: `\b(case_number|docket_number|settlement_amount)\b`, Category: SensitiveLegal},
		{ID: "sens_legal_privilege", Regex: `\b(privileged_notes|attorney_notes)\b`, Category: SensitiveLegal},

		// Personally identifiable information
		{ID: "sens_ssn", Regex: `\b(ssn|social_security|social_security_number|national_id)\b`, Category: SensitivePII},
		{ID: "sens_dob", Regex: `\b(date_of_birth|dob|birthdate)\b`, Category: SensitivePII},
		{ID: "sens_passport", Regex: `\b(passport_number|passport_no|drivers_license)\b`, Category: SensitivePII},
		{ID: "sens_contact", Regex: `\b(home_address|personal_email|personal_phone)\b`, Category: SensitivePII},

		// Health
		{ID: "sens_health_dx", Regex: `\b(diagnosis|diagnosis_code|icd_code)\b`, Category: SensitiveHealth},
		{ID: "sens_health_rx", Regex: `\b(prescription|medication|dosage)\b`, Category: SensitiveHealth},
		{ID: "sens_health_record", Regex: `\b(medical_record|mrn|patient_id)\b`, Category: SensitiveHealth},
	}
}
