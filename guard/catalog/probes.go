package catalog

import "regexp"

// injectionProbes is the separate probe list consulted by the Scope
// override and by the semantic-prompt sanitizer. It is deliberately
// narrower than the prompt-injection family: tag-injection characters
// and the instruction-override phrasings only.
var injectionProbes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|rules?|directives?)`),
	regexp.MustCompile(`(?i)(disregard|forget|discard)\s+(all\s+|any\s+)?(previous|prior|above|your)\s+(instructions?|rules?|training)`),
	regexp.MustCompile(`(?i)new\s+instructions?\s*:`),
	regexp.MustCompile(`[<>&"']`),
}

// InjectionProbe reports whether the text trips the injection-probe
// list. The tag-character probe fires on any of < > & " ' because those
// are the characters the sanitizer must escape before the text can be
// embedded in a classifier prompt.
func InjectionProbe(text string) bool {
	for _, re := range injectionProbes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// InstructionOverrideProbe reports whether the text matches the
// instruction-override phrasings, excluding the bare tag-character
// probe. The Scope override uses this narrower check so that a lone
// quote character does not demote the gate.
func InstructionOverrideProbe(text string) bool {
	for _, re := range injectionProbes[:len(injectionProbes)-1] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// TagCharacterProbe reports whether the text contains any of the five
// markup characters the sanitizer escapes.
func TagCharacterProbe(text string) bool {
	return injectionProbes[len(injectionProbes)-1].MatchString(text)
}
