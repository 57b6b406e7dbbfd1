package normalize

import "strings"

// Email canonicalizes an email address for identity comparison: trimmed and
// lowercased. No syntactic validation happens here; presence of an @ is only
// rewarded later by the confidence scorer.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
