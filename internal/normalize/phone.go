// Package normalize turns raw scraped contact fields into canonical forms.
// All functions are best-effort and never fail: malformed input degrades to
// whatever digits or tokens could be salvaged.
package normalize

import "strings"

// Phone canonicalizes a raw phone string. A leading + is preserved; a
// national 0-prefixed number is rewritten to +49; a bare 49-prefixed number
// of plausible length gains a +. Anything else passes through digits-only.
func Phone(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}

	hasPlus := strings.HasPrefix(cleaned, "+")

	var b strings.Builder
	for _, r := range cleaned {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case hasPlus:
		return "+" + digits
	case strings.HasPrefix(digits, "0") && len(digits) >= 6:
		return "+49" + digits[1:]
	case strings.HasPrefix(digits, "49") && len(digits) >= 10:
		return "+" + digits
	default:
		return digits
	}
}
