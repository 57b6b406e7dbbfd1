package normalize

import "strings"

// Domain reduces a raw website URL to its bare host: lowercase, no scheme,
// no www. prefix, no path/query/fragment, no trailing dot.
func Domain(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}

	cleaned = strings.TrimPrefix(cleaned, "https://")
	cleaned = strings.TrimPrefix(cleaned, "http://")
	cleaned = strings.TrimPrefix(cleaned, "www.")

	if i := strings.IndexAny(cleaned, "/?#"); i >= 0 {
		cleaned = cleaned[:i]
	}

	return strings.TrimSuffix(cleaned, ".")
}
