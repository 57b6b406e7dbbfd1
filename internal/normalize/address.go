package normalize

import (
	"regexp"
	"strings"
)

// Address holds the parts parsed out of a free-text address line.
type Address struct {
	Street     string
	PostalCode string
	City       string
}

// plzCity matches a German 5-digit postal code followed by a city name.
var plzCity = regexp.MustCompile(`^(\d{5})\s+(.+)$`)

// SplitAddress parses a comma-separated address line. The first segment is
// the street; the last segment yields postal code and city when it matches
// the PLZ pattern, otherwise it is taken as the city wholesale. When no
// address is present the city falls back to fallbackCity (the region being
// scanned).
func SplitAddress(raw, fallbackCity string) Address {
	var addr Address

	if strings.TrimSpace(raw) != "" {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		addr.Street = parts[0]
		if len(parts) >= 2 {
			last := parts[len(parts)-1]
			if m := plzCity.FindStringSubmatch(last); m != nil {
				addr.PostalCode = m[1]
				addr.City = m[2]
			} else {
				addr.City = last
			}
		}
	}

	if addr.City == "" {
		addr.City = fallbackCity
	}
	return addr
}
