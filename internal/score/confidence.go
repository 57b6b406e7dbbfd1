// Package score computes the confidence heuristic for discovered candidates.
package score

import (
	"math"
	"strings"
)

// Fields holds the normalized candidate fields the scorer inspects.
type Fields struct {
	FirstName  string
	LastName   string
	Company    string
	Street     string
	PostalCode string
	City       string
	Phone      string // normalized, ideally E.164
	Domain     string
	Email      string
}

// Confidence maps field presence and quality to a score in [0, 1], rounded
// to two decimals. This is a deterministic weighted heuristic with calibrated
// thresholds, not a probability model; the constants are not individually
// meaningful and retuning them is a product decision.
func Confidence(f Fields, sourceCount int) float64 {
	var s float64

	if f.Company != "" {
		s += 0.10
	}

	switch {
	case f.FirstName != "" && f.LastName != "":
		s += 0.15
	case f.LastName != "":
		s += 0.075
	}

	if f.City != "" {
		s += 0.06
	}
	if f.PostalCode != "" {
		s += 0.06
	}
	if f.Street != "" {
		s += 0.08
	}

	switch {
	case strings.HasPrefix(f.Phone, "+") && len(f.Phone) >= 10:
		s += 0.15
	case len(f.Phone) >= 6:
		s += 0.075
	}

	switch {
	case strings.Contains(f.Domain, "."):
		s += 0.15
	case strings.Contains(f.Email, "@"):
		s += 0.09
	}

	switch {
	case sourceCount >= 3:
		s += 0.10
	case sourceCount >= 2:
		s += 0.06
	default:
		s += 0.03
	}

	filled := 0
	for _, v := range []string{f.FirstName, f.LastName, f.Company, f.Email, f.Phone, f.Domain, f.City} {
		if v != "" {
			filled++
		}
	}
	s += math.Min(0.15, float64(filled)/5*0.15)

	s = math.Max(0, math.Min(1, s))
	return math.Round(s*100) / 100
}
