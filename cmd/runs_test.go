package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	regionpkg "github.com/sot-platform/discovery-cli/internal/region"
	"github.com/sot-platform/discovery-cli/internal/scheduler"
)

func TestFormatRunLogs(t *testing.T) {
	var buf bytes.Buffer
	formatRunLogs(&buf, []scheduler.RunLogEntry{
		{
			RunDate: "2026-02-26", RegionName: "Berlin", CategoryCode: "financial_advisor",
			RawFound: 25, Duplicates: 4, Approved: 3, CreditsUsed: 6, CostEUR: 1.5,
		},
		{
			RunDate: "2026-02-26", RegionName: "Hamburg", CategoryCode: "tax_consultant",
			CreditsUsed: 6, ErrorMessage: "engine timeout",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Berlin")
	assert.Contains(t, out, "financial_advisor")
	assert.Contains(t, out, "1.50")
	assert.Contains(t, out, "engine timeout")
}

func TestFormatRunLogs_TruncatesLongErrors(t *testing.T) {
	long := "research engine returned a very long diagnostic message that keeps going"

	var buf bytes.Buffer
	formatRunLogs(&buf, []scheduler.RunLogEntry{
		{RunDate: "2026-02-26", RegionName: "Berlin", ErrorMessage: long},
	})

	assert.NotContains(t, buf.String(), long)
	assert.Contains(t, buf.String(), "...")
}

func TestFormatRegions(t *testing.T) {
	now := time.Date(2026, 2, 26, 6, 0, 0, 0, time.UTC)
	scanned := now.Add(-time.Hour)
	cooldown := now.Add(71 * time.Hour)

	var buf bytes.Buffer
	formatRegions(&buf, []regionpkg.Region{
		{
			Name: "Berlin", PostalPrefix: "1", PriorityScore: 365,
			LastScannedAt: &scanned, CooldownUntil: &cooldown,
			CategoryPointer: 4, TotalContacts: 120, ApprovedContacts: 17,
		},
		{Name: "Hamburg", PostalPrefix: "2", PriorityScore: 184},
	}, now)

	out := buf.String()
	assert.Contains(t, out, "Berlin")
	assert.Contains(t, out, "365")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "-")
}
