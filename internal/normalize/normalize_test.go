package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"plus preserved", "+49 151 2345678", "+491512345678"},
		{"plus with punctuation", "+49 (0)151/23 45 67 8", "+4901512345678"},
		{"national zero rewritten", "0151 2345678", "+491512345678"},
		{"national zero with slashes", "030/123456", "+4930123456"},
		{"bare 49 gains plus", "491512345678", "+491512345678"},
		{"bare 49 too short stays digits", "4912345", "4912345"},
		{"short zero number stays digits", "01234", "01234"},
		{"letters stripped", "Tel: 0151-2345678", "+491512345678"},
		{"foreign plus kept verbatim", "+43 1 2345678", "+4312345678"},
		{"no leading marker", "1512345678", "1512345678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Phone(tt.input))
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"bare domain", "acme.de", "acme.de"},
		{"scheme stripped", "https://acme.de", "acme.de"},
		{"http scheme stripped", "http://acme.de", "acme.de"},
		{"www stripped", "https://www.acme.de", "acme.de"},
		{"path truncated", "https://acme.de/kontakt", "acme.de"},
		{"query truncated", "acme.de?utm=1", "acme.de"},
		{"fragment truncated", "acme.de#top", "acme.de"},
		{"lowercased", "HTTPS://WWW.Acme.DE/Team", "acme.de"},
		{"trailing dot stripped", "acme.de.", "acme.de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Domain(tt.input))
		})
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "", Email(""))
	assert.Equal(t, "", Email("   "))
	assert.Equal(t, "max@acme.de", Email("  Max@Acme.DE "))
	assert.Equal(t, "not-an-email", Email("Not-An-Email"))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Name
	}{
		{"empty", "", Name{}},
		{"whitespace only", "   ", Name{}},
		{"single token becomes last name", "Schmidt", Name{LastName: "Schmidt"}},
		{"first and last", "Max Schmidt", Name{FirstName: "Max", LastName: "Schmidt"}},
		{"multi-part last name", "Max von der Heide", Name{FirstName: "Max", LastName: "von der Heide"}},
		{"herr salutation", "Herr Max Schmidt", Name{Salutation: "Herr", FirstName: "Max", LastName: "Schmidt"}},
		{"abbreviated salutation", "Hr. Schmidt", Name{Salutation: "Herr", LastName: "Schmidt"}},
		{"frau salutation case-insensitive", "frau Anna Weber", Name{Salutation: "Frau", FirstName: "Anna", LastName: "Weber"}},
		{"fr. abbreviation", "Fr. Weber", Name{Salutation: "Frau", LastName: "Weber"}},
		{"salutation alone", "Herr", Name{Salutation: "Herr"}},
		{"extra whitespace collapsed", "  Max   Schmidt  ", Name{FirstName: "Max", LastName: "Schmidt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitName(tt.input))
		})
	}
}

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback string
		expected Address
	}{
		{
			"full address",
			"Hauptstr. 5, 10115 Berlin",
			"Berlin",
			Address{Street: "Hauptstr. 5", PostalCode: "10115", City: "Berlin"},
		},
		{
			"no plz in last segment",
			"Hauptstr. 5, Berlin",
			"Hamburg",
			Address{Street: "Hauptstr. 5", City: "Berlin"},
		},
		{
			"street only falls back to region",
			"Hauptstr. 5",
			"Berlin",
			Address{Street: "Hauptstr. 5", City: "Berlin"},
		},
		{
			"empty address uses region",
			"",
			"Leipzig",
			Address{City: "Leipzig"},
		},
		{
			"three segments uses first and last",
			"Hauptstr. 5, Hinterhof, 04109 Leipzig",
			"Leipzig",
			Address{Street: "Hauptstr. 5", PostalCode: "04109", City: "Leipzig"},
		},
		{
			"four digit code is not a plz",
			"Hauptstr. 5, 1010 Wien",
			"Wien",
			Address{Street: "Hauptstr. 5", City: "1010 Wien"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitAddress(tt.raw, tt.fallback))
		})
	}
}
