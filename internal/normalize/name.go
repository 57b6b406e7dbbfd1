package normalize

import "strings"

// Name holds the parts of a split contact person name.
type Name struct {
	Salutation string
	FirstName  string
	LastName   string
}

// salutations maps recognized leading tokens to their canonical form.
var salutations = map[string]string{
	"herr": "Herr",
	"hr.":  "Herr",
	"frau": "Frau",
	"fr.":  "Frau",
}

// SplitName tokenizes a free-text person name. An optional leading salutation
// is recognized; a single remaining token becomes the last name, otherwise the
// first token is the first name and the rest join into the last name.
func SplitName(fullName string) Name {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return Name{}
	}

	var n Name
	if canonical, ok := salutations[strings.ToLower(parts[0])]; ok {
		n.Salutation = canonical
		parts = parts[1:]
	}

	switch len(parts) {
	case 0:
		return n
	case 1:
		n.LastName = parts[0]
	default:
		n.FirstName = parts[0]
		n.LastName = strings.Join(parts[1:], " ")
	}
	return n
}
