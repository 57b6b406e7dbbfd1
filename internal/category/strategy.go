package category

// Step is one sourcing step within a category strategy.
type Step struct {
	ID               string
	Provider         string
	Purpose          string // discovery | enrichment | verification
	Priority         int
	ExpectedFields   []string
	EstimatedCostEUR float64
	SkipIf           []string
}

// Strategy is the ordered sourcing plan for a category.
type Strategy struct {
	Code       string
	Difficulty string
	Steps      []Step
}

// ContactFacts is the subset of contact fields the skip conditions inspect.
type ContactFacts struct {
	Email         string
	Phone         string
	Website       string
	FirstName     string
	LastName      string
	ContactPerson string
}

var strategies = map[string]Strategy{
	"GOOGLE_FIRECRAWL": {
		Code:       "GOOGLE_FIRECRAWL",
		Difficulty: "easy",
		Steps: []Step{
			{ID: "google_search", Provider: "google_places", Purpose: "discovery", Priority: 1,
				ExpectedFields: []string{"name", "phone", "address"}, EstimatedCostEUR: 0.003},
			{ID: "web_scrape", Provider: "firecrawl", Purpose: "enrichment", Priority: 2,
				ExpectedFields: []string{"email", "website"}, EstimatedCostEUR: 0.005, SkipIf: []string{"has_email"}},
		},
	},
	"IHK_REGISTER": {
		Code:       "IHK_REGISTER",
		Difficulty: "medium",
		Steps: []Step{
			{ID: "ihk_scrape", Provider: "ihk_register", Purpose: "discovery", Priority: 1,
				ExpectedFields: []string{"name", "registration_number", "city"}, EstimatedCostEUR: 0.02},
			{ID: "google_verify", Provider: "google_places", Purpose: "enrichment", Priority: 2,
				ExpectedFields: []string{"phone", "address"}, EstimatedCostEUR: 0.003},
			{ID: "web_scrape", Provider: "firecrawl", Purpose: "verification", Priority: 3,
				ExpectedFields: []string{"email"}, EstimatedCostEUR: 0.005, SkipIf: []string{"has_email", "no_website"}},
		},
	},
	"PORTAL_SCRAPING": {
		Code:       "PORTAL_SCRAPING",
		Difficulty: "easy",
		Steps: []Step{
			{ID: "portal_scrape", Provider: "apify_portal", Purpose: "discovery", Priority: 1,
				ExpectedFields: []string{"name", "address", "phone"}, EstimatedCostEUR: 0.02},
			{ID: "google_verify", Provider: "google_places", Purpose: "verification", Priority: 2,
				ExpectedFields: []string{"phone", "website", "rating"}, EstimatedCostEUR: 0.003},
			{ID: "web_scrape", Provider: "firecrawl", Purpose: "enrichment", Priority: 3,
				ExpectedFields: []string{"email"}, EstimatedCostEUR: 0.005, SkipIf: []string{"has_email"}},
		},
	},
	"FAMILY_OFFICE_SEARCH": {
		Code:       "FAMILY_OFFICE_SEARCH",
		Difficulty: "hard",
		Steps: []Step{
			{ID: "google_search", Provider: "google_places", Purpose: "discovery", Priority: 1,
				ExpectedFields: []string{"name", "address", "phone"}, EstimatedCostEUR: 0.003},
			{ID: "web_scrape", Provider: "firecrawl", Purpose: "enrichment", Priority: 2,
				ExpectedFields: []string{"email", "website", "contact_person"}, EstimatedCostEUR: 0.01},
			{ID: "linkedin_scrape", Provider: "apify_linkedin", Purpose: "enrichment", Priority: 3,
				ExpectedFields: []string{"contact_person"}, EstimatedCostEUR: 0.01, SkipIf: []string{"has_contact_person"}},
		},
	},
}

// StrategyFor returns the sourcing strategy bound to a category.
func StrategyFor(c Category) (Strategy, bool) {
	s, ok := strategies[c.Strategy]
	return s, ok
}

// skipped reports whether a step's skip conditions are met for a contact.
func skipped(s Step, f ContactFacts) bool {
	for _, cond := range s.SkipIf {
		switch cond {
		case "has_email":
			if f.Email != "" {
				return true
			}
		case "has_contact_person":
			if f.FirstName != "" || f.ContactPerson != "" {
				return true
			}
		case "no_website":
			if f.Website == "" {
				return true
			}
		}
	}
	return false
}

// PendingSteps returns the steps still worth running for a contact, in
// priority order, with satisfied skip conditions filtered out.
func (s Strategy) PendingSteps(f ContactFacts, completed []string) []Step {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	var pending []Step
	for _, step := range s.Steps {
		if done[step.ID] || skipped(step, f) {
			continue
		}
		pending = append(pending, step)
	}
	return pending
}

// RemainingCostEUR sums the estimated cost of the given steps.
func RemainingCostEUR(steps []Step) float64 {
	var sum float64
	for _, s := range steps {
		sum += s.EstimatedCostEUR
	}
	return sum
}

// DataGaps lists the contact fields still missing for future enrichment.
func DataGaps(f ContactFacts) []string {
	var gaps []string
	if f.Email == "" {
		gaps = append(gaps, "email")
	}
	if f.Phone == "" {
		gaps = append(gaps, "phone")
	}
	if f.Website == "" {
		gaps = append(gaps, "website")
	}
	if f.FirstName == "" && f.LastName == "" {
		gaps = append(gaps, "contact_person")
	}
	return gaps
}
