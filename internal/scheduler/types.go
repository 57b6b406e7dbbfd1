// Package scheduler implements the recurring contact discovery run: region
// rotation, three-layer deduplication, confidence scoring, credit budgeting,
// and run auditing.
package scheduler

import (
	"time"

	"github.com/sot-platform/discovery-cli/internal/dedupe"
	"github.com/sot-platform/discovery-cli/internal/normalize"
	"github.com/sot-platform/discovery-cli/internal/score"
	"github.com/sot-platform/discovery-cli/pkg/research"
)

// Run status values reported in the summary.
const (
	StatusCompleted       = "completed"
	StatusBudgetExhausted = "budget_exhausted"
	StatusAllCooledDown   = "all_regions_in_cooldown"
)

// Validation states for persisted search results.
const (
	ValidationApproved    = "approved"
	ValidationNeedsReview = "needs_review"
	ValidationPending     = "pending"
)

// Candidate is a research result after normalization, scoped to one batch.
type Candidate struct {
	Company    string
	Salutation string
	FirstName  string
	LastName   string
	Email      string
	Phone      string // normalized, ideally E.164
	Website    string // raw website URL as scraped
	Domain     string // normalized host
	Address    string // raw address line as scraped
	Street     string
	PostalCode string
	City       string
	Sources    []string
	Confidence float64
	Key        dedupe.Key
}

// normalizeCandidate canonicalizes one raw research result. regionName is the
// city fallback when the result carries no usable address.
func normalizeCandidate(raw research.RawCandidate, regionName string) Candidate {
	c := Candidate{
		Company:    raw.Name,
		Salutation: raw.Salutation,
		FirstName:  raw.FirstName,
		LastName:   raw.LastName,
		Email:      normalize.Email(raw.Email),
		Phone:      normalize.Phone(raw.Phone),
		Website:    raw.Website,
		Domain:     normalize.Domain(raw.Website),
		Address:    raw.Address,
		Sources:    raw.Sources,
	}

	if c.FirstName == "" && c.LastName == "" && raw.ContactPersonName != "" {
		n := normalize.SplitName(raw.ContactPersonName)
		c.FirstName = n.FirstName
		c.LastName = n.LastName
		if c.Salutation == "" {
			c.Salutation = n.Salutation
		}
	}

	addr := normalize.SplitAddress(raw.Address, regionName)
	c.Street = addr.Street
	c.PostalCode = addr.PostalCode
	c.City = addr.City

	c.Key = dedupe.NewKey(c.Email, c.Phone, c.LastName, c.PostalCode)

	sourceCount := len(raw.Sources)
	if sourceCount == 0 {
		sourceCount = 1
	}
	c.Confidence = score.Confidence(score.Fields{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Company:    c.Company,
		Street:     c.Street,
		PostalCode: c.PostalCode,
		City:       c.City,
		Phone:      c.Phone,
		Domain:     c.Domain,
		Email:      c.Email,
	}, sourceCount)

	return c
}

// SearchResult is the persisted record of one non-duplicate candidate,
// regardless of confidence. Rows are written once and never updated by the
// scheduler; review of low-confidence rows is a human workflow elsewhere.
type SearchResult struct {
	TenantID        string
	Company         string
	Salutation      string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Website         string
	Address         string
	City            string
	PostalCode      string
	Confidence      float64
	ValidationState string
	DedupeHash      *string // nil when the candidate has no dedupe signal
	SourceRefs      SourceRefs
}

// SourceRefs is the provenance blob stored with each search result.
type SourceRefs struct {
	Sources  []string `json:"sources"`
	Category string   `json:"category"`
	Region   string   `json:"region"`
	Strategy string   `json:"strategy"`
	Provider string   `json:"provider"`
	CostEUR  float64  `json:"estimated_cost_eur"`
}

// Contact is a row promoted into the permanent contact book. Once created it
// is owned by the broader CRM; the scheduler never updates or deletes it.
type Contact struct {
	TenantID   string
	Company    string
	Salutation string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Website    string
	Street     string
	PostalCode string
	City       string
	Category   string
	Source     string
	Confidence float64
}

// LedgerEntry records the discovery step taken for a newly created contact
// and the data gaps left for future enrichment passes. Writes are best
// effort: a failure never rolls back the contact.
type LedgerEntry struct {
	ContactID      string
	TenantID       string
	CategoryCode   string
	StrategyCode   string
	StepsCompleted []LedgerStep
	StepsPending   []LedgerStep
	DataGaps       []string
}

// LedgerStep is one strategy step reference inside a ledger entry.
type LedgerStep struct {
	Step     string  `json:"step"`
	Provider string  `json:"provider"`
	Purpose  string  `json:"purpose"`
	CostEUR  float64 `json:"estimatedCostEur"`
}

// RunLogEntry is the append-only audit record for one (region, category)
// batch. It doubles as the input to the next invocation's daily-budget sum.
type RunLogEntry struct {
	RunDate       string // YYYY-MM-DD, UTC
	TenantID      string
	RegionName    string
	CategoryCode  string
	RawFound      int
	Duplicates    int
	Approved      int
	CreditsUsed   int
	CostEUR       float64
	ProviderCalls map[string]int
	ErrorMessage  string
}

// BatchResult is the per-batch detail reported in the run summary.
type BatchResult struct {
	Region   string `json:"region"`
	Category string `json:"category"`
	Raw      int    `json:"raw"`
	Dupes    int    `json:"dupes"`
	Approved int    `json:"approved"`
	Error    string `json:"error,omitempty"`
}

// RunSummary is the terminal report of one scheduler invocation.
type RunSummary struct {
	RunID            string        `json:"run_id"`
	Status           string        `json:"status"`
	Date             string        `json:"date,omitempty"`
	BatchesProcessed int           `json:"batchesProcessed"`
	TotalRawFound    int           `json:"totalRawFound"`
	TotalDuplicates  int           `json:"totalDuplicates"`
	TotalApproved    int           `json:"totalApproved"`
	CreditsUsed      int           `json:"creditsUsed"`
	CostEUR          float64       `json:"costEur"`
	Batches          []BatchResult `json:"batches"`

	// Budget-exhausted detail.
	UsedToday int `json:"usedToday,omitempty"`
	Limit     int `json:"limit,omitempty"`

	// Cooldown detail.
	RegionsTotal int `json:"regionsTotal,omitempty"`

	// Diagnostics collects best-effort failures (ledger writes, credit
	// deduction, audit appends) that must not fail the run.
	Diagnostics []string `json:"diagnostics,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
