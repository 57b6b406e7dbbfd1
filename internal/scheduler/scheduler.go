package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sot-platform/discovery-cli/internal/budget"
	"github.com/sot-platform/discovery-cli/internal/category"
	"github.com/sot-platform/discovery-cli/internal/config"
	"github.com/sot-platform/discovery-cli/internal/dedupe"
	"github.com/sot-platform/discovery-cli/internal/region"
	"github.com/sot-platform/discovery-cli/pkg/credits"
	"github.com/sot-platform/discovery-cli/pkg/research"
)

// creditActionCode tags deductions made by this scheduler in the credit ledger.
const creditActionCode = "discovery_scheduler"

// Scheduler runs the recurring discovery sweep for one tenant at a time.
type Scheduler struct {
	store    Store
	regions  region.Store
	research research.Client
	credits  credits.Client
	cfg      config.SchedulerConfig
	limiter  *rate.Limiter
	now      func() time.Time
}

// New assembles a Scheduler. The credits client may be nil, in which case no
// deduction call is made at the end of a run (useful for dry environments).
func New(store Store, regions region.Store, rc research.Client, cc credits.Client, cfg config.SchedulerConfig) *Scheduler {
	// First batch proceeds immediately; later batches wait out the pause.
	// A zero pause disables throttling.
	limit := rate.Inf
	if pause := cfg.Pause(); pause > 0 {
		limit = rate.Every(pause)
	}
	return &Scheduler{
		store:    store,
		regions:  regions,
		research: rc,
		credits:  cc,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
		now:      time.Now,
	}
}

// Run executes one scheduler invocation. tenantID may be empty, in which case
// the platform tenant is resolved from the organizations table. The returned
// summary is non-nil whenever err is nil, including the short-circuit
// statuses (budget exhausted, all regions cooling down).
func (s *Scheduler) Run(ctx context.Context, tenantID string) (*RunSummary, error) {
	started := s.now().UTC()
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Date:      started.Format("2006-01-02"),
		StartedAt: started,
	}
	log := zap.L().With(
		zap.String("component", "scheduler"),
		zap.String("run_id", summary.RunID),
	)

	if tenantID == "" {
		resolved, err := s.store.ResolvePlatformTenant(ctx)
		if err != nil {
			return nil, err
		}
		tenantID = resolved
	}
	log = log.With(zap.String("tenant_id", tenantID))

	usedToday, err := s.store.CreditsUsedOn(ctx, tenantID, summary.Date)
	if err != nil {
		return nil, err
	}
	guard := budget.NewGuard(s.cfg.MaxCreditsPerDay, usedToday)

	if guard.Exhausted() {
		log.Info("daily credit budget exhausted, skipping run",
			zap.Int("used_today", guard.UsedToday()),
			zap.Int("limit", guard.Limit()),
		)
		summary.Status = StatusBudgetExhausted
		summary.UsedToday = guard.UsedToday()
		summary.Limit = guard.Limit()
		summary.FinishedAt = s.now().UTC()
		return summary, nil
	}

	regions, err := s.regions.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		if _, err := s.regions.SeedDefaults(ctx, tenantID); err != nil {
			return nil, err
		}
		if regions, err = s.regions.List(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	eligible := regions[:0:0]
	for _, r := range regions {
		if !r.CoolingDown(started) {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		log.Info("all regions in cooldown", zap.Int("regions", len(regions)))
		summary.Status = StatusAllCooledDown
		summary.RegionsTotal = len(regions)
		summary.FinishedAt = s.now().UTC()
		return summary, nil
	}

	for _, r := range eligible {
		if !guard.Affordable(s.cfg.CostPerBatch) {
			log.Info("remaining budget below batch cost, stopping",
				zap.Int("remaining", guard.Remaining()),
				zap.Int("batch_cost", s.cfg.CostPerBatch),
			)
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "scheduler: wait for batch slot")
		}

		cat := category.ByIndex(r.CategoryPointer)
		batch := s.processBatch(ctx, log, tenantID, summary, r, cat)

		guard.Consume(s.cfg.CostPerBatch)
		summary.BatchesProcessed++
		summary.TotalRawFound += batch.Raw
		summary.TotalDuplicates += batch.Dupes
		summary.TotalApproved += batch.Approved
		summary.Batches = append(summary.Batches, batch)

		scannedAt := s.now().UTC()
		cooldownUntil := scannedAt.Add(s.cfg.Cooldown())
		adv := region.Advance{
			ScannedAt:       scannedAt,
			CooldownUntil:   cooldownUntil,
			NewContacts:     batch.Raw - batch.Dupes,
			Approved:        batch.Approved,
			CategoryPointer: (r.CategoryPointer + 1) % category.Count(),
		}
		if err := s.regions.Advance(ctx, r.ID, adv); err != nil {
			summary.Diagnostics = append(summary.Diagnostics,
				fmt.Sprintf("advance region %q: %v", r.Name, err))
			log.Warn("failed to advance region", zap.String("region", r.Name), zap.Error(err))
		}
	}

	if used := guard.Used(); used > 0 && s.credits != nil {
		err := s.credits.Deduct(ctx, credits.DeductRequest{
			Credits:    used,
			ActionCode: creditActionCode,
			RefType:    "discovery_run",
			RefID:      summary.Date,
		})
		if err != nil {
			// The run log already carries the spend; reconciliation can
			// replay it. Never fail the run over the deduction call.
			summary.Diagnostics = append(summary.Diagnostics,
				fmt.Sprintf("credit deduction: %v", err))
			log.Warn("credit deduction failed", zap.Int("credits", used), zap.Error(err))
		}
	}

	summary.Status = StatusCompleted
	summary.CreditsUsed = guard.Used()
	summary.CostEUR = float64(guard.Used()) * s.cfg.EURPerCredit
	summary.FinishedAt = s.now().UTC()

	log.Info("discovery run finished",
		zap.Int("batches", summary.BatchesProcessed),
		zap.Int("raw_found", summary.TotalRawFound),
		zap.Int("duplicates", summary.TotalDuplicates),
		zap.Int("approved", summary.TotalApproved),
		zap.Int("credits_used", summary.CreditsUsed),
	)
	return summary, nil
}

// processBatch runs one (region, category) search and persists its results.
// Failures are contained: a failed batch is reported in the result and the
// audit log, never propagated. The batch cost is charged either way.
func (s *Scheduler) processBatch(ctx context.Context, log *zap.Logger, tenantID string, summary *RunSummary, r region.Region, cat category.Category) BatchResult {
	batch := BatchResult{Region: r.Name, Category: cat.Code}
	log = log.With(zap.String("region", r.Name), zap.String("category", cat.Code))

	req := research.SearchRequest{
		Intent:     "search_contacts",
		Query:      cat.Query,
		Location:   r.Name,
		MaxResults: s.cfg.BatchSize,
	}
	if cat.PortalSearch() {
		req.Intent = "search_portals"
		req.PortalConfig = map[string]any{"category": cat.Code}
	}

	raws, err := s.research.Search(ctx, req)
	if err != nil {
		batch.Error = err.Error()
		log.Warn("research search failed", zap.Error(err))
	}
	batch.Raw = len(raws)

	seen := dedupe.NewSeen()
	for _, raw := range raws {
		c := normalizeCandidate(raw, r.Name)

		// Layer 1: intra-batch.
		if seen.Check(c.Key) {
			batch.Dupes++
			continue
		}

		state := ValidationPending
		switch {
		case c.Confidence >= s.cfg.ImportThreshold:
			state = ValidationApproved
		case c.Confidence >= s.cfg.ReviewThreshold:
			state = ValidationNeedsReview
		}

		rec := SearchResult{
			TenantID:        tenantID,
			Company:         c.Company,
			Salutation:      c.Salutation,
			FirstName:       c.FirstName,
			LastName:        c.LastName,
			Email:           c.Email,
			Phone:           c.Phone,
			Website:         c.Website,
			Address:         c.Address,
			City:            c.City,
			PostalCode:      c.PostalCode,
			Confidence:      c.Confidence,
			ValidationState: state,
			SourceRefs: SourceRefs{
				Sources:  c.Sources,
				Category: cat.Code,
				Region:   r.Name,
				Strategy: cat.Strategy,
				Provider: cat.Provider,
				CostEUR:  cat.CostPerContact,
			},
		}
		if hash, ok := c.Key.Hash(); ok {
			rec.DedupeHash = &hash
		}

		// Layer 2: cross-run unique constraint.
		if err := s.store.InsertSearchResult(ctx, rec); err != nil {
			if errors.Is(err, ErrDuplicate) {
				batch.Dupes++
				continue
			}
			summary.Diagnostics = append(summary.Diagnostics,
				fmt.Sprintf("store search result in %q: %v", r.Name, err))
			log.Warn("failed to store search result", zap.Error(err))
			continue
		}

		if state != ValidationApproved {
			continue
		}

		// Layer 3: contact book, checked only before auto-import.
		exists, err := s.contactOnFile(ctx, tenantID, c)
		if err != nil {
			summary.Diagnostics = append(summary.Diagnostics,
				fmt.Sprintf("contact lookup in %q: %v", r.Name, err))
			log.Warn("contact lookup failed", zap.Error(err))
			continue
		}
		if exists {
			batch.Dupes++
			continue
		}

		contactID, err := s.store.InsertContact(ctx, Contact{
			TenantID:   tenantID,
			Company:    c.Company,
			Salutation: c.Salutation,
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			Email:      c.Email,
			Phone:      c.Phone,
			Website:    c.Website,
			Street:     c.Street,
			PostalCode: c.PostalCode,
			City:       c.City,
			Category:   cat.Code,
			Source:     "discovery_scheduler",
			Confidence: c.Confidence,
		})
		if err != nil {
			summary.Diagnostics = append(summary.Diagnostics,
				fmt.Sprintf("import contact in %q: %v", r.Name, err))
			log.Warn("failed to import contact", zap.Error(err))
			continue
		}
		batch.Approved++

		if err := s.writeLedger(ctx, tenantID, contactID, cat, c); err != nil {
			summary.Diagnostics = append(summary.Diagnostics,
				fmt.Sprintf("ledger entry for contact %s: %v", contactID, err))
			log.Warn("failed to write strategy ledger", zap.String("contact_id", contactID), zap.Error(err))
		}
	}

	entry := RunLogEntry{
		RunDate:       summary.Date,
		TenantID:      tenantID,
		RegionName:    r.Name,
		CategoryCode:  cat.Code,
		RawFound:      batch.Raw,
		Duplicates:    batch.Dupes,
		Approved:      batch.Approved,
		CreditsUsed:   s.cfg.CostPerBatch,
		CostEUR:       float64(s.cfg.CostPerBatch) * s.cfg.EURPerCredit,
		ProviderCalls: map[string]int{cat.Provider: 1},
		ErrorMessage:  batch.Error,
	}
	if err := s.store.AppendRunLog(ctx, entry); err != nil {
		summary.Diagnostics = append(summary.Diagnostics,
			fmt.Sprintf("run log for %q: %v", r.Name, err))
		log.Warn("failed to append run log", zap.Error(err))
	}

	return batch
}

// contactOnFile checks the permanent contact book by email first, then phone.
func (s *Scheduler) contactOnFile(ctx context.Context, tenantID string, c Candidate) (bool, error) {
	if c.Email != "" {
		exists, err := s.store.ContactExistsByEmail(ctx, tenantID, c.Email)
		if err != nil || exists {
			return exists, err
		}
	}
	if c.Phone != "" {
		return s.store.ContactExistsByPhone(ctx, tenantID, c.Phone)
	}
	return false, nil
}

// writeLedger records which strategy steps the discovery search already
// covered and which remain for enrichment.
func (s *Scheduler) writeLedger(ctx context.Context, tenantID, contactID string, cat category.Category, c Candidate) error {
	strat, ok := category.StrategyFor(cat)
	if !ok {
		return nil
	}

	facts := category.ContactFacts{
		Email:     c.Email,
		Phone:     c.Phone,
		Website:   c.Website,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}

	// The discovery step itself just ran; everything after it is pending
	// unless a skip condition is already satisfied.
	var completed []string
	if len(strat.Steps) > 0 {
		completed = []string{strat.Steps[0].ID}
	}

	entry := LedgerEntry{
		ContactID:    contactID,
		TenantID:     tenantID,
		CategoryCode: cat.Code,
		StrategyCode: strat.Code,
		DataGaps:     category.DataGaps(facts),
	}
	if len(strat.Steps) > 0 {
		entry.StepsCompleted = []LedgerStep{toLedgerStep(strat.Steps[0])}
	}
	for _, step := range strat.PendingSteps(facts, completed) {
		entry.StepsPending = append(entry.StepsPending, toLedgerStep(step))
	}

	return s.store.InsertLedgerEntry(ctx, entry)
}

func toLedgerStep(s category.Step) LedgerStep {
	return LedgerStep{
		Step:     s.ID,
		Provider: s.Provider,
		Purpose:  s.Purpose,
		CostEUR:  s.EstimatedCostEUR,
	}
}
