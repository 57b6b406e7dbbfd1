package scheduler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/sot-platform/discovery-cli/internal/db"
)

// ErrDuplicate marks an insert rejected by the cross-run dedupe index. It is
// a counting outcome, not a failure.
var ErrDuplicate = eris.New("scheduler: duplicate search result")

// ErrNoTenant is returned when no tenant can be resolved for an invocation.
var ErrNoTenant = eris.New("scheduler: no tenant found")

// uniqueViolation is the Postgres error code raised by the dedupe_hash index.
const uniqueViolation = "23505"

// Store defines persistence operations for the scheduler core.
type Store interface {
	ResolvePlatformTenant(ctx context.Context) (string, error)
	CreditsUsedOn(ctx context.Context, tenantID, runDate string) (int, error)
	InsertSearchResult(ctx context.Context, rec SearchResult) error
	ContactExistsByEmail(ctx context.Context, tenantID, email string) (bool, error)
	ContactExistsByPhone(ctx context.Context, tenantID, phone string) (bool, error)
	InsertContact(ctx context.Context, c Contact) (string, error)
	InsertLedgerEntry(ctx context.Context, e LedgerEntry) error
	AppendRunLog(ctx context.Context, e RunLogEntry) error
	RecentRunLogs(ctx context.Context, tenantID string, limit int) ([]RunLogEntry, error)
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ResolvePlatformTenant finds the tenant by the fixed organization-type
// marker. Used when an invocation (e.g. cron) carries no tenant id.
func (s *PostgresStore) ResolvePlatformTenant(ctx context.Context) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM organizations WHERE org_type = 'platform' LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoTenant
	}
	if err != nil {
		return "", eris.Wrap(err, "scheduler: resolve platform tenant")
	}
	return id, nil
}

// CreditsUsedOn sums the credits logged for a tenant on a UTC calendar day.
func (s *PostgresStore) CreditsUsedOn(ctx context.Context, tenantID, runDate string) (int, error) {
	var used int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(credits_used), 0) FROM discovery_run_log
		 WHERE tenant_id = $1 AND run_date = $2`,
		tenantID, runDate,
	).Scan(&used)
	if err != nil {
		return 0, eris.Wrap(err, "scheduler: sum daily credits")
	}
	return used, nil
}

// InsertSearchResult persists one normalized candidate. A unique violation on
// the dedupe hash is reclassified as ErrDuplicate (dedupe layer 2).
func (s *PostgresStore) InsertSearchResult(ctx context.Context, rec SearchResult) error {
	refs, err := json.Marshal(rec.SourceRefs)
	if err != nil {
		return eris.Wrap(err, "scheduler: marshal source refs")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO soat_search_results (
			tenant_id, company_name, salutation, first_name, last_name,
			email, phone, website_url, address_line, city, postal_code,
			confidence_score, source_refs_json, validation_state, dedupe_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.TenantID, nullable(rec.Company), nullable(rec.Salutation),
		nullable(rec.FirstName), nullable(rec.LastName), nullable(rec.Email),
		nullable(rec.Phone), nullable(rec.Website), nullable(rec.Address),
		nullable(rec.City), nullable(rec.PostalCode),
		rec.Confidence, refs, rec.ValidationState, rec.DedupeHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return eris.Wrap(err, "scheduler: insert search result")
	}
	return nil
}

// ContactExistsByEmail checks the contact book for an exact email match.
func (s *PostgresStore) ContactExistsByEmail(ctx context.Context, tenantID, email string) (bool, error) {
	return s.contactExists(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE tenant_id = $1 AND email = $2)`,
		tenantID, email)
}

// ContactExistsByPhone checks the contact book for an exact phone match.
func (s *PostgresStore) ContactExistsByPhone(ctx context.Context, tenantID, phone string) (bool, error) {
	return s.contactExists(ctx,
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE tenant_id = $1 AND phone = $2)`,
		tenantID, phone)
}

func (s *PostgresStore) contactExists(ctx context.Context, sql, tenantID, value string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, sql, tenantID, value).Scan(&exists); err != nil {
		return false, eris.Wrap(err, "scheduler: contact lookup")
	}
	return exists, nil
}

// InsertContact promotes a candidate into the permanent contact book and
// returns the new contact id.
func (s *PostgresStore) InsertContact(ctx context.Context, c Contact) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO contacts (
			tenant_id, company_name, salutation, first_name, last_name,
			email, phone, website, street, postal_code, city,
			category, source, confidence_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		c.TenantID, nullable(c.Company), nullable(c.Salutation),
		nullable(c.FirstName), nullable(c.LastName), nullable(c.Email),
		nullable(c.Phone), nullable(c.Website), nullable(c.Street),
		nullable(c.PostalCode), nullable(c.City),
		c.Category, c.Source, c.Confidence,
	).Scan(&id)
	if err != nil {
		return "", eris.Wrap(err, "scheduler: insert contact")
	}
	return id, nil
}

// InsertLedgerEntry records the strategy ledger row for a new contact.
// Callers treat failures as non-fatal.
func (s *PostgresStore) InsertLedgerEntry(ctx context.Context, e LedgerEntry) error {
	completed, err := json.Marshal(e.StepsCompleted)
	if err != nil {
		return eris.Wrap(err, "scheduler: marshal completed steps")
	}
	pending, err := json.Marshal(e.StepsPending)
	if err != nil {
		return eris.Wrap(err, "scheduler: marshal pending steps")
	}
	gaps, err := json.Marshal(e.DataGaps)
	if err != nil {
		return eris.Wrap(err, "scheduler: marshal data gaps")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO contact_strategy_ledger (
			contact_id, tenant_id, category_code, strategy_code,
			steps_completed, steps_pending, data_gaps, quality_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0)`,
		e.ContactID, e.TenantID, e.CategoryCode, e.StrategyCode,
		completed, pending, gaps,
	)
	if err != nil {
		return eris.Wrap(err, "scheduler: insert ledger entry")
	}
	return nil
}

// AppendRunLog appends the audit record for one batch.
func (s *PostgresStore) AppendRunLog(ctx context.Context, e RunLogEntry) error {
	calls, err := json.Marshal(e.ProviderCalls)
	if err != nil {
		return eris.Wrap(err, "scheduler: marshal provider calls")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO discovery_run_log (
			run_date, tenant_id, region_name, category_code,
			raw_found, duplicates_skipped, approved_count,
			credits_used, cost_eur, provider_calls_json, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.RunDate, e.TenantID, e.RegionName, e.CategoryCode,
		e.RawFound, e.Duplicates, e.Approved,
		e.CreditsUsed, e.CostEUR, calls, nullable(e.ErrorMessage),
	)
	if err != nil {
		return eris.Wrap(err, "scheduler: append run log")
	}
	return nil
}

// RecentRunLogs returns the latest batch audit rows for a tenant, newest
// first. Used by the runs CLI command.
func (s *PostgresStore) RecentRunLogs(ctx context.Context, tenantID string, limit int) ([]RunLogEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_date, region_name, category_code, raw_found,
			duplicates_skipped, approved_count, credits_used, cost_eur,
			COALESCE(error_message, '')
		 FROM discovery_run_log
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		tenantID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "scheduler: list run logs")
	}
	defer rows.Close()

	var entries []RunLogEntry
	for rows.Next() {
		e := RunLogEntry{TenantID: tenantID}
		if err := rows.Scan(
			&e.RunDate, &e.RegionName, &e.CategoryCode, &e.RawFound,
			&e.Duplicates, &e.Approved, &e.CreditsUsed, &e.CostEUR,
			&e.ErrorMessage,
		); err != nil {
			return nil, eris.Wrap(err, "scheduler: scan run log row")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// nullable maps empty strings to NULL so the store never records empty-string
// identities that would collide in lookups.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
