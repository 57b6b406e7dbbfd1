package scheduler

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func TestResolvePlatformTenant(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id FROM organizations WHERE org_type = 'platform'`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("tenant-platform"))

	id, err := store.ResolvePlatformTenant(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tenant-platform", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolvePlatformTenant_NoneFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id FROM organizations`).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.ResolvePlatformTenant(context.Background())
	assert.ErrorIs(t, err, ErrNoTenant)
}

func TestCreditsUsedOn(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(credits_used\), 0\) FROM discovery_run_log`).
		WithArgs("tenant-1", "2026-02-26").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(198))

	used, err := store.CreditsUsedOn(context.Background(), "tenant-1", "2026-02-26")
	require.NoError(t, err)
	assert.Equal(t, 198, used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSearchResult(t *testing.T) {
	store, mock := newMockStore(t)

	hash := "max@acme.de|+491512345678|schmidt|10115"
	mock.ExpectExec(`INSERT INTO soat_search_results`).
		WithArgs("tenant-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			0.86, pgxmock.AnyArg(), ValidationApproved, &hash).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.InsertSearchResult(context.Background(), SearchResult{
		TenantID:        "tenant-1",
		Company:         "Acme GmbH",
		Email:           "max@acme.de",
		Confidence:      0.86,
		ValidationState: ValidationApproved,
		DedupeHash:      &hash,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSearchResult_UniqueViolationIsDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO soat_search_results`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_search_results_dedupe"})

	err := store.InsertSearchResult(context.Background(), SearchResult{TenantID: "tenant-1"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestInsertSearchResult_OtherErrorsPropagate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO soat_search_results`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "42P01"})

	err := store.InsertSearchResult(context.Background(), SearchResult{TenantID: "tenant-1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestContactExistsByEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM contacts WHERE tenant_id = \$1 AND email = \$2\)`).
		WithArgs("tenant-1", "max@acme.de").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ContactExistsByEmail(context.Background(), "tenant-1", "max@acme.de")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactExistsByPhone(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM contacts WHERE tenant_id = \$1 AND phone = \$2\)`).
		WithArgs("tenant-1", "+491512345678").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := store.ContactExistsByPhone(context.Background(), "tenant-1", "+491512345678")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInsertContact(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO contacts`).
		WithArgs("tenant-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"financial_advisor", "discovery_scheduler", 0.91).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("contact-42"))

	id, err := store.InsertContact(context.Background(), Contact{
		TenantID:   "tenant-1",
		Company:    "Acme GmbH",
		Category:   "financial_advisor",
		Source:     "discovery_scheduler",
		Confidence: 0.91,
	})
	require.NoError(t, err)
	assert.Equal(t, "contact-42", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertLedgerEntry(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO contact_strategy_ledger`).
		WithArgs("contact-42", "tenant-1", "financial_advisor", "GOOGLE_FIRECRAWL",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.InsertLedgerEntry(context.Background(), LedgerEntry{
		ContactID:    "contact-42",
		TenantID:     "tenant-1",
		CategoryCode: "financial_advisor",
		StrategyCode: "GOOGLE_FIRECRAWL",
		StepsCompleted: []LedgerStep{
			{Step: "google_search", Provider: "google_places", Purpose: "discovery", CostEUR: 0.003},
		},
		DataGaps: []string{"email"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendRunLog(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO discovery_run_log`).
		WithArgs("2026-02-26", "tenant-1", "Berlin", "financial_advisor",
			25, 4, 3, 6, 1.5, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.AppendRunLog(context.Background(), RunLogEntry{
		RunDate:       "2026-02-26",
		TenantID:      "tenant-1",
		RegionName:    "Berlin",
		CategoryCode:  "financial_advisor",
		RawFound:      25,
		Duplicates:    4,
		Approved:      3,
		CreditsUsed:   6,
		CostEUR:       1.5,
		ProviderCalls: map[string]int{"google_places": 1},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentRunLogs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM discovery_run_log`).
		WithArgs("tenant-1", 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"run_date", "region_name", "category_code", "raw_found",
			"duplicates_skipped", "approved_count", "credits_used", "cost_eur", "coalesce",
		}).
			AddRow("2026-02-26", "Berlin", "financial_advisor", 25, 4, 3, 6, 1.5, "").
			AddRow("2026-02-26", "Hamburg", "tax_consultant", 20, 2, 1, 6, 1.5, "engine timeout"))

	entries, err := store.RecentRunLogs(context.Background(), "tenant-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Berlin", entries[0].RegionName)
	assert.Equal(t, "tenant-1", entries[0].TenantID)
	assert.Equal(t, "engine timeout", entries[1].ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
