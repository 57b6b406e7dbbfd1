package region

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sot-platform/discovery-cli/internal/db"
)

// Store defines persistence operations for the region queue.
type Store interface {
	List(ctx context.Context, tenantID string) ([]Region, error)
	SeedDefaults(ctx context.Context, tenantID string) (int64, error)
	Advance(ctx context.Context, regionID int64, adv Advance) error
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const listSQL = `SELECT id, tenant_id, region_name, postal_code_prefix, population,
		priority_score, last_scanned_at, cooldown_until, last_category_index,
		total_contacts, approved_contacts
	FROM discovery_region_queue
	WHERE tenant_id = $1
	ORDER BY priority_score DESC, region_name ASC`

// List returns all regions for a tenant ordered by descending priority.
func (s *PostgresStore) List(ctx context.Context, tenantID string) ([]Region, error) {
	rows, err := s.pool.Query(ctx, listSQL, tenantID)
	if err != nil {
		return nil, eris.Wrap(err, "region: list queue")
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var r Region
		if err := rows.Scan(
			&r.ID, &r.TenantID, &r.Name, &r.PostalPrefix, &r.Population,
			&r.PriorityScore, &r.LastScannedAt, &r.CooldownUntil, &r.CategoryPointer,
			&r.TotalContacts, &r.ApprovedContacts,
		); err != nil {
			return nil, eris.Wrap(err, "region: scan queue row")
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// SeedDefaults populates the queue from the fixed reference list via an
// idempotent bulk upsert keyed on (tenant_id, region_name); re-seeding never
// duplicates rows and never resets rotation state on existing ones.
func (s *PostgresStore) SeedDefaults(ctx context.Context, tenantID string) (int64, error) {
	rows := make([][]any, 0, len(seedRegions))
	for _, sr := range seedRegions {
		rows = append(rows, []any{
			tenantID, sr.Name, sr.PLZ, sr.Population, seedPriority(sr.Population),
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "discovery_region_queue",
		Columns:      []string{"tenant_id", "region_name", "postal_code_prefix", "population", "priority_score"},
		ConflictKeys: []string{"tenant_id", "region_name"},
		// Only refresh the reference data; never touch rotation state.
		UpdateCols: []string{"postal_code_prefix", "population", "priority_score"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "region: seed queue")
	}

	zap.L().Info("region queue seeded",
		zap.String("tenant_id", tenantID),
		zap.Int64("rows", n),
	)
	return n, nil
}

// Advance writes back the post-batch state for one region: scan timestamp,
// cooldown end, accumulated totals, and the rotated category pointer.
func (s *PostgresStore) Advance(ctx context.Context, regionID int64, adv Advance) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE discovery_region_queue SET
			last_scanned_at = $2,
			cooldown_until = $3,
			total_contacts = total_contacts + $4,
			approved_contacts = approved_contacts + $5,
			last_category_index = $6,
			updated_at = now()
		WHERE id = $1`,
		regionID, adv.ScannedAt, adv.CooldownUntil, adv.NewContacts, adv.Approved, adv.CategoryPointer,
	)
	if err != nil {
		return eris.Wrapf(err, "region: advance region %d", regionID)
	}
	return nil
}
