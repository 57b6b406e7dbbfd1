// Package region manages the persistent, priority-ordered queue of
// geographic regions the scheduler sweeps.
package region

import "time"

// Region is one row of the discovery region queue. Regions are created once
// (seeded from the reference list when the queue is empty), mutated after
// every batch, and never deleted.
type Region struct {
	ID               int64      `json:"id" db:"id"`
	TenantID         string     `json:"tenant_id" db:"tenant_id"`
	Name             string     `json:"region_name" db:"region_name"`
	PostalPrefix     string     `json:"postal_code_prefix" db:"postal_code_prefix"`
	Population       int        `json:"population" db:"population"`
	PriorityScore    int        `json:"priority_score" db:"priority_score"`
	LastScannedAt    *time.Time `json:"last_scanned_at,omitempty" db:"last_scanned_at"`
	CooldownUntil    *time.Time `json:"cooldown_until,omitempty" db:"cooldown_until"`
	CategoryPointer  int        `json:"last_category_index" db:"last_category_index"`
	TotalContacts    int        `json:"total_contacts" db:"total_contacts"`
	ApprovedContacts int        `json:"approved_contacts" db:"approved_contacts"`
}

// CoolingDown reports whether the region is still inside its cooldown window.
func (r *Region) CoolingDown(now time.Time) bool {
	return r.CooldownUntil != nil && r.CooldownUntil.After(now)
}

// Advance holds the state written back to a region after one batch. It is
// applied whether the batch succeeded or failed: rotation must progress even
// on error so a permanently failing category cannot starve the others.
type Advance struct {
	ScannedAt       time.Time
	CooldownUntil   time.Time
	NewContacts     int // raw found minus duplicates
	Approved        int
	CategoryPointer int // already advanced modulo the category count
}
