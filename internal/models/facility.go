package models

import "time"

// Facility represents a tenant day-care site.
type Facility struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	Plan      *string   `db:"plan" json:"plan,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FacilityOverview augments a facility with per-tenant counts for the
// operator dashboard list.
type FacilityOverview struct {
	Facility
	StaffCount    int `db:"staff_count" json:"staff_count"`
	ChildrenCount int `db:"children_count" json:"children_count"`
}

// FacilityDetail carries a single facility plus its aggregate counts.
type FacilityDetail struct {
	Facility
	StaffCount    int `db:"staff_count" json:"staff_count"`
	ChildrenCount int `db:"children_count" json:"children_count"`
	RecordsCount  int `db:"records_count" json:"records_count"`
}
