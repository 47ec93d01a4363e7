package models

import "time"

// StaffInvite is a single-use invite mapping a signed token to a facility
// and role server-side. The share URL carries only the signed token.
type StaffInvite struct {
	ID         string     `db:"id" json:"id"`
	FacilityID string     `db:"facility_id" json:"facility_id"`
	Role       Role       `db:"role" json:"role"`
	CreatedBy  string     `db:"created_by" json:"created_by"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt     *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
