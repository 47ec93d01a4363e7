package models

import "time"

// Role represents the facility-level role of a profile.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Profile represents a staff or admin user scoped to one facility.
type Profile struct {
	ID           string    `db:"id" json:"id"`
	FacilityID   string    `db:"facility_id" json:"facility_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	Role         Role      `db:"role" json:"role"`
	IsSuperAdmin bool      `db:"is_super_admin" json:"is_super_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileWithFacility joins a profile with its facility name for the
// operator user list.
type ProfileWithFacility struct {
	Profile
	FacilityName string `db:"facility_name" json:"facility_name"`
}

// Actor identifies the authenticated caller for tenant-scoped operations.
// It is resolved once per request from the JWT claims and passed explicitly;
// services must stamp facility_id from it, never from client payloads.
type Actor struct {
	ProfileID  string
	FacilityID string
	Role       Role
	SuperAdmin bool
}

// IsZero reports whether no authenticated profile backs the actor.
func (a Actor) IsZero() bool {
	return a.ProfileID == "" || a.FacilityID == ""
}

// IsAdmin reports whether the actor holds the facility admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
