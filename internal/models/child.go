package models

import (
	"time"

	"github.com/lib/pq"
)

// Child represents a child enrolled at a facility.
type Child struct {
	ID         string         `db:"id" json:"id"`
	FacilityID string         `db:"facility_id" json:"facility_id"`
	Name       string         `db:"name" json:"name"`
	NameKana   *string        `db:"name_kana" json:"name_kana,omitempty"`
	BirthDate  *time.Time     `db:"birth_date" json:"birth_date,omitempty"`
	School     *string        `db:"school" json:"school,omitempty"`
	Grade      *string        `db:"grade" json:"grade,omitempty"`
	IconColor  string         `db:"icon_color" json:"icon_color"`
	Goals      pq.StringArray `db:"goals" json:"goals"`
	DomainTags pq.StringArray `db:"domain_tags" json:"domain_tags"`
	IsActive   bool           `db:"is_active" json:"is_active"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// ChildFilter captures filtering criteria for listing children.
type ChildFilter struct {
	FacilityID string
	Active     *bool
	Search     string
}

// Age derives the child's age in full years at the given date.
// Returns -1 when the birth date is unknown.
func (c *Child) Age(at time.Time) int {
	if c.BirthDate == nil {
		return -1
	}
	birth := *c.BirthDate
	age := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		age--
	}
	return age
}
