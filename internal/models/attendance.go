package models

import "time"

// Attendance is a simple present/absent flag per child per date.
type Attendance struct {
	ID         string    `db:"id" json:"id"`
	FacilityID string    `db:"facility_id" json:"facility_id"`
	ChildID    string    `db:"child_id" json:"child_id"`
	Date       time.Time `db:"date" json:"date"`
	IsPresent  bool      `db:"is_present" json:"is_present"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
