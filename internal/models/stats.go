package models

import "time"

// AdminStats is the operator dashboard's six summary counts, fetched in
// one round trip.
type AdminStats struct {
	TotalFacilities             int `db:"total_facilities" json:"total_facilities"`
	TotalUsers                  int `db:"total_users" json:"total_users"`
	TotalChildren               int `db:"total_children" json:"total_children"`
	TotalRecords                int `db:"total_records" json:"total_records"`
	RecordsToday                int `db:"records_today" json:"records_today"`
	FacilitiesWithActivityToday int `db:"facilities_with_activity_today" json:"facilities_with_activity_today"`
}

// FacilityRecordCount is one row of the date-range breakdown, ordered by
// record count descending.
type FacilityRecordCount struct {
	FacilityID   string `db:"facility_id" json:"facility_id"`
	FacilityName string `db:"facility_name" json:"facility_name"`
	RecordCount  int    `db:"record_count" json:"record_count"`
}

// BreakdownRange bounds the facility breakdown query.
type BreakdownRange struct {
	From *time.Time
	To   *time.Time
}
