package models

import (
	"time"

	"github.com/lib/pq"
)

// Mood is the fixed 3-value mood enum. The empty value means "unset",
// which is valid and distinct from every enum value.
type Mood string

const (
	MoodGood    Mood = "good"
	MoodNeutral Mood = "neutral"
	MoodBad     Mood = "bad"
)

// Valid reports whether the mood is one of the known enum values.
func (m Mood) Valid() bool {
	return m == MoodGood || m == MoodNeutral || m == MoodBad
}

// Label returns the Japanese display label used in documents and prompts.
func (m Mood) Label() string {
	switch m {
	case MoodGood:
		return "良好"
	case MoodNeutral:
		return "普通"
	case MoodBad:
		return "不調"
	default:
		return "未選択"
	}
}

// DailyRecord is the single row representing one child's one day of
// attendance/support data. At most one row exists per (child_id, date).
type DailyRecord struct {
	ID            string         `db:"id" json:"id"`
	FacilityID    string         `db:"facility_id" json:"facility_id"`
	ChildID       string         `db:"child_id" json:"child_id"`
	Date          time.Time      `db:"date" json:"date"`
	Mood          *Mood          `db:"mood" json:"mood"`
	Activities    pq.StringArray `db:"activities" json:"activities"`
	Phrases       pq.StringArray `db:"phrases" json:"phrases"`
	Memo          *string        `db:"memo" json:"memo,omitempty"`
	ArrivalTime   *string        `db:"arrival_time" json:"arrival_time,omitempty"`
	DepartureTime *string        `db:"departure_time" json:"departure_time,omitempty"`
	PickupMethod  *string        `db:"pickup_method" json:"pickup_method,omitempty"`
	RecordedBy    *string        `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// RecordWithChild joins a record with its child's display fields for
// history and operator views.
type RecordWithChild struct {
	DailyRecord
	ChildName string  `db:"child_name" json:"child_name"`
	IconColor *string `db:"icon_color" json:"icon_color,omitempty"`
}

// RecordFilter captures filtering criteria for record history queries.
type RecordFilter struct {
	FacilityID string
	ChildID    string
	Date       *time.Time
	DateFrom   *time.Time
	DateTo     *time.Time
}

/// RecordForm is the single logical payload backing the capture screen:
// the child, the ranked phrase bank, any existing record for the date,
// the active roster, and the ids of children already recorded.
type RecordForm struct {
	Child              *Child        `json:"child"`
	PhraseGroups       []PhraseGroup `json:"phrase_groups"`
	ExistingRecord     *DailyRecord  `json:"existing_record,omitempty"`
	Roster             []Child       `json:"roster"`
	RecordedChildIDs   []string      `json:"recorded_child_ids"`
	DefaultArrivalTime string        `json:"default_arrival_time,omitempty"`
	Date               string        `json:"date"`
}
