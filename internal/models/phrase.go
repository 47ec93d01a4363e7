package models

import (
	"time"

	"github.com/lib/pq"
)

// Phrase is a reusable note snippet tagged by support domain. Rows with a
// nil facility_id are global defaults, read-only for facilities.
type Phrase struct {
	ID         string         `db:"id" json:"id"`
	FacilityID *string        `db:"facility_id" json:"facility_id,omitempty"`
	Category   string         `db:"category" json:"category"`
	Text       string         `db:"text" json:"text"`
	DomainTags pq.StringArray `db:"domain_tags" json:"domain_tags"`
	SortOrder  int            `db:"sort_order" json:"sort_order"`
	IsDefault  bool           `db:"is_default" json:"is_default"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// PhraseGroup holds phrases of one category in display order.
type PhraseGroup struct {
	Category string   `json:"category"`
	Phrases  []Phrase `json:"phrases"`
}
