package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patto-app/patto-api/internal/models"
)

// RecordRepository handles persistence for daily support records.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, facility_id, child_id, date, mood, activities, phrases, memo, arrival_time, departure_time, pickup_method, recorded_by, created_at, updated_at`

// FindByChildAndDate returns the single record for (child, date), if any.
func (r *RecordRepository) FindByChildAndDate(ctx context.Context, facilityID, childID string, date time.Time) (*models.DailyRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_records WHERE child_id = $1 AND date = $2 AND facility_id = $3 LIMIT 1`, recordColumns)
	var record models.DailyRecord
	if err := r.db.GetContext(ctx, &record, query, childID, date, facilityID); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByDate returns all records a facility saved for one date.
func (r *RecordRepository) ListByDate(ctx context.Context, facilityID string, date time.Time) ([]models.DailyRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_records WHERE facility_id = $1 AND date = $2`, recordColumns)
	var rows []models.DailyRecord
	if err := r.db.SelectContext(ctx, &rows, query, facilityID, date); err != nil {
		return nil, fmt.Errorf("list records by date: %w", err)
	}
	return rows, nil
}

// List returns record history joined with child display fields, newest first.
func (r *RecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.RecordWithChild, error) {
	where := []string{"dr.facility_id = $1"}
	args := []interface{}{filter.FacilityID}
	if filter.ChildID != "" {
		where = append(where, fmt.Sprintf("dr.child_id = $%d", len(args)+1))
		args = append(args, filter.ChildID)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("dr.date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("dr.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("dr.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	query := fmt.Sprintf(`SELECT dr.id, dr.facility_id, dr.child_id, dr.date, dr.mood, dr.activities, dr.phrases,
dr.memo, dr.arrival_time, dr.departure_time, dr.pickup_method, dr.recorded_by, dr.created_at, dr.updated_at,
c.name AS child_name, c.icon_color
FROM daily_records dr
JOIN children c ON c.id = dr.child_id
WHERE %s
ORDER BY dr.created_at DESC`, strings.Join(where, " AND "))

	var rows []models.RecordWithChild
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return rows, nil
}

// Upsert inserts or updates the record for (child_id, date). The unique
// constraint makes the save idempotent under duplicate submission.
func (r *RecordRepository) Upsert(ctx context.Context, record *models.DailyRecord) (*models.DailyRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO daily_records (id, facility_id, child_id, date, mood, activities, phrases, memo, arrival_time, departure_time, pickup_method, recorded_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (child_id, date)
DO UPDATE SET mood = EXCLUDED.mood, activities = EXCLUDED.activities, phrases = EXCLUDED.phrases,
memo = EXCLUDED.memo, arrival_time = EXCLUDED.arrival_time, departure_time = EXCLUDED.departure_time,
pickup_method = EXCLUDED.pickup_method, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at
RETURNING %s`, recordColumns)
	var stored models.DailyRecord
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.FacilityID, record.ChildID, record.Date, record.Mood,
		record.Activities, record.Phrases, record.Memo, record.ArrivalTime,
		record.DepartureTime, record.PickupMethod, record.RecordedBy,
		record.CreatedAt, record.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert daily record: %w", err)
	}
	return &stored, nil
}

// Delete hard-deletes one record (history view only).
func (r *RecordRepository) Delete(ctx context.Context, facilityID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_records WHERE id = $1 AND facility_id = $2`, id, facilityID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete record: no row for %s", id)
	}
	return nil
}

// ListRecent returns the latest records across all facilities for the
// operator dashboard.
func (r *RecordRepository) ListRecent(ctx context.Context, limit int) ([]models.RecordWithChild, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT dr.id, dr.facility_id, dr.child_id, dr.date, dr.mood, dr.activities, dr.phrases,
dr.memo, dr.arrival_time, dr.departure_time, dr.pickup_method, dr.recorded_by, dr.created_at, dr.updated_at,
c.name AS child_name, c.icon_color
FROM daily_records dr
JOIN children c ON c.id = dr.child_id
ORDER BY dr.created_at DESC
LIMIT %d`, limit)
	var rows []models.RecordWithChild
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list recent records: %w", err)
	}
	return rows, nil
}
