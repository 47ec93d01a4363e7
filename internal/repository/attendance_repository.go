package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patto-app/patto-api/internal/models"
)

// AttendanceRepository handles persistence for present/absent flags.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or updates the flag for (child_id, date).
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) (*models.Attendance, error) {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO attendances (id, facility_id, child_id, date, is_present, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (child_id, date)
DO UPDATE SET is_present = EXCLUDED.is_present
RETURNING id, facility_id, child_id, date, is_present, created_at`
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query,
		att.ID, att.FacilityID, att.ChildID, att.Date, att.IsPresent, att.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// ListByChildRange returns a child's flags within [from, to].
func (r *AttendanceRepository) ListByChildRange(ctx context.Context, facilityID, childID string, from, to time.Time) ([]models.Attendance, error) {
	query := `SELECT id, facility_id, child_id, date, is_present, created_at
FROM attendances
WHERE facility_id = $1 AND child_id = $2 AND date >= $3 AND date <= $4
ORDER BY date ASC`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, facilityID, childID, from, to); err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	return rows, nil
}

// ListByDate returns all of a facility's flags for one date.
func (r *AttendanceRepository) ListByDate(ctx context.Context, facilityID string, date time.Time) ([]models.Attendance, error) {
	query := `SELECT id, facility_id, child_id, date, is_present, created_at
FROM attendances
WHERE facility_id = $1 AND date = $2`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, facilityID, date); err != nil {
		return nil, fmt.Errorf("list attendances by date: %w", err)
	}
	return rows, nil
}
