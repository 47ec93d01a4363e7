package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patto-app/patto-api/internal/models"
)

// FacilityRepository handles persistence for tenant facilities.
type FacilityRepository struct {
	db *sqlx.DB
}

// NewFacilityRepository constructs the repository.
func NewFacilityRepository(db *sqlx.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// FindByID returns one facility.
func (r *FacilityRepository) FindByID(ctx context.Context, id string) (*models.Facility, error) {
	query := `SELECT id, name, is_active, plan, notes, created_at FROM facilities WHERE id = $1 LIMIT 1`
	var facility models.Facility
	if err := r.db.GetContext(ctx, &facility, query, id); err != nil {
		return nil, err
	}
	return &facility, nil
}

// ListWithCounts returns all facilities with staff/children counts,
// newest first (operator dashboard).
func (r *FacilityRepository) ListWithCounts(ctx context.Context) ([]models.FacilityOverview, error) {
	query := `SELECT f.id, f.name, f.is_active, f.plan, f.notes, f.created_at,
(SELECT COUNT(*) FROM profiles p WHERE p.facility_id = f.id) AS staff_count,
(SELECT COUNT(*) FROM children c WHERE c.facility_id = f.id) AS children_count
FROM facilities f
ORDER BY f.created_at DESC`
	var rows []models.FacilityOverview
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return rows, nil
}

// DetailWithCounts returns one facility plus its aggregate counts.
func (r *FacilityRepository) DetailWithCounts(ctx context.Context, id string) (*models.FacilityDetail, error) {
	query := `SELECT f.id, f.name, f.is_active, f.plan, f.notes, f.created_at,
(SELECT COUNT(*) FROM profiles p WHERE p.facility_id = f.id) AS staff_count,
(SELECT COUNT(*) FROM children c WHERE c.facility_id = f.id) AS children_count,
(SELECT COUNT(*) FROM daily_records dr WHERE dr.facility_id = f.id) AS records_count
FROM facilities f
WHERE f.id = $1
LIMIT 1`
	var detail models.FacilityDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new facility.
func (r *FacilityRepository) Create(ctx context.Context, facility *models.Facility) error {
	if facility.ID == "" {
		facility.ID = uuid.NewString()
	}
	facility.CreatedAt = time.Now().UTC()
	query := `INSERT INTO facilities (id, name, is_active, plan, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		facility.ID, facility.Name, facility.IsActive, facility.Plan, facility.Notes, facility.CreatedAt,
	); err != nil {
		return fmt.Errorf("create facility: %w", err)
	}
	return nil
}

// Update persists editable facility fields.
func (r *FacilityRepository) Update(ctx context.Context, facility *models.Facility) error {
	query := `UPDATE facilities SET name = $1, is_active = $2, plan = $3, notes = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query,
		facility.Name, facility.IsActive, facility.Plan, facility.Notes, facility.ID,
	)
	if err != nil {
		return fmt.Errorf("update facility: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update facility: no row for %s", facility.ID)
	}
	return nil
}
