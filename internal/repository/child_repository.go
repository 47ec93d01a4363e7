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

// ChildRepository handles persistence for enrolled children.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository constructs the repository.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = `id, facility_id, name, name_kana, birth_date, school, grade, icon_color, goals, domain_tags, is_active, created_at, updated_at`

// List returns children for a facility ordered by phonetic name. The
// kana ordering drives both the roster view and the auto-advance rule.
func (r *ChildRepository) List(ctx context.Context, filter models.ChildFilter) ([]models.Child, error) {
	where := []string{"facility_id = $1"}
	args := []interface{}{filter.FacilityID}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR name_kana ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	query := fmt.Sprintf(`SELECT %s FROM children WHERE %s ORDER BY name_kana ASC NULLS LAST, name ASC`,
		childColumns, strings.Join(where, " AND "))

	var rows []models.Child
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return rows, nil
}

// FindByID returns one child scoped to the facility.
func (r *ChildRepository) FindByID(ctx context.Context, facilityID, id string) (*models.Child, error) {
	query := fmt.Sprintf(`SELECT %s FROM children WHERE id = $1 AND facility_id = $2 LIMIT 1`, childColumns)
	var child models.Child
	if err := r.db.GetContext(ctx, &child, query, id, facilityID); err != nil {
		return nil, err
	}
	return &child, nil
}

// Create inserts a new child row.
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	now := time.Now().UTC()
	if child.ID == "" {
		child.ID = uuid.NewString()
	}
	child.CreatedAt = now
	child.UpdatedAt = now
	query := `INSERT INTO children (id, facility_id, name, name_kana, birth_date, school, grade, icon_color, goals, domain_tags, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := r.db.ExecContext(ctx, query,
		child.ID, child.FacilityID, child.Name, child.NameKana, child.BirthDate,
		child.School, child.Grade, child.IconColor, child.Goals, child.DomainTags,
		child.IsActive, child.CreatedAt, child.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

// Update persists editable child fields.
func (r *ChildRepository) Update(ctx context.Context, child *models.Child) error {
	child.UpdatedAt = time.Now().UTC()
	query := `UPDATE children SET name = $1, name_kana = $2, birth_date = $3, school = $4, grade = $5,
icon_color = $6, goals = $7, domain_tags = $8, is_active = $9, updated_at = $10
WHERE id = $11 AND facility_id = $12`
	res, err := r.db.ExecContext(ctx, query,
		child.Name, child.NameKana, child.BirthDate, child.School, child.Grade,
		child.IconColor, child.Goals, child.DomainTags, child.IsActive, child.UpdatedAt,
		child.ID, child.FacilityID,
	)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update child: no row for %s", child.ID)
	}
	return nil
}

// Deactivate soft-deletes a child.
func (r *ChildRepository) Deactivate(ctx context.Context, facilityID, id string) error {
	query := `UPDATE children SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND facility_id = $3`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, facilityID); err != nil {
		return fmt.Errorf("deactivate child: %w", err)
	}
	return nil
}
