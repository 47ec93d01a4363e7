package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patto-app/patto-api/internal/models"
)

// InviteRepository handles persistence for single-use staff invites.
type InviteRepository struct {
	db *sqlx.DB
}

// NewInviteRepository constructs the repository.
func NewInviteRepository(db *sqlx.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create inserts a new invite row.
func (r *InviteRepository) Create(ctx context.Context, invite *models.StaffInvite) error {
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	invite.CreatedAt = time.Now().UTC()
	query := `INSERT INTO staff_invites (id, facility_id, role, created_by, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		invite.ID, invite.FacilityID, invite.Role, invite.CreatedBy, invite.ExpiresAt, invite.CreatedAt,
	); err != nil {
		return fmt.Errorf("create invite: %w", err)
	}
	return nil
}

// FindByID returns one invite.
func (r *InviteRepository) FindByID(ctx context.Context, id string) (*models.StaffInvite, error) {
	query := `SELECT id, facility_id, role, created_by, expires_at, used_at, created_at
FROM staff_invites WHERE id = $1 LIMIT 1`
	var invite models.StaffInvite
	if err := r.db.GetContext(ctx, &invite, query, id); err != nil {
		return nil, err
	}
	return &invite, nil
}

// MarkUsed stamps used_at exactly once; a second redemption finds no
// unused row and reports sql.ErrNoRows.
func (r *InviteRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff_invites SET used_at = $1 WHERE id = $2 AND used_at IS NULL`, usedAt, id)
	if err != nil {
		return fmt.Errorf("mark invite used: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
