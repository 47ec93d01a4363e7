package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patto-app/patto-api/internal/models"
)

// ProfileRepository handles persistence for staff profiles and their
// refresh tokens.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, facility_id, email, password_hash, display_name, role, is_super_admin, created_at, updated_at`

// FindByEmail returns the profile holding the given email.
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email = $1 LIMIT 1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, email); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByID returns one profile.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1 LIMIT 1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByFacility returns a facility's staff in sign-up order.
func (r *ProfileRepository) ListByFacility(ctx context.Context, facilityID string) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE facility_id = $1 ORDER BY created_at ASC`, profileColumns)
	var rows []models.Profile
	if err := r.db.SelectContext(ctx, &rows, query, facilityID); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return rows, nil
}

// ListWithFacility returns all profiles joined with their facility name,
// newest first (operator dashboard).
func (r *ProfileRepository) ListWithFacility(ctx context.Context) ([]models.ProfileWithFacility, error) {
	query := `SELECT p.id, p.facility_id, p.email, p.password_hash, p.display_name, p.role, p.is_super_admin,
p.created_at, p.updated_at, f.name AS facility_name
FROM profiles p
JOIN facilities f ON f.id = p.facility_id
ORDER BY p.created_at DESC`
	var rows []models.ProfileWithFacility
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list profiles with facility: %w", err)
	}
	return rows, nil
}

// Create inserts a new profile row.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now
	query := `INSERT INTO profiles (id, facility_id, email, password_hash, display_name, role, is_super_admin, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.FacilityID, profile.Email, profile.PasswordHash,
		profile.DisplayName, profile.Role, profile.IsSuperAdmin,
		profile.CreatedAt, profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// UpdateRole changes a profile's role within its facility.
func (r *ProfileRepository) UpdateRole(ctx context.Context, facilityID, id string, role models.Role) error {
	query := `UPDATE profiles SET role = $1, updated_at = $2 WHERE id = $3 AND facility_id = $4`
	res, err := r.db.ExecContext(ctx, query, role, time.Now().UTC(), id, facilityID)
	if err != nil {
		return fmt.Errorf("update profile role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update profile role: no row for %s", id)
	}
	return nil
}

// UpdateDisplayName changes the caller's display name.
func (r *ProfileRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	query := `UPDATE profiles SET display_name = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, displayName, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *ProfileRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	query := `UPDATE profiles SET password_hash = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, passwordHash, updatedAt, id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// CreateRefreshToken stores a new refresh token.
func (r *ProfileRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (id, profile_id, token, expires_at, created_at, revoked)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		token.ID, token.ProfileID, token.Token, token.ExpiresAt, token.CreatedAt, token.Revoked,
	); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken looks up a refresh token by its opaque value.
func (r *ProfileRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `SELECT id, profile_id, token, expires_at, created_at, revoked, revoked_at
FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshToken marks one token revoked.
func (r *ProfileRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, revokedAt, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeProfileRefreshTokens revokes every live token for a profile.
func (r *ProfileRepository) RevokeProfileRefreshTokens(ctx context.Context, profileID string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE profile_id = $2 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), profileID); err != nil {
		return fmt.Errorf("revoke profile refresh tokens: %w", err)
	}
	return nil
}

// NewRefreshTokenID returns a fresh identifier for refresh token rows.
func NewRefreshTokenID() string {
	return uuid.NewString()
}
