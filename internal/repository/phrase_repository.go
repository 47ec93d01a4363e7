package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patto-app/patto-api/internal/models"
)

// PhraseRepository handles persistence for the phrase bank.
type PhraseRepository struct {
	db *sqlx.DB
}

// NewPhraseRepository constructs the repository.
func NewPhraseRepository(db *sqlx.DB) *PhraseRepository {
	return &PhraseRepository{db: db}
}

const phraseColumns = `id, facility_id, category, text, domain_tags, sort_order, is_default, created_at`

// ListForFacility returns the facility's own phrases plus the global
// defaults, in stored sort order. This order is the tie-break baseline
// for relevance ranking.
func (r *PhraseRepository) ListForFacility(ctx context.Context, facilityID string) ([]models.Phrase, error) {
	query := fmt.Sprintf(`SELECT %s FROM phrase_bank
WHERE facility_id = $1 OR facility_id IS NULL
ORDER BY sort_order ASC, created_at ASC`, phraseColumns)
	var rows []models.Phrase
	if err := r.db.SelectContext(ctx, &rows, query, facilityID); err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	return rows, nil
}

// FindByID returns one phrase row.
func (r *PhraseRepository) FindByID(ctx context.Context, id string) (*models.Phrase, error) {
	query := fmt.Sprintf(`SELECT %s FROM phrase_bank WHERE id = $1 LIMIT 1`, phraseColumns)
	var phrase models.Phrase
	if err := r.db.GetContext(ctx, &phrase, query, id); err != nil {
		return nil, err
	}
	return &phrase, nil
}

// Create inserts a facility-owned phrase.
func (r *PhraseRepository) Create(ctx context.Context, phrase *models.Phrase) error {
	if phrase.ID == "" {
		phrase.ID = uuid.NewString()
	}
	phrase.CreatedAt = time.Now().UTC()
	query := `INSERT INTO phrase_bank (id, facility_id, category, text, domain_tags, sort_order, is_default, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		phrase.ID, phrase.FacilityID, phrase.Category, phrase.Text,
		phrase.DomainTags, phrase.SortOrder, phrase.IsDefault, phrase.CreatedAt,
	); err != nil {
		return fmt.Errorf("create phrase: %w", err)
	}
	return nil
}

// Update persists editable phrase fields for a facility-owned row.
func (r *PhraseRepository) Update(ctx context.Context, phrase *models.Phrase) error {
	query := `UPDATE phrase_bank SET category = $1, text = $2, domain_tags = $3, sort_order = $4
WHERE id = $5 AND facility_id = $6`
	res, err := r.db.ExecContext(ctx, query,
		phrase.Category, phrase.Text, phrase.DomainTags, phrase.SortOrder,
		phrase.ID, phrase.FacilityID,
	)
	if err != nil {
		return fmt.Errorf("update phrase: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update phrase: no row for %s", phrase.ID)
	}
	return nil
}

// Delete removes a facility-owned phrase. Global defaults never match the
// facility_id predicate and so cannot be deleted through this path.
func (r *PhraseRepository) Delete(ctx context.Context, facilityID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phrase_bank WHERE id = $1 AND facility_id = $2`, id, facilityID)
	if err != nil {
		return fmt.Errorf("delete phrase: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete phrase: no row for %s", id)
	}
	return nil
}
