package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type phraseRepository interface {
	ListForFacility(ctx context.Context, facilityID string) ([]models.Phrase, error)
	FindByID(ctx context.Context, id string) (*models.Phrase, error)
	Create(ctx context.Context, phrase *models.Phrase) error
	Update(ctx context.Context, phrase *models.Phrase) error
	Delete(ctx context.Context, facilityID, id string) error
}

// PhraseService manages the facility phrase bank and its relevance
// ordering against a child's support domains.
type PhraseService struct {
	repo      phraseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPhraseService constructs a PhraseService instance.
func NewPhraseService(repo phraseRepository, validate *validator.Validate, logger *zap.Logger) *PhraseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PhraseService{repo: repo, validator: validate, logger: logger}
}

// PhraseRequest is the payload for creating or updating a phrase.
type PhraseRequest struct {
	Category   string   `json:"category" validate:"required,max=50"`
	Text       string   `json:"text" validate:"required,max=200"`
	DomainTags []string `json:"domain_tags" validate:"dive,max=30"`
	SortOrder  int      `json:"sort_order" validate:"gte=0"`
}

// RankPhrases reorders phrases so that those sharing at least one domain
// tag with the child come first. The partition is stable: within each
// bucket the incoming order is preserved, so sort_order keeps meaning.
func RankPhrases(childTags []string, phrases []models.Phrase) []models.Phrase {
	if len(childTags) == 0 || len(phrases) == 0 {
		return phrases
	}
	tagSet := make(map[string]struct{}, len(childTags))
	for _, t := range childTags {
		tagSet[t] = struct{}{}
	}
	matched := make([]models.Phrase, 0, len(phrases))
	rest := make([]models.Phrase, 0, len(phrases))
	for _, p := range phrases {
		if intersectsTags(tagSet, p.DomainTags) {
			matched = append(matched, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(matched, rest...)
}

func intersectsTags(tagSet map[string]struct{}, tags []string) bool {
	for _, t := range tags {
		if _, ok := tagSet[t]; ok {
			return true
		}
	}
	return false
}

// GroupPhrases buckets ranked phrases by category. Category order is the
// order of first appearance in the ranked list, so relevant categories
// surface first too.
func GroupPhrases(phrases []models.Phrase) []models.PhraseGroup {
	groups := []models.PhraseGroup{}
	index := map[string]int{}
	for _, p := range phrases {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, models.PhraseGroup{Category: p.Category})
		}
		groups[i].Phrases = append(groups[i].Phrases, p)
	}
	return groups
}

// ListForChild returns the phrase bank ranked against the child's tags
// and grouped by category.
func (s *PhraseService) ListForChild(ctx context.Context, actor models.Actor, childTags []string) ([]models.PhraseGroup, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	phrases, err := s.repo.ListForFacility(ctx, actor.FacilityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list phrases")
	}
	return GroupPhrases(RankPhrases(childTags, phrases)), nil
}

// List returns the facility's raw phrase bank in stored order.
func (s *PhraseService) List(ctx context.Context, actor models.Actor) ([]models.Phrase, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	phrases, err := s.repo.ListForFacility(ctx, actor.FacilityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list phrases")
	}
	return phrases, nil
}

// Create adds a facility-owned phrase.
func (s *PhraseService) Create(ctx context.Context, actor models.Actor, req PhraseRequest) (*models.Phrase, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid phrase payload")
	}
	facilityID := actor.FacilityID
	phrase := &models.Phrase{
		FacilityID: &facilityID,
		Category:   req.Category,
		Text:       req.Text,
		DomainTags: req.DomainTags,
		SortOrder:  req.SortOrder,
	}
	if err := s.repo.Create(ctx, phrase); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create phrase")
	}
	return phrase, nil
}

// Update edits a facility-owned phrase. Global defaults cannot be edited.
func (s *PhraseService) Update(ctx context.Context, actor models.Actor, id string, req PhraseRequest) (*models.Phrase, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid phrase payload")
	}
	phrase, err := s.ownedPhrase(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	phrase.Category = req.Category
	phrase.Text = req.Text
	phrase.DomainTags = req.DomainTags
	phrase.SortOrder = req.SortOrder
	if err := s.repo.Update(ctx, phrase); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update phrase")
	}
	return phrase, nil
}

// Delete removes a facility-owned phrase. Global defaults cannot be deleted.
func (s *PhraseService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if actor.IsZero() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if _, err := s.ownedPhrase(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.FacilityID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete phrase")
	}
	return nil
}

func (s *PhraseService) ownedPhrase(ctx context.Context, actor models.Actor, id string) (*models.Phrase, error) {
	phrase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "phrase not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch phrase")
	}
	if phrase.FacilityID == nil || *phrase.FacilityID != actor.FacilityID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "default phrases are read-only")
	}
	return phrase, nil
}
