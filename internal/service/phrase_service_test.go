package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type phraseBankStub struct {
	phrases     map[string]*models.Phrase
	list        []models.Phrase
	deleteCalls int
}

func (s *phraseBankStub) ListForFacility(ctx context.Context, facilityID string) ([]models.Phrase, error) {
	return s.list, nil
}

func (s *phraseBankStub) FindByID(ctx context.Context, id string) (*models.Phrase, error) {
	phrase, ok := s.phrases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return phrase, nil
}

func (s *phraseBankStub) Create(ctx context.Context, phrase *models.Phrase) error {
	phrase.ID = "created"
	return nil
}

func (s *phraseBankStub) Update(ctx context.Context, phrase *models.Phrase) error {
	return nil
}

func (s *phraseBankStub) Delete(ctx context.Context, facilityID, id string) error {
	s.deleteCalls++
	return nil
}

func TestRankPhrasesPartitionsStably(t *testing.T) {
	phrases := []models.Phrase{
		{ID: "a", DomainTags: []string{"健康・生活"}},
		{ID: "b", DomainTags: []string{"運動・感覚"}},
		{ID: "c", DomainTags: []string{"認知・行動"}},
		{ID: "d", DomainTags: []string{"運動・感覚", "人間関係・社会性"}},
	}

	ranked := RankPhrases([]string{"運動・感覚"}, phrases)

	require.Len(t, ranked, 4)
	// Matching phrases first, each bucket in original order.
	assert.Equal(t, "b", ranked[0].ID)
	assert.Equal(t, "d", ranked[1].ID)
	assert.Equal(t, "a", ranked[2].ID)
	assert.Equal(t, "c", ranked[3].ID)
}

func TestRankPhrasesNoTagsKeepsOrder(t *testing.T) {
	phrases := []models.Phrase{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	ranked := RankPhrases(nil, phrases)

	require.Len(t, ranked, 3)
	assert.Equal(t, "a", ranked[0].ID)
	assert.Equal(t, "b", ranked[1].ID)
	assert.Equal(t, "c", ranked[2].ID)
}

func TestGroupPhrasesPreservesFirstSeenCategoryOrder(t *testing.T) {
	phrases := []models.Phrase{
		{ID: "a", Category: "運動"},
		{ID: "b", Category: "生活"},
		{ID: "c", Category: "運動"},
	}

	groups := GroupPhrases(phrases)

	require.Len(t, groups, 2)
	assert.Equal(t, "運動", groups[0].Category)
	require.Len(t, groups[0].Phrases, 2)
	assert.Equal(t, "a", groups[0].Phrases[0].ID)
	assert.Equal(t, "c", groups[0].Phrases[1].ID)
	assert.Equal(t, "生活", groups[1].Category)
}

func TestPhraseServiceDefaultPhrasesAreReadOnly(t *testing.T) {
	repo := &phraseBankStub{phrases: map[string]*models.Phrase{
		"default-1": {ID: "default-1", FacilityID: nil, Category: "生活", Text: "default"},
	}}
	svc := NewPhraseService(repo, nil, nil)
	actor := models.Actor{ProfileID: "profile-1", FacilityID: "fac-1", Role: models.RoleAdmin}

	_, err := svc.Update(context.Background(), actor, "default-1", PhraseRequest{Category: "生活", Text: "changed"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), actor, "default-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.deleteCalls)
}

func TestPhraseServiceOtherFacilityPhraseIsForbidden(t *testing.T) {
	other := "fac-2"
	repo := &phraseBankStub{phrases: map[string]*models.Phrase{
		"p1": {ID: "p1", FacilityID: &other},
	}}
	svc := NewPhraseService(repo, nil, nil)
	actor := models.Actor{ProfileID: "profile-1", FacilityID: "fac-1", Role: models.RoleAdmin}

	err := svc.Delete(context.Background(), actor, "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPhraseServiceCreateStampsFacility(t *testing.T) {
	repo := &phraseBankStub{}
	svc := NewPhraseService(repo, nil, nil)
	actor := models.Actor{ProfileID: "profile-1", FacilityID: "fac-1", Role: models.RoleAdmin}

	phrase, err := svc.Create(context.Background(), actor, PhraseRequest{Category: "生活", Text: "手洗いができた"})
	require.NoError(t, err)
	require.NotNil(t, phrase.FacilityID)
	assert.Equal(t, "fac-1", *phrase.FacilityID)
}
