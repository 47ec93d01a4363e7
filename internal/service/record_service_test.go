package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

const (
	childTaro   = "11111111-1111-1111-1111-111111111111"
	childHanako = "22222222-2222-2222-2222-222222222222"
	childJiro   = "33333333-3333-3333-3333-333333333333"
)

type recordRepoStub struct {
	existing    *models.DailyRecord
	byDate      []models.DailyRecord
	byDateErr   error
	history     []models.RecordWithChild
	upserted    *models.DailyRecord
	upsertCalls int
}

func (s *recordRepoStub) FindByChildAndDate(ctx context.Context, facilityID, childID string, date time.Time) (*models.DailyRecord, error) {
	if s.existing == nil {
		return nil, sql.ErrNoRows
	}
	return s.existing, nil
}

func (s *recordRepoStub) ListByDate(ctx context.Context, facilityID string, date time.Time) ([]models.DailyRecord, error) {
	if s.byDateErr != nil {
		return nil, s.byDateErr
	}
	return s.byDate, nil
}

func (s *recordRepoStub) List(ctx context.Context, filter models.RecordFilter) ([]models.RecordWithChild, error) {
	return s.history, nil
}

func (s *recordRepoStub) Upsert(ctx context.Context, record *models.DailyRecord) (*models.DailyRecord, error) {
	s.upsertCalls++
	stored := *record
	stored.ID = "rec-1"
	s.upserted = &stored
	return &stored, nil
}

func (s *recordRepoStub) Delete(ctx context.Context, facilityID, id string) error {
	return nil
}

type childRepoStub struct {
	children map[string]*models.Child
	roster   []models.Child
	listErr  error
}

func (s *childRepoStub) FindByID(ctx context.Context, facilityID, id string) (*models.Child, error) {
	child, ok := s.children[id]
	if !ok || child.FacilityID != facilityID {
		return nil, sql.ErrNoRows
	}
	return child, nil
}

func (s *childRepoStub) List(ctx context.Context, filter models.ChildFilter) ([]models.Child, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.roster, nil
}

type phraseRepoStub struct {
	phrases []models.Phrase
	err     error
}

func (s *phraseRepoStub) ListForFacility(ctx context.Context, facilityID string) ([]models.Phrase, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.phrases, nil
}

func testActor() models.Actor {
	return models.Actor{ProfileID: "profile-1", FacilityID: "fac-1", Role: models.RoleStaff}
}

func testRoster() []models.Child {
	return []models.Child{
		{ID: childTaro, FacilityID: "fac-1", Name: "太郎", IsActive: true},
		{ID: childHanako, FacilityID: "fac-1", Name: "花子", IsActive: true},
		{ID: childJiro, FacilityID: "fac-1", Name: "次郎", IsActive: true},
	}
}

func rosterMap(roster []models.Child) map[string]*models.Child {
	m := make(map[string]*models.Child, len(roster))
	for i := range roster {
		m[roster[i].ID] = &roster[i]
	}
	return m
}

func TestRecordServiceSaveStampsActorFacility(t *testing.T) {
	roster := testRoster()
	records := &recordRepoStub{}
	svc := NewRecordService(records, &childRepoStub{children: rosterMap(roster), roster: roster}, &phraseRepoStub{}, nil, nil)

	result, err := svc.Save(context.Background(), testActor(), SaveRecordRequest{
		ChildID: childTaro,
		Date:    "2026-02-03",
		Mood:    "good",
	})
	require.NoError(t, err)
	require.NotNil(t, records.upserted)
	assert.Equal(t, "fac-1", records.upserted.FacilityID)
	require.NotNil(t, records.upserted.RecordedBy)
	assert.Equal(t, "profile-1", *records.upserted.RecordedBy)
	assert.False(t, result.Updated)
}

func TestRecordServiceSaveWithoutProfileNeverWrites(t *testing.T) {
	records := &recordRepoStub{}
	svc := NewRecordService(records, &childRepoStub{}, &phraseRepoStub{}, nil, nil)

	_, err := svc.Save(context.Background(), models.Actor{}, SaveRecordRequest{ChildID: childTaro})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.Zero(t, records.upsertCalls)
}

func TestRecordServiceSaveAdvancesToNextUnrecorded(t *testing.T) {
	roster := testRoster()
	records := &recordRepoStub{
		byDate: []models.DailyRecord{{ChildID: childTaro}},
	}
	svc := NewRecordService(records, &childRepoStub{children: rosterMap(roster), roster: roster}, &phraseRepoStub{}, nil, nil)

	result, err := svc.Save(context.Background(), testActor(), SaveRecordRequest{
		ChildID: childHanako,
		Date:    "2026-02-03",
	})
	require.NoError(t, err)
	require.NotNil(t, result.NextChildID)
	assert.Equal(t, childJiro, *result.NextChildID)
}

func TestRecordServiceSaveRosterCompleteReturnsNoNext(t *testing.T) {
	roster := testRoster()
	records := &recordRepoStub{
		byDate: []models.DailyRecord{{ChildID: childTaro}, {ChildID: childHanako}},
	}
	svc := NewRecordService(records, &childRepoStub{children: rosterMap(roster), roster: roster}, &phraseRepoStub{}, nil, nil)

	result, err := svc.Save(context.Background(), testActor(), SaveRecordRequest{
		ChildID: childJiro,
		Date:    "2026-02-03",
	})
	require.NoError(t, err)
	assert.Nil(t, result.NextChildID)
}

func TestRecordServiceSaveExistingRecordReportsUpdated(t *testing.T) {
	roster := testRoster()
	records := &recordRepoStub{
		existing: &models.DailyRecord{ID: "rec-1", ChildID: childTaro},
	}
	svc := NewRecordService(records, &childRepoStub{children: rosterMap(roster), roster: roster}, &phraseRepoStub{}, nil, nil)

	result, err := svc.Save(context.Background(), testActor(), SaveRecordRequest{
		ChildID: childTaro,
		Date:    "2026-02-03",
		Memo:    "午後から集中できた",
	})
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, 1, records.upsertCalls)
}

func TestRecordServiceSaveRejectsUnknownPickup(t *testing.T) {
	svc := NewRecordService(&recordRepoStub{}, &childRepoStub{}, &phraseRepoStub{}, nil, nil)

	_, err := svc.Save(context.Background(), testActor(), SaveRecordRequest{
		ChildID:      childTaro,
		PickupMethod: "taxi",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceSaveNullsEmptyOptionals(t *testing.T) {
	roster := testRoster()
	records := &recordRepoStub{}
	svc := NewRecordService(records, &childRepoStub{children: rosterMap(roster), roster: roster}, &phraseRepoStub{}, nil, nil)

	_, err := svc.Save(context.Background(), testActor(), SaveRecordRequest{
		ChildID: childTaro,
		Date:    "2026-02-03",
	})
	require.NoError(t, err)
	assert.Nil(t, records.upserted.Mood)
	assert.Nil(t, records.upserted.Memo)
	assert.Nil(t, records.upserted.ArrivalTime)
	assert.Nil(t, records.upserted.PickupMethod)
}

func TestRecordServiceLoadFormDegradesOnSideFetchFailures(t *testing.T) {
	roster := testRoster()
	records := &recordRepoStub{byDateErr: errors.New("boom")}
	children := &childRepoStub{children: rosterMap(roster), listErr: errors.New("boom")}
	phrases := &phraseRepoStub{err: errors.New("boom")}
	svc := NewRecordService(records, children, phrases, nil, nil)

	form, err := svc.LoadForm(context.Background(), testActor(), childTaro, "2026-02-03")
	require.NoError(t, err)
	require.NotNil(t, form.Child)
	assert.Equal(t, childTaro, form.Child.ID)
	assert.Empty(t, form.PhraseGroups)
	assert.Empty(t, form.Roster)
	assert.Empty(t, form.RecordedChildIDs)
	assert.NotEmpty(t, form.DefaultArrivalTime)
}

func TestRecordServiceLoadFormMissingChildFails(t *testing.T) {
	svc := NewRecordService(&recordRepoStub{}, &childRepoStub{}, &phraseRepoStub{}, nil, nil)

	_, err := svc.LoadForm(context.Background(), testActor(), childTaro, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceLoadFormKeepsStoredArrivalTime(t *testing.T) {
	roster := testRoster()
	arrival := "14:30"
	records := &recordRepoStub{
		existing: &models.DailyRecord{ID: "rec-1", ChildID: childTaro, ArrivalTime: &arrival},
	}
	svc := NewRecordService(records, &childRepoStub{children: rosterMap(roster), roster: roster}, &phraseRepoStub{}, nil, nil)

	form, err := svc.LoadForm(context.Background(), testActor(), childTaro, "2026-02-03")
	require.NoError(t, err)
	require.NotNil(t, form.ExistingRecord)
	assert.Empty(t, form.DefaultArrivalTime)
}

func TestRecordServiceLoadFormRanksPhrasesByChildTags(t *testing.T) {
	roster := testRoster()
	roster[0].DomainTags = []string{"運動・感覚"}
	children := &childRepoStub{children: rosterMap(roster), roster: roster}
	phrases := &phraseRepoStub{phrases: []models.Phrase{
		{ID: "p1", Category: "生活", DomainTags: []string{"健康・生活"}},
		{ID: "p2", Category: "運動", DomainTags: []string{"運動・感覚"}},
	}}
	svc := NewRecordService(&recordRepoStub{}, children, phrases, nil, nil)

	form, err := svc.LoadForm(context.Background(), testActor(), childTaro, "2026-02-03")
	require.NoError(t, err)
	require.Len(t, form.PhraseGroups, 2)
	assert.Equal(t, "運動", form.PhraseGroups[0].Category)
}
