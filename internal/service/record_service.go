package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type recordRepository interface {
	FindByChildAndDate(ctx context.Context, facilityID, childID string, date time.Time) (*models.DailyRecord, error)
	ListByDate(ctx context.Context, facilityID string, date time.Time) ([]models.DailyRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.RecordWithChild, error)
	Upsert(ctx context.Context, record *models.DailyRecord) (*models.DailyRecord, error)
	Delete(ctx context.Context, facilityID, id string) error
}

type recordChildRepository interface {
	FindByID(ctx context.Context, facilityID, id string) (*models.Child, error)
	List(ctx context.Context, filter models.ChildFilter) ([]models.Child, error)
}

type recordPhraseRepository interface {
	ListForFacility(ctx context.Context, facilityID string) ([]models.Phrase, error)
}

// RecordService implements the daily record capture workflow: form load,
// upsert save with auto-advance, history, and deletion.
type RecordService struct {
	records   recordRepository
	children  recordChildRepository
	phrases   recordPhraseRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecordService constructs a RecordService instance.
func NewRecordService(records recordRepository, children recordChildRepository, phrases recordPhraseRepository, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RecordService{
		records:   records,
		children:  children,
		phrases:   phrases,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// SaveRecordRequest is the capture form payload. The facility is never
// taken from the payload; it is stamped from the authenticated actor.
type SaveRecordRequest struct {
	ChildID       string   `json:"child_id" validate:"required,uuid"`
	Date          string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Mood          string   `json:"mood" validate:"omitempty,oneof=good neutral bad"`
	Activities    []string `json:"activities"`
	Phrases       []string `json:"phrases"`
	Memo          string   `json:"memo" validate:"max=2000"`
	ArrivalTime   string   `json:"arrival_time" validate:"omitempty,datetime=15:04"`
	DepartureTime string   `json:"departure_time" validate:"omitempty,datetime=15:04"`
	PickupMethod  string   `json:"pickup_method"`
}

// SaveRecordResult reports the stored record, whether an existing row was
// overwritten, and which roster child the UI should advance to next.
type SaveRecordResult struct {
	Record      *models.DailyRecord `json:"record"`
	Updated     bool                `json:"updated"`
	NextChildID *string             `json:"next_child_id"`
}

// LoadForm assembles everything the capture screen needs in one response.
// The five reads run concurrently; only a missing child fails the load,
// every other miss degrades to an empty section.
func (s *RecordService) LoadForm(ctx context.Context, actor models.Actor, childID, dateStr string) (*models.RecordForm, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	date, err := s.resolveDate(dateStr)
	if err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		child    *models.Child
		childErr error
		phrases  []models.Phrase
		existing *models.DailyRecord
		roster   []models.Child
		recorded []models.DailyRecord
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		child, childErr = s.children.FindByID(ctx, actor.FacilityID, childID)
	}()
	go func() {
		defer wg.Done()
		var err error
		if phrases, err = s.phrases.ListForFacility(ctx, actor.FacilityID); err != nil {
			s.logger.Warn("form load: phrase bank unavailable", zap.Error(err))
			phrases = nil
		}
	}()
	go func() {
		defer wg.Done()
		rec, err := s.records.FindByChildAndDate(ctx, actor.FacilityID, childID, date)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("form load: existing record unavailable", zap.Error(err))
			}
			return
		}
		existing = rec
	}()
	go func() {
		defer wg.Done()
		active := true
		var err error
		if roster, err = s.children.List(ctx, models.ChildFilter{FacilityID: actor.FacilityID, Active: &active}); err != nil {
			s.logger.Warn("form load: roster unavailable", zap.Error(err))
			roster = nil
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if recorded, err = s.records.ListByDate(ctx, actor.FacilityID, date); err != nil {
			s.logger.Warn("form load: recorded set unavailable", zap.Error(err))
			recorded = nil
		}
	}()
	wg.Wait()

	if childErr != nil {
		if errors.Is(childErr, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Wrap(childErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch child")
	}

	recordedIDs := make([]string, 0, len(recorded))
	for _, rec := range recorded {
		recordedIDs = append(recordedIDs, rec.ChildID)
	}

	form := &models.RecordForm{
		Child:            child,
		PhraseGroups:     GroupPhrases(RankPhrases(child.DomainTags, phrases)),
		ExistingRecord:   existing,
		Roster:           roster,
		RecordedChildIDs: recordedIDs,
		Date:             date.Format("2006-01-02"),
	}
	// Arrival time defaults to the current clock only on a fresh record;
	// an existing record's stored time must not be clobbered.
	if existing == nil {
		form.DefaultArrivalTime = s.now().Format("15:04")
	}
	return form, nil
}

// Save upserts the record for (child, date) and computes which roster
// child to advance to. A save without a resolvable profile never writes.
func (s *RecordService) Save(ctx context.Context, actor models.Actor, req SaveRecordRequest) (*SaveRecordResult, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "save requires an authenticated profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid record payload")
	}
	if req.PickupMethod != "" && !models.KnownPickupMethod(req.PickupMethod) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown pickup method")
	}
	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.children.FindByID(ctx, actor.FacilityID, req.ChildID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch child")
	}

	updated := true
	if _, err := s.records.FindByChildAndDate(ctx, actor.FacilityID, req.ChildID, date); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing record")
		}
		updated = false
	}

	recordedBy := actor.ProfileID
	record := &models.DailyRecord{
		FacilityID:    actor.FacilityID,
		ChildID:       req.ChildID,
		Date:          date,
		Activities:    req.Activities,
		Phrases:       req.Phrases,
		Memo:          optionalString(req.Memo),
		ArrivalTime:   optionalString(req.ArrivalTime),
		DepartureTime: optionalString(req.DepartureTime),
		PickupMethod:  optionalString(req.PickupMethod),
		RecordedBy:    &recordedBy,
	}
	if req.Mood != "" {
		mood := models.Mood(req.Mood)
		record.Mood = &mood
	}

	stored, err := s.records.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save record")
	}

	next, err := s.nextUnrecorded(ctx, actor.FacilityID, date, req.ChildID)
	if err != nil {
		// Auto-advance is a convenience; the save already landed.
		s.logger.Warn("failed to compute next child", zap.Error(err))
		next = nil
	}

	return &SaveRecordResult{Record: stored, Updated: updated, NextChildID: next}, nil
}

// nextUnrecorded picks the first active roster child, in kana order, with
// no record for the date. The just-saved child is always excluded. A nil
// result means the roster is complete.
func (s *RecordService) nextUnrecorded(ctx context.Context, facilityID string, date time.Time, savedChildID string) (*string, error) {
	active := true
	roster, err := s.children.List(ctx, models.ChildFilter{FacilityID: facilityID, Active: &active})
	if err != nil {
		return nil, err
	}
	recorded, err := s.records.ListByDate(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}
	done := map[string]struct{}{savedChildID: {}}
	for _, rec := range recorded {
		done[rec.ChildID] = struct{}{}
	}
	for _, child := range roster {
		if _, ok := done[child.ID]; !ok {
			id := child.ID
			return &id, nil
		}
	}
	return nil, nil
}

// History returns the facility's saved records, filtered and newest first.
func (s *RecordService) History(ctx context.Context, actor models.Actor, filter models.RecordFilter) ([]models.RecordWithChild, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	filter.FacilityID = actor.FacilityID
	rows, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}
	return rows, nil
}

// Delete removes one record from the history view.
func (s *RecordService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if actor.IsZero() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if err := s.records.Delete(ctx, actor.FacilityID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete record")
	}
	return nil
}

// resolveDate parses a form date, falling back to the server-local today.
func (s *RecordService) resolveDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		y, m, d := s.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format")
	}
	return date, nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
