package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, att *models.Attendance) (*models.Attendance, error)
	ListByChildRange(ctx context.Context, facilityID, childID string, from, to time.Time) ([]models.Attendance, error)
	ListByDate(ctx context.Context, facilityID string, date time.Time) ([]models.Attendance, error)
}

// AttendanceService tracks the present/absent flag per child per date.
type AttendanceService struct {
	attendances attendanceRepository
	children    recordChildRepository
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(attendances attendanceRepository, children recordChildRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{
		attendances: attendances,
		children:    children,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// MarkAttendanceRequest flips one child's flag for one date.
type MarkAttendanceRequest struct {
	ChildID   string `json:"child_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	IsPresent bool   `json:"is_present"`
}

// Mark upserts the flag for (child, date).
func (s *AttendanceService) Mark(ctx context.Context, actor models.Actor, req MarkAttendanceRequest) (*models.Attendance, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date := s.today()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format")
		}
		date = parsed
	}

	if _, err := s.children.FindByID(ctx, actor.FacilityID, req.ChildID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch child")
	}

	stored, err := s.attendances.Upsert(ctx, &models.Attendance{
		FacilityID: actor.FacilityID,
		ChildID:    req.ChildID,
		Date:       date,
		IsPresent:  req.IsPresent,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return stored, nil
}

// MonthlyByChild returns one child's flags for a "2006-01" month.
func (s *AttendanceService) MonthlyByChild(ctx context.Context, actor models.Actor, childID, month string) ([]models.Attendance, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	from, to, err := monthBounds(month)
	if err != nil {
		return nil, err
	}
	rows, err := s.attendances.ListByChildRange(ctx, actor.FacilityID, childID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}
	return rows, nil
}

// DailySheet returns the facility's flags for one date.
func (s *AttendanceService) DailySheet(ctx context.Context, actor models.Actor, dateStr string) ([]models.Attendance, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	date := s.today()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format")
		}
		date = parsed
	}
	rows, err := s.attendances.ListByDate(ctx, actor.FacilityID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}
	return rows, nil
}

func (s *AttendanceService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthBounds expands a "2006-01" month into its first and last day.
func monthBounds(month string) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid month format")
	}
	to := from.AddDate(0, 1, -1)
	return from, to, nil
}
