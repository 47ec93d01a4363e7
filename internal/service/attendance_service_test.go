package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type attendanceRepoStub struct {
	upserted *models.Attendance
	byRange  []models.Attendance
	byDate   []models.Attendance
}

func (s *attendanceRepoStub) Upsert(ctx context.Context, att *models.Attendance) (*models.Attendance, error) {
	stored := *att
	stored.ID = "att-1"
	s.upserted = &stored
	return &stored, nil
}

func (s *attendanceRepoStub) ListByChildRange(ctx context.Context, facilityID, childID string, from, to time.Time) ([]models.Attendance, error) {
	return s.byRange, nil
}

func (s *attendanceRepoStub) ListByDate(ctx context.Context, facilityID string, date time.Time) ([]models.Attendance, error) {
	return s.byDate, nil
}

func TestAttendanceServiceMarkStampsActorFacility(t *testing.T) {
	roster := testRoster()
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, &childRepoStub{children: rosterMap(roster), roster: roster}, nil, nil)

	att, err := svc.Mark(context.Background(), testActor(), MarkAttendanceRequest{
		ChildID:   childTaro,
		Date:      "2026-04-01",
		IsPresent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "fac-1", att.FacilityID)
	assert.True(t, att.IsPresent)
	assert.Equal(t, "2026-04-01", repo.upserted.Date.Format("2006-01-02"))
}

func TestAttendanceServiceMarkUnknownChild(t *testing.T) {
	svc := NewAttendanceService(&attendanceRepoStub{}, &childRepoStub{children: map[string]*models.Child{}}, nil, nil)

	_, err := svc.Mark(context.Background(), testActor(), MarkAttendanceRequest{
		ChildID:   childTaro,
		IsPresent: true,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkDefaultsToToday(t *testing.T) {
	roster := testRoster()
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, &childRepoStub{children: rosterMap(roster), roster: roster}, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 4, 15, 18, 30, 0, 0, time.Local) }

	_, err := svc.Mark(context.Background(), testActor(), MarkAttendanceRequest{ChildID: childTaro, IsPresent: false})
	require.NoError(t, err)
	assert.Equal(t, "2026-04-15", repo.upserted.Date.Format("2006-01-02"))
}

func TestAttendanceServiceMonthlyRejectsBadMonth(t *testing.T) {
	svc := NewAttendanceService(&attendanceRepoStub{}, &childRepoStub{}, nil, nil)

	_, err := svc.MonthlyByChild(context.Background(), testActor(), childTaro, "2026/04")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMonthBoundsCoversFullMonth(t *testing.T) {
	from, to, err := monthBounds("2026-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", from.Format("2006-01-02"))
	assert.Equal(t, "2026-02-28", to.Format("2006-01-02"))

	from, to, err = monthBounds("2028-02")
	require.NoError(t, err)
	assert.Equal(t, "2028-02-01", from.Format("2006-01-02"))
	assert.Equal(t, "2028-02-29", to.Format("2006-01-02"))
}
