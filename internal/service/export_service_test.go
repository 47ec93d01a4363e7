package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/export"
)

func newTestExportService(records *recordRepoStub, children *childRepoStub, attendances *attendanceRepoStub) *ExportService {
	return NewExportService(records, children, attendances, export.NewCSVExporter(), export.NewPDFExporter("", ""), nil)
}

func TestExportServiceDailyLogCSV(t *testing.T) {
	mood := models.MoodGood
	records := &recordRepoStub{history: []models.RecordWithChild{
		{
			DailyRecord: models.DailyRecord{
				ChildID:    childTaro,
				Mood:       &mood,
				Activities: []string{"工作", "外遊び"},
			},
			ChildName: "太郎",
		},
	}}
	svc := newTestExportService(records, &childRepoStub{}, &attendanceRepoStub{})

	file, err := svc.DailyLog(context.Background(), testActor(), "2026-04-01", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "daily-log-2026-04-01.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	body := string(file.Content)
	assert.Contains(t, body, "児童名,気分,活動内容,記録フレーズ,来所時刻,帰宅時刻,送迎,メモ")
	assert.Contains(t, body, "太郎,良好,工作、外遊び")
}

func TestExportServiceDailyLogRejectsBadDate(t *testing.T) {
	svc := newTestExportService(&recordRepoStub{}, &childRepoStub{}, &attendanceRepoStub{})

	_, err := svc.DailyLog(context.Background(), testActor(), "04/01/2026", FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceMonthlyAttendanceFillsGrid(t *testing.T) {
	roster := testRoster()
	attendances := &attendanceRepoStub{byRange: []models.Attendance{
		{ChildID: childTaro, Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), IsPresent: true},
		{ChildID: childTaro, Date: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), IsPresent: false},
	}}
	svc := newTestExportService(&recordRepoStub{}, &childRepoStub{children: rosterMap(roster), roster: roster}, attendances)

	file, err := svc.MonthlyAttendance(context.Background(), testActor(), childTaro, "2026-04", FormatCSV)
	require.NoError(t, err)

	body := string(file.Content)
	assert.Contains(t, body, "2026-04-01,水,出席")
	assert.Contains(t, body, "2026-04-02,木,欠席")
	// Unmarked days appear with a blank status cell.
	assert.Contains(t, body, "2026-04-03,金,\n")
	assert.Contains(t, body, "2026-04-30,木,")
}

func TestExportServiceMonthlyAttendanceUnknownChild(t *testing.T) {
	svc := newTestExportService(&recordRepoStub{}, &childRepoStub{children: map[string]*models.Child{}}, &attendanceRepoStub{})

	_, err := svc.MonthlyAttendance(context.Background(), testActor(), childTaro, "2026-04", FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceServiceRecordIsPDF(t *testing.T) {
	roster := testRoster()
	mood := models.MoodNeutral
	records := &recordRepoStub{existing: &models.DailyRecord{
		ChildID: childTaro,
		Mood:    &mood,
		Phrases: []string{"落ち着いて過ごせた"},
	}}
	svc := newTestExportService(records, &childRepoStub{children: rosterMap(roster), roster: roster}, &attendanceRepoStub{})

	file, err := svc.ServiceRecord(context.Background(), testActor(), childTaro, "2026-04-01")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "%PDF", string(file.Content[:4]))
}

func TestExportServiceRequiresActor(t *testing.T) {
	svc := newTestExportService(&recordRepoStub{}, &childRepoStub{}, &attendanceRepoStub{})

	_, err := svc.DailyLog(context.Background(), models.Actor{}, "", FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
