package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patto-app/patto-api/internal/models"
)

func newRecordMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func recordRows() *sqlmock.Rows {
	mood := "good"
	return sqlmock.NewRows([]string{
		"id", "facility_id", "child_id", "date", "mood", "activities", "phrases",
		"memo", "arrival_time", "departure_time", "pickup_method", "recorded_by",
		"created_at", "updated_at",
	}).AddRow(
		"rec-1", "fac-1", "child-1", time.Now(), &mood, pq.StringArray{"工作"}, pq.StringArray{"集中して取り組めた"},
		nil, "15:30", nil, "送迎車", "profile-1",
		time.Now(), time.Now(),
	)
}

func TestRecordRepositoryUpsertInsertsOnConflict(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery(`INSERT INTO daily_records .* ON CONFLICT \(child_id, date\)`).
		WithArgs(
			sqlmock.AnyArg(), "fac-1", "child-1", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(recordRows())

	mood := models.MoodGood
	stored, err := repo.Upsert(context.Background(), &models.DailyRecord{
		FacilityID: "fac-1",
		ChildID:    "child-1",
		Date:       time.Now(),
		Mood:       &mood,
		Activities: pq.StringArray{"工作"},
		Phrases:    pq.StringArray{"集中して取り組めた"},
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", stored.ID)
	assert.Equal(t, "child-1", stored.ChildID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryUpsertGeneratesID(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery(`INSERT INTO daily_records`).
		WillReturnRows(recordRows())

	record := &models.DailyRecord{FacilityID: "fac-1", ChildID: "child-1", Date: time.Now()}
	_, err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestRecordRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM daily_records WHERE facility_id = \$1 AND date = \$2`).
		WithArgs("fac-1", date).
		WillReturnRows(recordRows())

	rows, err := repo.ListByDate(context.Background(), "fac-1", date)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	joined := recordRows()
	mock.ExpectQuery(`SELECT dr\..* FROM daily_records dr\s+JOIN children c ON c\.id = dr\.child_id\s+WHERE dr\.facility_id = \$1 AND dr\.child_id = \$2 AND dr\.date >= \$3 AND dr\.date <= \$4\s+ORDER BY dr\.created_at DESC`).
		WithArgs("fac-1", "child-1", from, to).
		WillReturnRows(joined.AddRow(
			"rec-2", "fac-1", "child-1", time.Now(), nil, pq.StringArray{}, pq.StringArray{},
			nil, nil, nil, nil, nil, time.Now(), time.Now(),
		))

	_, err := repo.List(context.Background(), models.RecordFilter{
		FacilityID: "fac-1",
		ChildID:    "child-1",
		DateFrom:   &from,
		DateTo:     &to,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryDeleteMissingRowFails(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectExec(`DELETE FROM daily_records WHERE id = \$1 AND facility_id = \$2`).
		WithArgs("rec-9", "fac-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "fac-1", "rec-9")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
