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

func newChildMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func childRows() *sqlmock.Rows {
	kana := "たなかたろう"
	return sqlmock.NewRows([]string{
		"id", "facility_id", "name", "name_kana", "birth_date", "school", "grade",
		"icon_color", "goals", "domain_tags", "is_active", "created_at", "updated_at",
	}).AddRow(
		"child-1", "fac-1", "田中太郎", &kana, nil, nil, nil,
		"#4F46E5", pq.StringArray{}, pq.StringArray{"運動・感覚"}, true, time.Now(), time.Now(),
	)
}

func TestChildRepositoryListOrdersByKana(t *testing.T) {
	db, mock, cleanup := newChildMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	active := true
	mock.ExpectQuery(`SELECT .* FROM children WHERE facility_id = \$1 AND is_active = \$2 ORDER BY name_kana ASC NULLS LAST, name ASC`).
		WithArgs("fac-1", true).
		WillReturnRows(childRows())

	children, err := repo.List(context.Background(), models.ChildFilter{FacilityID: "fac-1", Active: &active})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "田中太郎", children[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryListSearchFilter(t *testing.T) {
	db, mock, cleanup := newChildMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectQuery(`SELECT .* FROM children WHERE facility_id = \$1 AND \(name ILIKE \$2 OR name_kana ILIKE \$2\)`).
		WithArgs("fac-1", "%田中%").
		WillReturnRows(childRows())

	_, err := repo.List(context.Background(), models.ChildFilter{FacilityID: "fac-1", Search: "田中"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryFindByIDScopedToFacility(t *testing.T) {
	db, mock, cleanup := newChildMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectQuery(`SELECT .* FROM children WHERE id = \$1 AND facility_id = \$2 LIMIT 1`).
		WithArgs("child-1", "fac-1").
		WillReturnRows(childRows())

	child, err := repo.FindByID(context.Background(), "fac-1", "child-1")
	require.NoError(t, err)
	assert.Equal(t, "child-1", child.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newChildMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectExec(`INSERT INTO children`).
		WithArgs(
			sqlmock.AnyArg(), "fac-1", "田中太郎", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), "#4F46E5", sqlmock.AnyArg(), sqlmock.AnyArg(),
			true, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	child := &models.Child{FacilityID: "fac-1", Name: "田中太郎", IconColor: "#4F46E5", IsActive: true}
	err := repo.Create(context.Background(), child)
	require.NoError(t, err)
	assert.NotEmpty(t, child.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryUpdateMissingRowFails(t *testing.T) {
	db, mock, cleanup := newChildMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectExec(`UPDATE children SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Child{ID: "child-9", FacilityID: "fac-1", Name: "x"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newChildMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectExec(`UPDATE children SET is_active = FALSE`).
		WithArgs(sqlmock.AnyArg(), "child-1", "fac-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Deactivate(context.Background(), "fac-1", "child-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
