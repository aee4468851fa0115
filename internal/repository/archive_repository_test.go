package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-archive/pkg/storage"
)

func newArchiveRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestArchiveRepositoryArtifactRefsCollectsPhotoAndScans(t *testing.T) {
	db, mock, cleanup := newArchiveRepoMock(t)
	defer cleanup()
	repo := NewArchiveRepository()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT photo_ref FROM teachers WHERE (id = ?) AND photo_ref IS NOT NULL AND photo_ref <> ''")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"photo_ref"}).AddRow("photos/photo_a.jpg"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT scan_ref FROM education_records WHERE (teacher_id = ?) AND scan_ref IS NOT NULL")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"scan_ref"}).AddRow("scans/scan_b.pdf").AddRow("scans/scan_c.png"))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	refs, err := repo.ArtifactRefs(context.Background(), tx, TeachersTable, "t1")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.Equal(t, []storage.ArtifactRef{"photos/photo_a.jpg", "scans/scan_b.pdf", "scans/scan_c.png"}, refs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryDeleteDependentsCoversMentorAndApprentice(t *testing.T) {
	db, mock, cleanup := newArchiveRepoMock(t)
	defer cleanup()
	repo := NewArchiveRepository()

	mock.ExpectBegin()
	for _, dep := range Dependents(TeachersTable) {
		if dep.Table == "mentoring" {
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mentoring WHERE teacher_id = ? OR apprentice_id = ?")).
				WithArgs("t1", "t1").
				WillReturnResult(sqlmock.NewResult(0, 2))
			continue
		}
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + dep.Table + " WHERE teacher_id = ?")).
			WithArgs("t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	counts, err := repo.DeleteDependents(context.Background(), tx, TeachersTable, "t1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(2), counts["mentoring"])
	assert.Equal(t, int64(1), counts["papers"])
	assert.NotContains(t, counts, "awards")
	assert.NotContains(t, counts, "research_projects")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryDeleteRootMissing(t *testing.T) {
	db, mock, cleanup := newArchiveRepoMock(t)
	defer cleanup()
	repo := NewArchiveRepository()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = ?")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	err = repo.DeleteRoot(context.Background(), tx, TeachersTable, "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDependentsOrderAndIsolation(t *testing.T) {
	deps := Dependents(TeachersTable)
	require.NotEmpty(t, deps)
	deps[0].Table = "mutated"
	assert.NotEqual(t, "mutated", Dependents(TeachersTable)[0].Table)

	names := TableNames()
	assert.Contains(t, names, "awards")
	assert.Contains(t, names, "mentoring")
	assert.Len(t, names, 16)
	assert.Empty(t, Dependents("awards"))
}
