package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-archive/internal/models"
	"github.com/noah-isme/teacher-archive/pkg/storage"
)

var teacherRowColumns = []string{"id", "name", "gender", "birth_date", "ethnicity", "hometown", "id_number", "photo_ref", "party_join_date",
	"work_start_date", "health_status", "teaching_subject", "current_position", "created_at", "updated_at"}

func newTeacherRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows(teacherRowColumns).
		AddRow("t1", "Li Hua", "male", "1980-01-01", "", "", "11010119800101001X", "photos/photo_a.jpg", "", "", "", "math", "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE 1=1 AND (LOWER(name) LIKE ? OR LOWER(id_number) LIKE ?) ORDER BY name ASC, id ASC LIMIT 20 OFFSET 0")).
		WithArgs("%li%", "%li%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE 1=1 AND (LOWER(name) LIKE ? OR LOWER(id_number) LIKE ?)")).
		WithArgs("%li%", "%li%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.TeacherFilter{Search: "Li"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, list[0].PhotoRef)
	assert.Equal(t, storage.ArtifactRef("photos/photo_a.jpg"), *list[0].PhotoRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateAndUpdatePhoto(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "Li Hua", "", "", "", "", "11010119800101001X", nil, "", "", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{ID: "t-crafted", Name: "Li Hua", IDNumber: "11010119800101001X"}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.NotEqual(t, "t-crafted", teacher.ID)

	ref := storage.ArtifactRef("photos/photo_b.png")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET photo_ref = ?, updated_at = ? WHERE id = ?")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), teacher.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePhoto(context.Background(), teacher.ID, &ref))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("UPDATE teachers SET name = ?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Teacher{ID: "ghost", Name: "Nobody", IDNumber: "x"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsByIDNumber(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id_number = ? AND id <> ? LIMIT 1")).
		WithArgs("11010119800101001X", "t2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByIDNumber(context.Background(), "11010119800101001X", "t2")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id_number = ? LIMIT 1")).
		WithArgs("none").
		WillReturnError(sql.ErrNoRows)
	exists, err = repo.ExistsByIDNumber(context.Background(), "none", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsCountsDistinctIDs(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE id IN (?, ?, ?)")).
		WithArgs("a", "b", "a").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	ok, err := repo.Exists(context.Background(), nil, "a", "b", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
