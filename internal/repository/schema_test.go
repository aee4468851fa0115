package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-archive/internal/models"
	"github.com/noah-isme/teacher-archive/pkg/config"
	"github.com/noah-isme/teacher-archive/pkg/database"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.NewSQLite(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "archive.db"),
		BusyTimeout: time.Second,
		JournalMode: "WAL",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db))
	return db
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	teachers := NewTeacherRepository(db)
	require.NoError(t, teachers.Create(ctx, &models.Teacher{Name: "Li Hua", IDNumber: "11010119800101001X"}))

	require.NoError(t, EnsureSchema(ctx, db))

	_, total, err := teachers.List(ctx, models.TeacherFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table'`))
	for _, name := range TableNames() {
		assert.Contains(t, tables, name)
	}
}

func TestSchemaEnforcesConstraints(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	teachers := NewTeacherRepository(db)
	first := &models.Teacher{Name: "Li Hua", IDNumber: "11010119800101001X"}
	require.NoError(t, teachers.Create(ctx, first))

	err := teachers.Create(ctx, &models.Teacher{Name: "Someone Else", IDNumber: "11010119800101001X"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUniqueConstraint.Code))
	assert.Equal(t, "id_number", appErrors.FromError(err).Field)

	papers := NewPaperRepository(db)
	err = papers.Create(ctx, &models.Paper{RecordMeta: models.RecordMeta{TeacherID: "ghost"}, PaperTitle: "Orphan"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForeignKey)

	_, err = db.Exec(`INSERT INTO mentoring (id, teacher_id, apprentice_id, created_at, updated_at) VALUES ('m1', ?, ?, ?, ?)`,
		first.ID, first.ID, time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, database.Translate(err), appErrors.ErrValidation)
}

func TestRecordRepositoryAgainstSQLite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	teacher := &models.Teacher{Name: "Li Hua", IDNumber: "11010119800101001X"}
	require.NoError(t, NewTeacherRepository(db).Create(ctx, teacher))

	titles := NewTitleRecordRepository(db)
	for _, rec := range []*models.TitleRecord{
		{RecordMeta: models.RecordMeta{TeacherID: teacher.ID}, Title: "Level Two", ObtainDate: "2005-09-01"},
		{RecordMeta: models.RecordMeta{TeacherID: teacher.ID}, Title: "Level One", ObtainDate: "2012-09-01"},
	} {
		require.NoError(t, titles.Create(ctx, rec))
	}

	items, err := titles.ListByTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Level One", items[0].Title)

	found, err := titles.Search(ctx, models.RecordFilter{TeacherID: teacher.ID, Contains: map[string]string{"title": "two"}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2005-09-01", found[0].ObtainDate)

	found[0].Post = "grade head"
	require.NoError(t, titles.Update(ctx, &found[0]))
	reloaded, err := titles.FindByID(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "grade head", reloaded.Post)

	count, err := titles.CountByTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
