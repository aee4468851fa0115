package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-archive/internal/models"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

type mockPaperRepo struct {
	items      map[string]models.Paper
	teachers   map[string]bool
	lastFilter models.RecordFilter
}

func newMockPaperRepo(teacherIDs ...string) *mockPaperRepo {
	teachers := make(map[string]bool, len(teacherIDs))
	for _, id := range teacherIDs {
		teachers[id] = true
	}
	return &mockPaperRepo{items: make(map[string]models.Paper), teachers: teachers}
}

func (m *mockPaperRepo) Create(ctx context.Context, rec *models.Paper) error {
	if !m.teachers[rec.TeacherID] {
		return fmt.Errorf("create papers: %w", appErrors.Clone(appErrors.ErrForeignKey, ""))
	}
	rec.ID = fmt.Sprintf("paper-%d", len(m.items)+1)
	rec.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec.UpdatedAt = rec.CreatedAt
	m.items[rec.ID] = *rec
	return nil
}

func (m *mockPaperRepo) Update(ctx context.Context, rec *models.Paper) error {
	if _, ok := m.items[rec.ID]; !ok {
		return sql.ErrNoRows
	}
	m.items[rec.ID] = *rec
	return nil
}

func (m *mockPaperRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockPaperRepo) FindByID(ctx context.Context, id string) (*models.Paper, error) {
	rec, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &rec, nil
}

func (m *mockPaperRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Paper, error) {
	var out []models.Paper
	for _, rec := range m.items {
		if rec.TeacherID == teacherID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockPaperRepo) Search(ctx context.Context, filter models.RecordFilter) ([]models.Paper, error) {
	m.lastFilter = filter
	if _, ok := filter.Equals["nonsense"]; ok {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unknown search column"), "nonsense")
	}
	return m.ListByTeacher(ctx, filter.TeacherID)
}

func TestRecordServiceCreate(t *testing.T) {
	repo := newMockPaperRepo("t1")
	svc := NewRecordService[models.Paper](repo, "paper", nil, nil)

	rec, err := svc.Create(context.Background(), &models.Paper{
		RecordMeta:  models.RecordMeta{TeacherID: "t1"},
		PaperTitle:  "Group Work in Algebra",
		PublishDate: "2018-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "paper-1", rec.ID)

	_, err = svc.Create(context.Background(), &models.Paper{
		RecordMeta: models.RecordMeta{TeacherID: "ghost"},
		PaperTitle: "Orphan",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForeignKey)
	assert.Equal(t, "paper must reference an existing teacher", appErrors.FromError(err).Message)
}

func TestRecordServiceCreateValidation(t *testing.T) {
	svc := NewRecordService[models.Paper](newMockPaperRepo("t1"), "paper", nil, nil)

	_, err := svc.Create(context.Background(), &models.Paper{RecordMeta: models.RecordMeta{TeacherID: "t1"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "PaperTitle", appErrors.FromError(err).Field)

	_, err = svc.Create(context.Background(), &models.Paper{PaperTitle: "No owner"})
	require.Error(t, err)
	assert.Equal(t, "TeacherID", appErrors.FromError(err).Field)
}

func TestRecordServiceUpdateKeepsOwner(t *testing.T) {
	repo := newMockPaperRepo("t1", "t2")
	svc := NewRecordService[models.Paper](repo, "paper", nil, nil)
	created, err := svc.Create(context.Background(), &models.Paper{RecordMeta: models.RecordMeta{TeacherID: "t1"}, PaperTitle: "Draft"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, &models.Paper{
		RecordMeta: models.RecordMeta{TeacherID: "t2"},
		PaperTitle: "Final",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", updated.TeacherID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Final", repo.items[created.ID].PaperTitle)

	_, err = svc.Update(context.Background(), "missing", &models.Paper{PaperTitle: "x"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRecordServiceDeleteAndGet(t *testing.T) {
	repo := newMockPaperRepo("t1")
	svc := NewRecordService[models.Paper](repo, "paper", nil, nil)
	created, err := svc.Create(context.Background(), &models.Paper{RecordMeta: models.RecordMeta{TeacherID: "t1"}, PaperTitle: "Draft"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.PaperTitle)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "paper not found", appErrors.FromError(err).Message)
}

func TestRecordServiceListRequiresTeacher(t *testing.T) {
	svc := NewRecordService[models.Paper](newMockPaperRepo(), "paper", nil, nil)

	_, err := svc.ListByTeacher(context.Background(), " ")
	require.Error(t, err)
	assert.Equal(t, "teacher_id", appErrors.FromError(err).Field)
}

func TestRecordServiceSearchPassesValidationThrough(t *testing.T) {
	repo := newMockPaperRepo("t1")
	svc := NewRecordService[models.Paper](repo, "paper", nil, nil)

	_, err := svc.Search(context.Background(), models.RecordFilter{TeacherID: "t1", Equals: map[string]any{"nonsense": 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "nonsense", appErrors.FromError(err).Field)

	_, err = svc.Search(context.Background(), models.RecordFilter{TeacherID: "t1", Contains: map[string]string{"paper_title": "algebra"}})
	require.NoError(t, err)
	assert.Equal(t, "algebra", repo.lastFilter.Contains["paper_title"])
}
