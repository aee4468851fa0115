package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-archive/internal/models"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

type recordRepository[T any, P interface {
	*T
	models.Owned
}] interface {
	Create(ctx context.Context, rec P) error
	Update(ctx context.Context, rec P) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (P, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]T, error)
	Search(ctx context.Context, filter models.RecordFilter) ([]T, error)
}

// RecordService validates and persists one kind of teacher-owned record.
type RecordService[T any, P interface {
	*T
	models.Owned
}] struct {
	repo      recordRepository[T, P]
	kind      string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs a RecordService. kind names the record in error messages.
func NewRecordService[T any, P interface {
	*T
	models.Owned
}](repo recordRepository[T, P], kind string, validate *validator.Validate, logger *zap.Logger) *RecordService[T, P] {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService[T, P]{repo: repo, kind: kind, validator: validate, logger: logger}
}

// Create validates rec and inserts it for its owning teacher.
func (s *RecordService[T, P]) Create(ctx context.Context, rec P) (P, error) {
	if err := s.validator.Struct(rec); err != nil {
		return nil, validationError(err, fmt.Sprintf("invalid %s payload", s.kind))
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, s.writeError(err, "create")
	}
	return rec, nil
}

// Update validates rec and overwrites the stored record with the same id.
// The owning teacher of a record never changes.
func (s *RecordService[T, P]) Update(ctx context.Context, id string, rec P) (P, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, s.kind+" not found", fmt.Sprintf("failed to load %s", s.kind))
	}
	meta := rec.Meta()
	meta.ID = id
	meta.TeacherID = existing.Meta().TeacherID
	meta.CreatedAt = existing.Meta().CreatedAt

	if err := s.validator.Struct(rec); err != nil {
		return nil, validationError(err, fmt.Sprintf("invalid %s payload", s.kind))
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, s.writeError(err, "update")
	}
	return rec, nil
}

// Delete removes a record by id.
func (s *RecordService[T, P]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, s.kind+" not found", fmt.Sprintf("failed to delete %s", s.kind))
	}
	return nil
}

// Get returns a record by id.
func (s *RecordService[T, P]) Get(ctx context.Context, id string) (P, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, s.kind+" not found", fmt.Sprintf("failed to load %s", s.kind))
	}
	return rec, nil
}

// ListByTeacher returns a teacher's records, most recent first.
func (s *RecordService[T, P]) ListByTeacher(ctx context.Context, teacherID string) ([]T, error) {
	if strings.TrimSpace(teacherID) == "" {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "teacher id is required"), "teacher_id")
	}
	items, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeError(err, s.kind+" not found", fmt.Sprintf("failed to list %s records", s.kind))
	}
	return items, nil
}

// Search returns records matching filter.
func (s *RecordService[T, P]) Search(ctx context.Context, filter models.RecordFilter) ([]T, error) {
	items, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, storeError(err, s.kind+" not found", fmt.Sprintf("failed to search %s records", s.kind))
	}
	return items, nil
}

func (s *RecordService[T, P]) writeError(err error, verb string) error {
	if appErrors.HasCode(err, appErrors.ErrForeignKey.Code) {
		return appErrors.Rewrap(appErrors.ErrForeignKey, err, fmt.Sprintf("%s must reference an existing teacher", s.kind))
	}
	return storeError(err, s.kind+" not found", fmt.Sprintf("failed to %s %s", verb, s.kind))
}
