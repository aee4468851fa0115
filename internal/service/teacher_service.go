package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-archive/internal/models"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
	"github.com/noah-isme/teacher-archive/pkg/storage"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByIDNumber(ctx context.Context, idNumber, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	UpdatePhoto(ctx context.Context, id string, ref *storage.ArtifactRef) error
}

// artifactStore is the slice of the artifact store services depend on.
type artifactStore interface {
	Store(ctx context.Context, sourcePath string, category storage.Category) (storage.ArtifactRef, error)
	Remove(ref storage.ArtifactRef) error
	Exists(ref storage.ArtifactRef) bool
	Preview(ref storage.ArtifactRef, width, height int) ([]byte, error)
}

// TeacherProfile carries the editable teacher fields.
type TeacherProfile struct {
	Name            string `json:"name" validate:"required,max=100"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate       string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Ethnicity       string `json:"ethnicity" validate:"max=50"`
	Hometown        string `json:"hometown" validate:"max=100"`
	IDNumber        string `json:"id_number" validate:"required,max=32"`
	PartyJoinDate   string `json:"party_join_date" validate:"omitempty,datetime=2006-01-02"`
	WorkStartDate   string `json:"work_start_date" validate:"omitempty,datetime=2006-01-02"`
	HealthStatus    string `json:"health_status" validate:"max=50"`
	TeachingSubject string `json:"teaching_subject" validate:"max=50"`
	CurrentPosition string `json:"current_position" validate:"max=100"`
}

// CreateTeacherRequest represents payload for creating teachers.
type CreateTeacherRequest struct {
	TeacherProfile
	// PhotoPath is an optional source file copied into the artifact store.
	PhotoPath string `json:"photo_path"`
}

// UpdateTeacherRequest represents payload for updating teachers.
type UpdateTeacherRequest struct {
	TeacherProfile
}

// PreviewSize bounds rendered photo previews.
type PreviewSize struct {
	Width  int
	Height int
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	store     artifactStore
	preview   PreviewSize
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, store artifactStore, preview PreviewSize, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if preview.Width <= 0 || preview.Height <= 0 {
		preview = PreviewSize{Width: 150, Height: 200}
	}
	return &TeacherService{repo: repo, store: store, preview: preview, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list teachers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return teachers, pagination, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher. A supplied photo is stored first; if the row cannot be
// written the stored copy is removed again so no file is left without an owner.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	if err := s.ensureUniqueIDNumber(ctx, req.IDNumber, ""); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{}
	applyProfile(teacher, req.TeacherProfile)

	if strings.TrimSpace(req.PhotoPath) != "" {
		ref, err := s.store.Store(ctx, req.PhotoPath, storage.CategoryPhoto)
		if err != nil {
			return nil, err
		}
		teacher.PhotoRef = ref.Ptr()
	}

	if err := s.repo.Create(ctx, teacher); err != nil {
		s.discard(storage.Deref(teacher.PhotoRef))
		return nil, storeError(err, "teacher not found", "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies an existing teacher's profile.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to load teacher")
	}
	if err := s.ensureUniqueIDNumber(ctx, req.IDNumber, id); err != nil {
		return nil, err
	}

	applyProfile(teacher, req.TeacherProfile)
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, storeError(err, "teacher not found", "failed to update teacher")
	}
	return teacher, nil
}

// ReplacePhoto stores a new photo, repoints the teacher at it and only then removes the previous file.
func (s *TeacherService) ReplacePhoto(ctx context.Context, id, sourcePath string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to load teacher")
	}

	ref, err := s.store.Store(ctx, sourcePath, storage.CategoryPhoto)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePhoto(ctx, id, ref.Ptr()); err != nil {
		s.discard(ref)
		return nil, storeError(err, "teacher not found", "failed to update teacher photo")
	}

	previous := storage.Deref(teacher.PhotoRef)
	teacher.PhotoRef = ref.Ptr()
	s.discard(previous)
	return teacher, nil
}

// RemovePhoto clears the teacher's photo reference and deletes the file afterwards.
func (s *TeacherService) RemovePhoto(ctx context.Context, id string) error {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "teacher not found", "failed to load teacher")
	}
	if teacher.PhotoRef == nil {
		return nil
	}
	if err := s.repo.UpdatePhoto(ctx, id, nil); err != nil {
		return storeError(err, "teacher not found", "failed to clear teacher photo")
	}
	s.discard(*teacher.PhotoRef)
	return nil
}

// PhotoPreview renders a JPEG thumbnail of the teacher's photo.
func (s *TeacherService) PhotoPreview(ctx context.Context, id string) ([]byte, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher not found", "failed to load teacher")
	}
	if teacher.PhotoRef == nil || !s.store.Exists(*teacher.PhotoRef) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher has no photo")
	}
	data, err := s.store.Preview(*teacher.PhotoRef, s.preview.Width, s.preview.Height)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render photo preview")
	}
	return data, nil
}

func (s *TeacherService) ensureUniqueIDNumber(ctx context.Context, idNumber, excludeID string) error {
	exists, err := s.repo.ExistsByIDNumber(ctx, strings.TrimSpace(idNumber), excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to check id number uniqueness")
	}
	if exists {
		return appErrors.WithField(appErrors.Clone(appErrors.ErrUniqueConstraint, "id number already used"), "id_number")
	}
	return nil
}

// discard removes an artifact no row references; failures are logged only.
func (s *TeacherService) discard(ref storage.ArtifactRef) {
	if ref.IsZero() {
		return
	}
	if err := s.store.Remove(ref); err != nil {
		s.logger.Warn("failed to remove unreferenced photo", zap.String("artifact", ref.String()), zap.Error(err))
	}
}

func applyProfile(teacher *models.Teacher, p TeacherProfile) {
	teacher.Name = strings.TrimSpace(p.Name)
	teacher.Gender = p.Gender
	teacher.BirthDate = p.BirthDate
	teacher.Ethnicity = strings.TrimSpace(p.Ethnicity)
	teacher.Hometown = strings.TrimSpace(p.Hometown)
	teacher.IDNumber = strings.TrimSpace(p.IDNumber)
	teacher.PartyJoinDate = p.PartyJoinDate
	teacher.WorkStartDate = p.WorkStartDate
	teacher.HealthStatus = strings.TrimSpace(p.HealthStatus)
	teacher.TeachingSubject = strings.TrimSpace(p.TeachingSubject)
	teacher.CurrentPosition = strings.TrimSpace(p.CurrentPosition)
}
