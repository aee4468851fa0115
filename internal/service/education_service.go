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

type educationRepository = recordRepository[models.EducationRecord, *models.EducationRecord]

// EducationService manages education records together with their certificate scans.
type EducationService struct {
	*RecordService[models.EducationRecord, *models.EducationRecord]
	repo  educationRepository
	store artifactStore
}

// NewEducationService constructs an EducationService.
func NewEducationService(repo educationRepository, store artifactStore, validate *validator.Validate, logger *zap.Logger) *EducationService {
	return &EducationService{
		RecordService: NewRecordService[models.EducationRecord](repo, "education record", validate, logger),
		repo:          repo,
		store:         store,
	}
}

// Create inserts rec without a scan. A scan reference is only ever taken from the artifact store.
func (s *EducationService) Create(ctx context.Context, rec *models.EducationRecord) (*models.EducationRecord, error) {
	rec.ScanRef = nil
	return s.RecordService.Create(ctx, rec)
}

// CreateWithScan inserts rec, first copying scanPath into the artifact store when given.
// The stored scan is removed again if the row cannot be written.
func (s *EducationService) CreateWithScan(ctx context.Context, rec *models.EducationRecord, scanPath string) (*models.EducationRecord, error) {
	if strings.TrimSpace(scanPath) == "" {
		return s.Create(ctx, rec)
	}
	if err := s.validator.Struct(rec); err != nil {
		return nil, validationError(err, "invalid education record payload")
	}
	ref, err := s.store.Store(ctx, scanPath, storage.CategoryScan)
	if err != nil {
		return nil, err
	}
	rec.ScanRef = ref.Ptr()
	if err := s.repo.Create(ctx, rec); err != nil {
		s.discard(ref)
		rec.ScanRef = nil
		return nil, s.writeError(err, "create")
	}
	return rec, nil
}

// Update overwrites the record fields while keeping its current scan.
func (s *EducationService) Update(ctx context.Context, id string, rec *models.EducationRecord) (*models.EducationRecord, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "education record not found", "failed to load education record")
	}
	rec.ScanRef = existing.ScanRef
	return s.RecordService.Update(ctx, id, rec)
}

// ReplaceScan stores a new scan, repoints the record at it and then removes the previous file.
func (s *EducationService) ReplaceScan(ctx context.Context, id, scanPath string) (*models.EducationRecord, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "education record not found", "failed to load education record")
	}
	ref, err := s.store.Store(ctx, scanPath, storage.CategoryScan)
	if err != nil {
		return nil, err
	}
	previous := storage.Deref(rec.ScanRef)
	rec.ScanRef = ref.Ptr()
	if err := s.repo.Update(ctx, rec); err != nil {
		s.discard(ref)
		return nil, s.writeError(err, "update")
	}
	s.discard(previous)
	return rec, nil
}

// Delete removes the record and afterwards its scan file.
func (s *EducationService) Delete(ctx context.Context, id string) error {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "education record not found", "failed to load education record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "education record not found", "failed to delete education record")
	}
	s.discard(storage.Deref(rec.ScanRef))
	return nil
}

// ListWithScanStatus returns a teacher's education records and whether each scan file is present.
func (s *EducationService) ListWithScanStatus(ctx context.Context, teacherID string) ([]models.EducationScanStatus, error) {
	records, err := s.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	out := make([]models.EducationScanStatus, 0, len(records))
	for _, rec := range records {
		out = append(out, models.EducationScanStatus{
			Record:  rec,
			HasScan: rec.ScanRef != nil && s.store.Exists(*rec.ScanRef),
		})
	}
	return out, nil
}

// ScanPreview renders a thumbnail for image scans.
func (s *EducationService) ScanPreview(ctx context.Context, id string, size PreviewSize) ([]byte, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "education record not found", "failed to load education record")
	}
	if rec.ScanRef == nil || !s.store.Exists(*rec.ScanRef) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "education record has no scan")
	}
	if !storage.Previewable(*rec.ScanRef) {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "scan is not an image"), "scan_ref")
	}
	data, err := s.store.Preview(*rec.ScanRef, size.Width, size.Height)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render scan preview")
	}
	return data, nil
}

func (s *EducationService) discard(ref storage.ArtifactRef) {
	if ref.IsZero() {
		return
	}
	if err := s.store.Remove(ref); err != nil {
		s.logger.Warn("failed to remove unreferenced scan", zap.String("artifact", ref.String()), zap.Error(err))
	}
}
