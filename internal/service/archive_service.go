package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-archive/internal/models"
	"github.com/noah-isme/teacher-archive/internal/repository"
	"github.com/noah-isme/teacher-archive/pkg/database"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
	"github.com/noah-isme/teacher-archive/pkg/storage"
)

type cascadeRepository interface {
	Exists(ctx context.Context, tx *sqlx.Tx, root, id string) (bool, error)
	ArtifactRefs(ctx context.Context, tx *sqlx.Tx, root, id string) ([]storage.ArtifactRef, error)
	DeleteDependents(ctx context.Context, tx *sqlx.Tx, root, id string) (map[string]int64, error)
	DeleteRoot(ctx context.Context, tx *sqlx.Tx, root, id string) error
}

type teacherLookup interface {
	Exists(ctx context.Context, exec sqlx.QueryerContext, ids ...string) (bool, error)
}

type awardWriter interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, award *models.Award) error
	InsertRecipientsTx(ctx context.Context, tx *sqlx.Tx, recipients []models.AwardRecipient) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error
}

type projectWriter interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, project *models.ResearchProject) error
	InsertMembersTx(ctx context.Context, tx *sqlx.Tx, members []models.ProjectMember) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error
}

type mentoringWriter interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, m *models.Mentoring) error
	UpdateOutcome(ctx context.Context, m *models.Mentoring) error
	Delete(ctx context.Context, id string) error
}

type artifactRemover interface {
	Remove(ref storage.ArtifactRef) error
}

type operationObserver interface {
	ObserveOperation(operation string, err error, duration time.Duration)
	RecordCleanupFailure()
}

// ArchiveRepositories groups the repositories the coordinator writes through.
type ArchiveRepositories struct {
	Cascade   cascadeRepository
	Teachers  teacherLookup
	Awards    awardWriter
	Projects  projectWriter
	Mentoring mentoringWriter
}

// RecordAwardRequest describes a shared award and its recipients in listed order.
type RecordAwardRequest struct {
	AwardName    string       `json:"award_name" validate:"required,max=200"`
	Level        models.Level `json:"award_level" validate:"required,level"`
	AwardUnit    string       `json:"award_unit" validate:"max=200"`
	AwardDate    string       `json:"award_date" validate:"omitempty,datetime=2006-01-02"`
	AwardType    string       `json:"award_type" validate:"max=50"`
	RecipientIDs []string     `json:"recipient_ids" validate:"required,min=1,dive,required"`
}

// RecordProjectRequest describes a research project with its leader and members in listed order.
type RecordProjectRequest struct {
	ProjectName    string       `json:"project_name" validate:"required,max=200"`
	Level          models.Level `json:"project_level" validate:"required,level"`
	CompletionDate string       `json:"completion_date" validate:"omitempty,datetime=2006-01-02"`
	LeaderID       string       `json:"leader_id" validate:"required"`
	MemberIDs      []string     `json:"member_ids" validate:"dive,required"`
}

// RecordMentoringRequest pairs a mentor with an apprentice.
type RecordMentoringRequest struct {
	MentorID     string `json:"mentor_id" validate:"required"`
	ApprenticeID string `json:"apprentice_id" validate:"required"`
	StartDate    string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Achievements string `json:"achievements" validate:"max=2000"`
}

// MentoringOutcomeRequest updates the period and achievements of a pairing.
type MentoringOutcomeRequest struct {
	StartDate    string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Achievements string `json:"achievements" validate:"max=2000"`
}

// ArchiveService owns the transaction boundary of every multi-row archive operation.
// Relation rows are only written through it so ranking and leadership rules always hold.
type ArchiveService struct {
	db        database.TxBeginner
	repos     ArchiveRepositories
	store     artifactRemover
	metrics   operationObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewArchiveService constructs the coordinator.
func NewArchiveService(db database.TxBeginner, repos ArchiveRepositories, store artifactRemover, metrics operationObserver, validate *validator.Validate, logger *zap.Logger) *ArchiveService {
	if validate == nil {
		validate = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	return &ArchiveService{db: db, repos: repos, store: store, metrics: metrics, validator: validate, logger: logger}
}

// DeleteTeacher removes a teacher with every dependent and relation row in one transaction.
// Artifact references are collected before any row is removed; the files are deleted only
// after commit, and a failed file removal is logged without failing the operation.
func (s *ArchiveService) DeleteTeacher(ctx context.Context, teacherID string) (result *models.DeleteTeacherResult, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("delete_teacher", err, time.Since(start)) }()

	var refs []storage.ArtifactRef
	var counts map[string]int64
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		found, err := s.repos.Cascade.Exists(ctx, tx, repository.TeachersTable, teacherID)
		if err != nil {
			return err
		}
		if !found {
			return sql.ErrNoRows
		}
		if refs, err = s.repos.Cascade.ArtifactRefs(ctx, tx, repository.TeachersTable, teacherID); err != nil {
			return err
		}
		if counts, err = s.repos.Cascade.DeleteDependents(ctx, tx, repository.TeachersTable, teacherID); err != nil {
			return err
		}
		return s.repos.Cascade.DeleteRoot(ctx, tx, repository.TeachersTable, teacherID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Rewrap(appErrors.ErrTransaction, err, "failed to delete teacher")
	}

	result = &models.DeleteTeacherResult{
		TeacherID:        teacherID,
		DeletedRows:      counts,
		RemovedArtifacts: make([]storage.ArtifactRef, 0, len(refs)),
	}
	for _, ref := range refs {
		if rmErr := s.store.Remove(ref); rmErr != nil {
			s.metrics.RecordCleanupFailure()
			s.logger.Warn("artifact left behind after teacher deletion",
				zap.String("teacher_id", teacherID),
				zap.String("artifact", ref.String()),
				zap.Error(rmErr))
			result.OrphanedArtifacts = append(result.OrphanedArtifacts, ref)
			continue
		}
		result.RemovedArtifacts = append(result.RemovedArtifacts, ref)
	}
	s.logger.Info("teacher deleted",
		zap.String("teacher_id", teacherID),
		zap.Int("artifacts_removed", len(result.RemovedArtifacts)),
		zap.Int("artifacts_orphaned", len(result.OrphanedArtifacts)))
	return result, nil
}

// RecordAward stores a shared award and ranks its recipients 1..n in the supplied order.
// Either the award and every recipient row are written, or nothing is.
func (s *ArchiveService) RecordAward(ctx context.Context, req RecordAwardRequest) (award *models.Award, recipients []models.AwardRecipient, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("record_award", err, time.Since(start)) }()

	if err = s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid award payload")
	}
	if dup := firstDuplicate(req.RecipientIDs); dup != "" {
		return nil, nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "recipient listed more than once: "+dup), "recipient_ids")
	}

	award = &models.Award{
		AwardName: strings.TrimSpace(req.AwardName),
		Level:     req.Level,
		AwardUnit: strings.TrimSpace(req.AwardUnit),
		AwardDate: req.AwardDate,
		AwardType: strings.TrimSpace(req.AwardType),
	}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.requireTeachers(ctx, tx, "recipient must reference an existing teacher", req.RecipientIDs...); err != nil {
			return err
		}
		if err := s.repos.Awards.CreateTx(ctx, tx, award); err != nil {
			return err
		}
		recipients = make([]models.AwardRecipient, 0, len(req.RecipientIDs))
		for i, teacherID := range req.RecipientIDs {
			recipients = append(recipients, models.AwardRecipient{AwardID: award.ID, TeacherID: teacherID, Rank: i + 1})
		}
		return s.repos.Awards.InsertRecipientsTx(ctx, tx, recipients)
	})
	if err != nil {
		return nil, nil, s.relationError(err, "recipient must reference an existing teacher", "failed to record award")
	}
	return award, recipients, nil
}

// RecordProject stores a research project with the leader at rank 1 and the remaining
// members ranked from 2 in the supplied order. Repeated ids, including the leader's, are ignored.
func (s *ArchiveService) RecordProject(ctx context.Context, req RecordProjectRequest) (project *models.ResearchProject, members []models.ProjectMember, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("record_project", err, time.Since(start)) }()

	if err = s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid project payload")
	}

	project = &models.ResearchProject{
		ProjectName:    strings.TrimSpace(req.ProjectName),
		Level:          req.Level,
		CompletionDate: req.CompletionDate,
	}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		members = buildMembers(req.LeaderID, req.MemberIDs)
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.TeacherID)
		}
		if err := s.requireTeachers(ctx, tx, "member must reference an existing teacher", ids...); err != nil {
			return err
		}
		if err := s.repos.Projects.CreateTx(ctx, tx, project); err != nil {
			return err
		}
		for i := range members {
			members[i].ProjectID = project.ID
		}
		return s.repos.Projects.InsertMembersTx(ctx, tx, members)
	})
	if err != nil {
		return nil, nil, s.relationError(err, "member must reference an existing teacher", "failed to record project")
	}
	return project, members, nil
}

// RecordMentoring pairs two distinct teachers. A self-pairing is rejected before any write.
func (s *ArchiveService) RecordMentoring(ctx context.Context, req RecordMentoringRequest) (mentoring *models.Mentoring, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("record_mentoring", err, time.Since(start)) }()

	if strings.TrimSpace(req.MentorID) != "" && req.MentorID == req.ApprenticeID {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "mentor and apprentice must be different teachers"), "apprentice_id")
	}
	if err = s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid mentoring payload")
	}
	if err = checkPeriod(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	mentoring = &models.Mentoring{
		MentorID:     req.MentorID,
		ApprenticeID: req.ApprenticeID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Achievements: strings.TrimSpace(req.Achievements),
	}
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.requireTeachers(ctx, tx, "mentoring must reference existing teachers", req.MentorID, req.ApprenticeID); err != nil {
			return err
		}
		return s.repos.Mentoring.CreateTx(ctx, tx, mentoring)
	})
	if err != nil {
		return nil, s.relationError(err, "mentoring must reference existing teachers", "failed to record mentoring")
	}
	return mentoring, nil
}

// UpdateMentoringOutcome changes the period and achievements of an existing pairing.
func (s *ArchiveService) UpdateMentoringOutcome(ctx context.Context, id string, req MentoringOutcomeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid mentoring payload")
	}
	if err := checkPeriod(req.StartDate, req.EndDate); err != nil {
		return err
	}
	m := &models.Mentoring{ID: id, StartDate: req.StartDate, EndDate: req.EndDate, Achievements: strings.TrimSpace(req.Achievements)}
	if err := s.repos.Mentoring.UpdateOutcome(ctx, m); err != nil {
		return storeError(err, "mentoring not found", "failed to update mentoring")
	}
	return nil
}

// DeleteMentoring removes one pairing.
func (s *ArchiveService) DeleteMentoring(ctx context.Context, id string) error {
	if err := s.repos.Mentoring.Delete(ctx, id); err != nil {
		return storeError(err, "mentoring not found", "failed to delete mentoring")
	}
	return nil
}

// DeleteAward removes a shared award together with all of its recipient links.
func (s *ArchiveService) DeleteAward(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("delete_award", err, time.Since(start)) }()

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repos.Awards.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "award not found")
		}
		return s.relationError(err, "", "failed to delete award")
	}
	return nil
}

// DeleteProject removes a research project together with all of its member links.
func (s *ArchiveService) DeleteProject(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("delete_project", err, time.Since(start)) }()

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repos.Projects.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return s.relationError(err, "", "failed to delete project")
	}
	return nil
}

func (s *ArchiveService) requireTeachers(ctx context.Context, tx *sqlx.Tx, message string, ids ...string) error {
	ok, err := s.repos.Teachers.Exists(ctx, tx, ids...)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForeignKey, message)
	}
	return nil
}

// relationError keeps typed failures and reports everything else as a rolled back transaction.
func (s *ArchiveService) relationError(err error, fkMessage, failure string) error {
	if fkMessage != "" && appErrors.HasCode(err, appErrors.ErrForeignKey.Code) {
		return appErrors.Rewrap(appErrors.ErrForeignKey, err, fkMessage)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Rewrap(appErrors.ErrTransaction, err, failure)
}

// buildMembers ranks the leader first and the remaining distinct members after it.
func buildMembers(leaderID string, memberIDs []string) []models.ProjectMember {
	members := []models.ProjectMember{{TeacherID: leaderID, IsLeader: true, MemberRank: 1}}
	seen := map[string]struct{}{leaderID: {}}
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, models.ProjectMember{TeacherID: id, MemberRank: len(members) + 1})
	}
	return members
}

func firstDuplicate(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return ""
}

// checkPeriod rejects an end date before the start date. Both are YYYY-MM-DD, so they compare lexically.
func checkPeriod(startDate, endDate string) error {
	if startDate != "" && endDate != "" && endDate < startDate {
		return appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "end date precedes start date"), "end_date")
	}
	return nil
}
