package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-archive/internal/models"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

type reportRepository interface {
	TeacherRollups(ctx context.Context, teacherID string) ([]models.TeacherRollup, error)
	AwardWinners(ctx context.Context, filter models.AwardWinnerFilter) ([]models.AwardWinner, error)
	CompetitionCoaches(ctx context.Context, level models.Level) ([]models.CompetitionCoach, error)
	Distribution(ctx context.Context, kind models.Distribution) ([]models.DistributionBucket, error)
	BirthDates(ctx context.Context) ([]string, error)
}

type awardReader interface {
	FindByID(ctx context.Context, id string) (*models.Award, error)
	ListRecipients(ctx context.Context, awardID string) ([]models.AwardRecipientDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAward, error)
}

type projectReader interface {
	FindByID(ctx context.Context, id string) (*models.ResearchProject, error)
	List(ctx context.Context) ([]models.ResearchProject, error)
	ListMembers(ctx context.Context, projectID string) ([]models.ProjectMemberDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherProject, error)
}

type mentoringReader interface {
	FindByID(ctx context.Context, id string) (*models.MentoringDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.MentoringDetail, error)
}

// AgeBands are the age ranges of the age distribution, by lower bound.
var AgeBands = []struct {
	Label string
	Min   int
}{
	{Label: "under 30", Min: 0},
	{Label: "30-39", Min: 30},
	{Label: "40-49", Min: 40},
	{Label: "50-59", Min: 50},
	{Label: "60 and over", Min: 60},
}

// ReportService serves read-only projections over the archive.
type ReportService struct {
	reports   reportRepository
	awards    awardReader
	projects  projectReader
	mentoring mentoringReader
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(reports reportRepository, awards awardReader, projects projectReader, mentoring mentoringReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, awards: awards, projects: projects, mentoring: mentoring, logger: logger, now: time.Now}
}

// Rollups returns per-teacher counts; an empty teacherID covers every teacher.
func (s *ReportService) Rollups(ctx context.Context, teacherID string) ([]models.TeacherRollup, error) {
	items, err := s.reports.TeacherRollups(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load teacher rollups")
	}
	if teacherID != "" && len(items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return items, nil
}

// AwardWinners lists recipients by level rank, then date descending.
func (s *ReportService) AwardWinners(ctx context.Context, filter models.AwardWinnerFilter) ([]models.AwardWinner, error) {
	if filter.Level != "" && !filter.Level.Valid() {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unknown level"), "award_level")
	}
	items, err := s.reports.AwardWinners(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load award winners")
	}
	return items, nil
}

// TeachingCompetitionWinners lists teaching competition awards by level rank, then date descending.
func (s *ReportService) TeachingCompetitionWinners(ctx context.Context) ([]models.AwardWinner, error) {
	return s.AwardWinners(ctx, models.AwardWinnerFilter{AwardType: models.AwardTypeTeachingCompetition})
}

// CompetitionCoaches lists the student competitions teachers coached.
func (s *ReportService) CompetitionCoaches(ctx context.Context, level models.Level) ([]models.CompetitionCoach, error) {
	if level != "" && !level.Valid() {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unknown level"), "award_level")
	}
	items, err := s.reports.CompetitionCoaches(ctx, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load competition coaches")
	}
	return items, nil
}

// Distribution counts the archive along one dimension.
func (s *ReportService) Distribution(ctx context.Context, kind models.Distribution) ([]models.DistributionBucket, error) {
	if kind == models.DistributionAgeBand {
		return s.ageDistribution(ctx)
	}
	items, err := s.reports.Distribution(ctx, kind)
	if err != nil {
		return nil, storeError(err, "distribution not found", "failed to load distribution")
	}
	return items, nil
}

func (s *ReportService) ageDistribution(ctx context.Context) ([]models.DistributionBucket, error) {
	dates, err := s.reports.BirthDates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load birth dates")
	}
	buckets := make([]models.DistributionBucket, len(AgeBands))
	for i, band := range AgeBands {
		buckets[i].Label = band.Label
	}
	now := s.now()
	for _, raw := range dates {
		age, ok := ageOn(raw, now)
		if !ok {
			s.logger.Debug("skipping unparseable birth date", zap.String("birth_date", raw))
			continue
		}
		for i := len(AgeBands) - 1; i >= 0; i-- {
			if age >= AgeBands[i].Min {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets, nil
}

// ageOn returns completed years between a YYYY-MM-DD birth date and now.
func ageOn(birthDate string, now time.Time) (int, bool) {
	born, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// AwardDetail is an award with its ranked recipients.
type AwardDetail struct {
	models.Award
	Recipients []models.AwardRecipientDetail `json:"recipients"`
}

// Award returns an award with recipients in rank order.
func (s *ReportService) Award(ctx context.Context, id string) (*AwardDetail, error) {
	award, err := s.awards.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "award not found", "failed to load award")
	}
	recipients, err := s.awards.ListRecipients(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load award recipients")
	}
	return &AwardDetail{Award: *award, Recipients: recipients}, nil
}

// ProjectDetail is a project with its ranked members.
type ProjectDetail struct {
	models.ResearchProject
	Members []models.ProjectMemberDetail `json:"members"`
}

// Project returns a project with its members, leader first.
func (s *ReportService) Project(ctx context.Context, id string) (*ProjectDetail, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "project not found", "failed to load project")
	}
	members, err := s.projects.ListMembers(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load project members")
	}
	return &ProjectDetail{ResearchProject: *project, Members: members}, nil
}

// Projects lists every research project by level rank.
func (s *ReportService) Projects(ctx context.Context) ([]models.ResearchProject, error) {
	items, err := s.projects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list projects")
	}
	return items, nil
}

// TeacherAwards lists a teacher's awards, highest level first.
func (s *ReportService) TeacherAwards(ctx context.Context, teacherID string) ([]models.TeacherAward, error) {
	items, err := s.awards.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list teacher awards")
	}
	return items, nil
}

// TeacherProjects lists a teacher's projects, highest level first.
func (s *ReportService) TeacherProjects(ctx context.Context, teacherID string) ([]models.TeacherProject, error) {
	items, err := s.projects.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list teacher projects")
	}
	return items, nil
}

// TeacherMentoring lists pairings where the teacher is mentor or apprentice.
func (s *ReportService) TeacherMentoring(ctx context.Context, teacherID string) ([]models.MentoringDetail, error) {
	items, err := s.mentoring.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list mentoring")
	}
	return items, nil
}

// Mentoring returns one pairing with both names.
func (s *ReportService) Mentoring(ctx context.Context, id string) (*models.MentoringDetail, error) {
	item, err := s.mentoring.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "mentoring not found", "failed to load mentoring")
	}
	return item, nil
}
