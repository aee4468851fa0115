package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-archive/internal/models"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

// ReportRepository exposes read-only joined projections over the archive.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// TeacherRollups aggregates per-teacher counts. An empty teacherID returns every teacher, ordered by name.
func (r *ReportRepository) TeacherRollups(ctx context.Context, teacherID string) ([]models.TeacherRollup, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT t.id AS teacher_id, t.name,
        (SELECT COUNT(*) FROM award_recipients ar WHERE ar.teacher_id = t.id) AS award_count,
        (SELECT COUNT(*) FROM teaching_records tr WHERE tr.teacher_id = t.id) AS class_count,
        (SELECT COUNT(*) FROM papers p WHERE p.teacher_id = t.id) AS paper_count,
        (SELECT COUNT(*) FROM project_members pm WHERE pm.teacher_id = t.id) AS project_count,
        (SELECT COUNT(*) FROM mentoring m WHERE m.teacher_id = t.id) AS apprentice_count
        FROM teachers t`)
	var args []interface{}
	if teacherID != "" {
		args = append(args, teacherID)
		builder.WriteString(" WHERE t.id = ?")
	}
	builder.WriteString(" ORDER BY t.name ASC, t.id ASC")

	items := make([]models.TeacherRollup, 0)
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query teacher rollups: %w", err)
	}
	return items, nil
}

// AwardWinners lists award recipients ordered by level rank, then award date descending, then recipient rank.
func (r *ReportRepository) AwardWinners(ctx context.Context, filter models.AwardWinnerFilter) ([]models.AwardWinner, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT a.id AS award_id, a.award_name, a.award_level, a.award_type, a.award_date,
        t.id AS teacher_id, t.name AS teacher_name, ar.rank
        FROM awards a
        JOIN award_recipients ar ON ar.award_id = a.id
        JOIN teachers t ON t.id = ar.teacher_id
        WHERE 1=1`)
	var args []interface{}
	if filter.AwardType != "" {
		args = append(args, filter.AwardType)
		builder.WriteString(" AND a.award_type = ?")
	}
	if filter.Level != "" {
		args = append(args, filter.Level)
		builder.WriteString(" AND a.award_level = ?")
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		builder.WriteString(" AND a.award_date >= ?")
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		builder.WriteString(" AND a.award_date <= ?")
	}
	fmt.Fprintf(&builder, " ORDER BY %s ASC, a.award_date DESC, a.award_name ASC, ar.rank ASC", levelRankSQL("a.award_level"))

	items := make([]models.AwardWinner, 0)
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query award winners: %w", err)
	}
	return items, nil
}

// CompetitionCoaches lists coached student competitions ordered by level rank and date.
func (r *ReportRepository) CompetitionCoaches(ctx context.Context, level models.Level) ([]models.CompetitionCoach, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT sc.id AS competition_id, sc.competition_name, sc.award_level, sc.competition_date, sc.winner_count,
        t.id AS teacher_id, t.name AS teacher_name
        FROM student_competitions sc
        JOIN teachers t ON t.id = sc.teacher_id`)
	var args []interface{}
	if level != "" {
		args = append(args, level)
		builder.WriteString(" WHERE sc.award_level = ?")
	}
	fmt.Fprintf(&builder, " ORDER BY %s ASC, sc.competition_date DESC, t.name ASC", levelRankSQL("sc.award_level"))

	items := make([]models.CompetitionCoach, 0)
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query competition coaches: %w", err)
	}
	return items, nil
}

var distributionQueries = map[models.Distribution]string{
	models.DistributionTitle: `SELECT title AS label, COUNT(DISTINCT teacher_id) AS count FROM title_records
        GROUP BY title ORDER BY count DESC, label ASC`,
	models.DistributionDegree: `SELECT degree AS label, COUNT(DISTINCT teacher_id) AS count FROM education_records
        GROUP BY degree ORDER BY count DESC, label ASC`,
	models.DistributionAwardLevel: fmt.Sprintf(`SELECT award_level AS label, COUNT(*) AS count FROM awards
        GROUP BY award_level ORDER BY %s ASC`, levelRankSQL("award_level")),
}

// Distribution counts teachers or awards per value of the requested dimension.
// Age bands are derived from birth dates by the caller; see BirthDates.
func (r *ReportRepository) Distribution(ctx context.Context, kind models.Distribution) ([]models.DistributionBucket, error) {
	query, ok := distributionQueries[kind]
	if !ok {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unsupported distribution"), string(kind))
	}
	items := make([]models.DistributionBucket, 0)
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("query %s distribution: %w", kind, err)
	}
	return items, nil
}

// BirthDates returns every recorded teacher birth date.
func (r *ReportRepository) BirthDates(ctx context.Context) ([]string, error) {
	dates := make([]string, 0)
	if err := r.db.SelectContext(ctx, &dates, `SELECT birth_date FROM teachers WHERE birth_date <> ''`); err != nil {
		return nil, fmt.Errorf("query birth dates: %w", err)
	}
	return dates, nil
}
