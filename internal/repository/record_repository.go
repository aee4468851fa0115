package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-archive/internal/models"
	"github.com/noah-isme/teacher-archive/pkg/database"
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

// builder renders squirrel queries with SQLite placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// RecordRepository persists one kind of teacher-owned record described by a Table.
type RecordRepository[T any, P interface {
	*T
	models.Owned
}] struct {
	db    *sqlx.DB
	table Table
}

// NewRecordRepository constructs a repository over table.
func NewRecordRepository[T any, P interface {
	*T
	models.Owned
}](db *sqlx.DB, table Table) *RecordRepository[T, P] {
	return &RecordRepository[T, P]{db: db, table: table}
}

// Table returns the descriptor the repository was built with.
func (r *RecordRepository[T, P]) Table() Table {
	return r.table
}

func (r *RecordRepository[T, P]) columns() []string {
	cols := make([]string, 0, len(r.table.Columns)+4)
	cols = append(cols, "id", "teacher_id")
	cols = append(cols, r.table.Columns...)
	return append(cols, "created_at", "updated_at")
}

func (r *RecordRepository[T, P]) label() string {
	return strings.ReplaceAll(r.table.Name, "_", " ")
}

func (r *RecordRepository[T, P]) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts rec, assigning its id and timestamps.
func (r *RecordRepository[T, P]) Create(ctx context.Context, rec P) error {
	return r.CreateWith(ctx, nil, rec)
}

// CreateWith inserts rec through exec, falling back to the repository handle when exec is nil.
func (r *RecordRepository[T, P]) CreateWith(ctx context.Context, exec sqlx.ExtContext, rec P) error {
	meta := rec.Meta()
	meta.ID = uuid.NewString()
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	cols := r.columns()
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)", r.table.Name, strings.Join(cols, ", "), strings.Join(cols, ", :"))
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, rec); err != nil {
		return fmt.Errorf("create %s: %w", r.label(), database.Translate(err))
	}
	return nil
}

// Update overwrites the payload columns of rec. The owner is never reassigned.
func (r *RecordRepository[T, P]) Update(ctx context.Context, rec P) error {
	meta := rec.Meta()
	meta.UpdatedAt = time.Now().UTC()

	sets := make([]string, 0, len(r.table.Columns)+1)
	for _, col := range r.table.Columns {
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
	}
	sets = append(sets, "updated_at = :updated_at")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", r.table.Name, strings.Join(sets, ", "))

	res, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.label(), database.Translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows affected: %w", r.label(), err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a record by id.
func (r *RecordRepository[T, P]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table.Name)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.label(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows affected: %w", r.label(), err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID fetches a record by id.
func (r *RecordRepository[T, P]) FindByID(ctx context.Context, id string) (P, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(r.columns(), ", "), r.table.Name)
	var item T
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return P(&item), nil
}

// ListByTeacher returns every record owned by teacherID, most recent first.
func (r *RecordRepository[T, P]) ListByTeacher(ctx context.Context, teacherID string) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE teacher_id = ? ORDER BY %s", strings.Join(r.columns(), ", "), r.table.Name, r.orderBy())
	items := make([]T, 0)
	if err := r.db.SelectContext(ctx, &items, query, teacherID); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.label(), err)
	}
	return items, nil
}

// CountByTeacher counts the records owned by teacherID.
func (r *RecordRepository[T, P]) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE teacher_id = ?", r.table.Name)
	var total int
	if err := r.db.GetContext(ctx, &total, query, teacherID); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.label(), err)
	}
	return total, nil
}

// Search returns records matching every predicate in filter. Column names are
// checked against the table descriptor before they reach the query.
func (r *RecordRepository[T, P]) Search(ctx context.Context, filter models.RecordFilter) ([]T, error) {
	q := builder.Select(r.columns()...).From(r.table.Name)
	if filter.TeacherID != "" {
		q = q.Where(sq.Eq{"teacher_id": filter.TeacherID})
	}

	for _, col := range sortedKeys(filter.Equals) {
		if !r.allowed(col) {
			return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unknown search column"), col)
		}
		q = q.Where(sq.Eq{col: filter.Equals[col]})
	}
	for _, col := range sortedKeys(filter.Contains) {
		if !r.allowed(col) {
			return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unknown search column"), col)
		}
		q = q.Where(sq.Like{col: "%" + filter.Contains[col] + "%"})
	}

	if filter.DateFrom != "" || filter.DateTo != "" {
		if r.table.DateColumn == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s do not support date ranges", r.label()))
		}
		if filter.DateFrom != "" {
			q = q.Where(sq.GtOrEq{r.table.DateColumn: filter.DateFrom})
		}
		if filter.DateTo != "" {
			q = q.Where(sq.LtOrEq{r.table.DateColumn: filter.DateTo})
		}
	}

	q = q.OrderBy(r.orderBy())
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			q = q.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s search: %w", r.label(), err)
	}
	items := make([]T, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("search %s: %w", r.label(), err)
	}
	return items, nil
}

func (r *RecordRepository[T, P]) orderBy() string {
	if r.table.OrderBy == "" {
		return "created_at DESC"
	}
	return r.table.OrderBy + ", created_at DESC"
}

func (r *RecordRepository[T, P]) allowed(col string) bool {
	if col == "teacher_id" {
		return true
	}
	for _, c := range r.table.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Concrete repositories for each record table.
type (
	TitleRecordRepository            = RecordRepository[models.TitleRecord, *models.TitleRecord]
	EducationRecordRepository        = RecordRepository[models.EducationRecord, *models.EducationRecord]
	WorkExperienceRepository         = RecordRepository[models.WorkExperience, *models.WorkExperience]
	TeachingRecordRepository         = RecordRepository[models.TeachingRecord, *models.TeachingRecord]
	EducationWorkRepository          = RecordRepository[models.EducationWork, *models.EducationWork]
	PublicLessonRepository           = RecordRepository[models.PublicLesson, *models.PublicLesson]
	PaperRepository                  = RecordRepository[models.Paper, *models.Paper]
	StudentCompetitionRepository     = RecordRepository[models.StudentCompetition, *models.StudentCompetition]
	ProfessionalLeadershipRepository = RecordRepository[models.ProfessionalLeadership, *models.ProfessionalLeadership]
	ExamResultRepository             = RecordRepository[models.ExamResult, *models.ExamResult]
)

// NewTitleRecordRepository constructs the title record repository.
func NewTitleRecordRepository(db *sqlx.DB) *TitleRecordRepository {
	return NewRecordRepository[models.TitleRecord](db, TitleRecords)
}

// NewEducationRecordRepository constructs the education record repository.
func NewEducationRecordRepository(db *sqlx.DB) *EducationRecordRepository {
	return NewRecordRepository[models.EducationRecord](db, EducationRecords)
}

// NewWorkExperienceRepository constructs the work experience repository.
func NewWorkExperienceRepository(db *sqlx.DB) *WorkExperienceRepository {
	return NewRecordRepository[models.WorkExperience](db, WorkExperiences)
}

// NewTeachingRecordRepository constructs the teaching record repository.
func NewTeachingRecordRepository(db *sqlx.DB) *TeachingRecordRepository {
	return NewRecordRepository[models.TeachingRecord](db, TeachingRecords)
}

// NewEducationWorkRepository constructs the education work repository.
func NewEducationWorkRepository(db *sqlx.DB) *EducationWorkRepository {
	return NewRecordRepository[models.EducationWork](db, EducationWorks)
}

// NewPublicLessonRepository constructs the public lesson repository.
func NewPublicLessonRepository(db *sqlx.DB) *PublicLessonRepository {
	return NewRecordRepository[models.PublicLesson](db, PublicLessons)
}

// NewPaperRepository constructs the paper repository.
func NewPaperRepository(db *sqlx.DB) *PaperRepository {
	return NewRecordRepository[models.Paper](db, Papers)
}

// NewStudentCompetitionRepository constructs the student competition repository.
func NewStudentCompetitionRepository(db *sqlx.DB) *StudentCompetitionRepository {
	return NewRecordRepository[models.StudentCompetition](db, StudentCompetitions)
}

// NewProfessionalLeadershipRepository constructs the professional leadership repository.
func NewProfessionalLeadershipRepository(db *sqlx.DB) *ProfessionalLeadershipRepository {
	return NewRecordRepository[models.ProfessionalLeadership](db, ProfessionalLeaderships)
}

// NewExamResultRepository constructs the exam result repository.
func NewExamResultRepository(db *sqlx.DB) *ExamResultRepository {
	return NewRecordRepository[models.ExamResult](db, ExamResults)
}
