package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-archive/internal/models"
	"github.com/noah-isme/teacher-archive/pkg/database"
	"github.com/noah-isme/teacher-archive/pkg/storage"
)

const teacherColumns = `id, name, gender, birth_date, ethnicity, hometown, id_number, photo_ref, party_join_date,
work_start_date, health_status, teaching_subject, current_position, created_at, updated_at`

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching filters along with total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, "(LOWER(name) LIKE ? OR LOWER(id_number) LIKE ?)")
		args = append(args, search, search)
	}
	if filter.Subject != "" {
		conditions = append(conditions, "teaching_subject = ?")
		args = append(args, filter.Subject)
	}
	if filter.Gender != "" {
		conditions = append(conditions, "gender = ?")
		args = append(args, filter.Gender)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	allowedSorts := map[string]string{
		"name":       "name",
		"id_number":  "id_number",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d", teacherColumns, base, column, order, size, offset)
	teachers := make([]models.Teacher, 0)
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = ?", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByIDNumber fetches a teacher by national id number.
func (r *TeacherRepository) FindByIDNumber(ctx context.Context, idNumber string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id_number = ?", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, idNumber); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByIDNumber checks if another teacher uses the same id number.
func (r *TeacherRepository) ExistsByIDNumber(ctx context.Context, idNumber string, excludeID string) (bool, error) {
	if strings.TrimSpace(idNumber) == "" {
		return false, nil
	}
	query := "SELECT 1 FROM teachers WHERE id_number = ?"
	args := []interface{}{idNumber}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check teacher id number: %w", err)
	}
	return true, nil
}

// Exists reports whether every id names a stored teacher.
func (r *TeacherRepository) Exists(ctx context.Context, exec sqlx.QueryerContext, ids ...string) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	query, args, err := sqlx.In("SELECT COUNT(*) FROM teachers WHERE id IN (?)", ids)
	if err != nil {
		return false, fmt.Errorf("build teacher exists: %w", err)
	}
	if exec == nil {
		exec = r.db
	}
	var found int
	if err := sqlx.GetContext(ctx, exec, &found, query, args...); err != nil {
		return false, fmt.Errorf("check teachers exist: %w", err)
	}
	return found == len(unique), nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = uuid.NewString()
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, name, gender, birth_date, ethnicity, hometown, id_number, photo_ref, party_join_date,
work_start_date, health_status, teaching_subject, current_position, created_at, updated_at)
VALUES (:id, :name, :gender, :birth_date, :ethnicity, :hometown, :id_number, :photo_ref, :party_join_date,
:work_start_date, :health_status, :teaching_subject, :current_position, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", database.Translate(err))
	}
	return nil
}

// Update modifies the profile columns of an existing teacher. The photo is changed through UpdatePhoto.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET name = :name, gender = :gender, birth_date = :birth_date, ethnicity = :ethnicity,
hometown = :hometown, id_number = :id_number, party_join_date = :party_join_date, work_start_date = :work_start_date,
health_status = :health_status, teaching_subject = :teaching_subject, current_position = :current_position,
updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", database.Translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update teacher rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePhoto points the teacher at a new photo reference, or clears it when ref is nil.
func (r *TeacherRepository) UpdatePhoto(ctx context.Context, id string, ref *storage.ArtifactRef) error {
	const query = `UPDATE teachers SET photo_ref = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, ref, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update teacher photo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update teacher photo rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
