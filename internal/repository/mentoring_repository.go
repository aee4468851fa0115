package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-archive/internal/models"
	"github.com/noah-isme/teacher-archive/pkg/database"
)

const mentoringDetailSelect = `SELECT m.id, m.teacher_id, m.apprentice_id, m.start_date, m.end_date, m.achievements, m.created_at, m.updated_at,
mt.name AS mentor_name, ap.name AS apprentice_name
FROM mentoring m
JOIN teachers mt ON mt.id = m.teacher_id
JOIN teachers ap ON ap.id = m.apprentice_id`

// MentoringRepository persists mentor and apprentice pairings.
type MentoringRepository struct {
	db *sqlx.DB
}

// NewMentoringRepository constructs a MentoringRepository.
func NewMentoringRepository(db *sqlx.DB) *MentoringRepository {
	return &MentoringRepository{db: db}
}

// CreateTx inserts a pairing inside tx.
func (r *MentoringRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, m *models.Mentoring) error {
	m.ID = uuid.NewString()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	const query = `INSERT INTO mentoring (id, teacher_id, apprentice_id, start_date, end_date, achievements, created_at, updated_at)
VALUES (:id, :teacher_id, :apprentice_id, :start_date, :end_date, :achievements, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("create mentoring: %w", database.Translate(err))
	}
	return nil
}

// FindByID fetches a pairing with both names.
func (r *MentoringRepository) FindByID(ctx context.Context, id string) (*models.MentoringDetail, error) {
	var item models.MentoringDetail
	if err := r.db.GetContext(ctx, &item, mentoringDetailSelect+" WHERE m.id = ?", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByTeacher returns pairings in which the teacher is mentor or apprentice.
func (r *MentoringRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.MentoringDetail, error) {
	query := mentoringDetailSelect + " WHERE m.teacher_id = ? OR m.apprentice_id = ? ORDER BY m.start_date DESC, m.created_at DESC"
	items := make([]models.MentoringDetail, 0)
	if err := r.db.SelectContext(ctx, &items, query, teacherID, teacherID); err != nil {
		return nil, fmt.Errorf("list mentoring: %w", err)
	}
	return items, nil
}

// UpdateOutcome changes the period and achievements of a pairing. Participants are fixed.
func (r *MentoringRepository) UpdateOutcome(ctx context.Context, m *models.Mentoring) error {
	m.UpdatedAt = time.Now().UTC()
	const query = `UPDATE mentoring SET start_date = :start_date, end_date = :end_date, achievements = :achievements,
updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("update mentoring: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update mentoring rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a pairing.
func (r *MentoringRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mentoring WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete mentoring: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mentoring rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
