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

const awardColumns = `id, award_name, award_level, award_unit, award_date, award_type, created_at, updated_at`

// AwardRepository persists shared awards and their recipient links.
type AwardRepository struct {
	db *sqlx.DB
}

// NewAwardRepository constructs an AwardRepository.
func NewAwardRepository(db *sqlx.DB) *AwardRepository {
	return &AwardRepository{db: db}
}

// CreateTx inserts the award row inside tx.
func (r *AwardRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, award *models.Award) error {
	award.ID = uuid.NewString()
	now := time.Now().UTC()
	award.CreatedAt = now
	award.UpdatedAt = now

	const query = `INSERT INTO awards (id, award_name, award_level, award_unit, award_date, award_type, created_at, updated_at)
VALUES (:id, :award_name, :award_level, :award_unit, :award_date, :award_type, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, award); err != nil {
		return fmt.Errorf("create award: %w", database.Translate(err))
	}
	return nil
}

// InsertRecipientsTx links recipients to their award inside tx. Ranks must already be assigned.
func (r *AwardRepository) InsertRecipientsTx(ctx context.Context, tx *sqlx.Tx, recipients []models.AwardRecipient) error {
	if len(recipients) == 0 {
		return nil
	}
	now := time.Now().UTC()
	const query = `INSERT INTO award_recipients (id, award_id, teacher_id, rank, created_at, updated_at)
VALUES (:id, :award_id, :teacher_id, :rank, :created_at, :updated_at)`
	for i := range recipients {
		rec := &recipients[i]
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
			return fmt.Errorf("create award recipient: %w", database.Translate(err))
		}
	}
	return nil
}

// FindByID fetches an award by ID.
func (r *AwardRepository) FindByID(ctx context.Context, id string) (*models.Award, error) {
	query := fmt.Sprintf("SELECT %s FROM awards WHERE id = ?", awardColumns)
	var award models.Award
	if err := r.db.GetContext(ctx, &award, query, id); err != nil {
		return nil, err
	}
	return &award, nil
}

// Update modifies the award metadata. Recipients are left untouched.
func (r *AwardRepository) Update(ctx context.Context, award *models.Award) error {
	award.UpdatedAt = time.Now().UTC()
	const query = `UPDATE awards SET award_name = :award_name, award_level = :award_level, award_unit = :award_unit,
award_date = :award_date, award_type = :award_type, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, award)
	if err != nil {
		return fmt.Errorf("update award: %w", database.Translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update award rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTx removes the award and all of its recipient links inside tx.
func (r *AwardRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM award_recipients WHERE award_id = ?`, id); err != nil {
		return fmt.Errorf("delete award recipients: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM awards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete award: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete award rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRecipients returns the recipients of an award in rank order.
func (r *AwardRepository) ListRecipients(ctx context.Context, awardID string) ([]models.AwardRecipientDetail, error) {
	const query = `SELECT ar.id, ar.award_id, ar.teacher_id, ar.rank, ar.created_at, ar.updated_at, t.name AS teacher_name
FROM award_recipients ar
JOIN teachers t ON t.id = ar.teacher_id
WHERE ar.award_id = ?
ORDER BY ar.rank ASC`
	items := make([]models.AwardRecipientDetail, 0)
	if err := r.db.SelectContext(ctx, &items, query, awardID); err != nil {
		return nil, fmt.Errorf("list award recipients: %w", err)
	}
	return items, nil
}

// ListByTeacher returns the awards a teacher shares, highest level first.
func (r *AwardRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAward, error) {
	query := fmt.Sprintf(`SELECT a.id, a.award_name, a.award_level, a.award_unit, a.award_date, a.award_type, a.created_at, a.updated_at, ar.rank
FROM award_recipients ar
JOIN awards a ON a.id = ar.award_id
WHERE ar.teacher_id = ?
ORDER BY %s ASC, a.award_date DESC, a.award_name ASC`, levelRankSQL("a.award_level"))
	items := make([]models.TeacherAward, 0)
	if err := r.db.SelectContext(ctx, &items, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher awards: %w", err)
	}
	return items, nil
}
