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
	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

const projectColumns = `id, project_name, project_level, completion_date, created_at, updated_at`

// ProjectRepository persists research projects and their members.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs a ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// CreateTx inserts the project row inside tx.
func (r *ProjectRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, project *models.ResearchProject) error {
	project.ID = uuid.NewString()
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	const query = `INSERT INTO research_projects (id, project_name, project_level, completion_date, created_at, updated_at)
VALUES (:id, :project_name, :project_level, :completion_date, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create research project: %w", database.Translate(err))
	}
	return nil
}

// InsertMembersTx links members to their project inside tx. The batch must carry
// exactly one leader, ranked first.
func (r *ProjectRepository) InsertMembersTx(ctx context.Context, tx *sqlx.Tx, members []models.ProjectMember) error {
	leaders := 0
	for _, m := range members {
		if m.IsLeader {
			leaders++
			if m.MemberRank != 1 {
				return appErrors.Clone(appErrors.ErrValidation, "project leader must hold member rank 1")
			}
		}
	}
	if leaders != 1 {
		return appErrors.Clone(appErrors.ErrValidation, "project must have exactly one leader")
	}

	now := time.Now().UTC()
	const query = `INSERT INTO project_members (id, project_id, teacher_id, is_leader, member_rank, created_at, updated_at)
VALUES (:id, :project_id, :teacher_id, :is_leader, :member_rank, :created_at, :updated_at)`
	for i := range members {
		m := &members[i]
		m.ID = uuid.NewString()
		m.CreatedAt = now
		m.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
			return fmt.Errorf("create project member: %w", database.Translate(err))
		}
	}
	return nil
}

// FindByID fetches a project by ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.ResearchProject, error) {
	query := fmt.Sprintf("SELECT %s FROM research_projects WHERE id = ?", projectColumns)
	var project models.ResearchProject
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteTx removes the project and its member links inside tx.
func (r *ProjectRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete project members: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM research_projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete research project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete research project rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListMembers returns project members, leader first.
func (r *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]models.ProjectMemberDetail, error) {
	const query = `SELECT pm.id, pm.project_id, pm.teacher_id, pm.is_leader, pm.member_rank, pm.created_at, pm.updated_at, t.name AS teacher_name
FROM project_members pm
JOIN teachers t ON t.id = pm.teacher_id
WHERE pm.project_id = ?
ORDER BY pm.member_rank ASC`
	items := make([]models.ProjectMemberDetail, 0)
	if err := r.db.SelectContext(ctx, &items, query, projectID); err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	return items, nil
}

// ListByTeacher returns the projects a teacher belongs to, highest level first.
func (r *ProjectRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherProject, error) {
	query := fmt.Sprintf(`SELECT p.id, p.project_name, p.project_level, p.completion_date, p.created_at, p.updated_at, pm.is_leader, pm.member_rank
FROM project_members pm
JOIN research_projects p ON p.id = pm.project_id
WHERE pm.teacher_id = ?
ORDER BY %s ASC, p.completion_date DESC, p.project_name ASC`, levelRankSQL("p.project_level"))
	items := make([]models.TeacherProject, 0)
	if err := r.db.SelectContext(ctx, &items, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher projects: %w", err)
	}
	return items, nil
}

// List returns every project, highest level first.
func (r *ProjectRepository) List(ctx context.Context) ([]models.ResearchProject, error) {
	query := fmt.Sprintf(`SELECT %s FROM research_projects ORDER BY %s ASC, completion_date DESC, project_name ASC`, projectColumns, levelRankSQL("project_level"))
	items := make([]models.ResearchProject, 0)
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list research projects: %w", err)
	}
	return items, nil
}
