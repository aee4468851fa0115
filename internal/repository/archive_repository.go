package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-archive/pkg/storage"
)

// rootArtifacts names the artifact column carried by an aggregate root row itself.
var rootArtifacts = map[string]string{
	TeachersTable: "photo_ref",
}

// ArchiveRepository runs the transactional steps of removing a whole aggregate.
// Every method works on the caller's transaction.
type ArchiveRepository struct{}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository() *ArchiveRepository {
	return &ArchiveRepository{}
}

// Exists reports whether the root row is present.
func (r *ArchiveRepository) Exists(ctx context.Context, tx *sqlx.Tx, root, id string) (bool, error) {
	var found int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", root)
	if err := tx.GetContext(ctx, &found, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s exists: %w", root, err)
	}
	return true, nil
}

// ArtifactRefs returns every artifact referenced by the root row and its dependents.
// It must run before DeleteDependents so no reference is lost with its row.
func (r *ArchiveRepository) ArtifactRefs(ctx context.Context, tx *sqlx.Tx, root, id string) ([]storage.ArtifactRef, error) {
	var refs []storage.ArtifactRef
	if col, ok := rootArtifacts[root]; ok {
		found, err := r.selectRefs(ctx, tx, root, col, []string{"id"}, id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	for _, dep := range Dependents(root) {
		if dep.Artifact == "" {
			continue
		}
		found, err := r.selectRefs(ctx, tx, dep.Table, dep.Artifact, dep.Columns, id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	return refs, nil
}

func (r *ArchiveRepository) selectRefs(ctx context.Context, tx *sqlx.Tx, table, column string, keys []string, id string) ([]storage.ArtifactRef, error) {
	where, args := keyPredicate(keys, id)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE (%s) AND %s IS NOT NULL AND %s <> ''", column, table, where, column, column)
	var refs []storage.ArtifactRef
	if err := tx.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("collect %s artifacts: %w", table, err)
	}
	return refs, nil
}

// DeleteDependents removes every row that references the root, returning the count per table.
func (r *ArchiveRepository) DeleteDependents(ctx context.Context, tx *sqlx.Tx, root, id string) (map[string]int64, error) {
	deps := Dependents(root)
	counts := make(map[string]int64, len(deps))
	for _, dep := range deps {
		where, args := keyPredicate(dep.Columns, id)
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", dep.Table, where)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("delete %s: %w", dep.Table, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("check %s delete rows: %w", dep.Table, err)
		}
		counts[dep.Table] = affected
	}
	return counts, nil
}

// DeleteRoot removes the root row itself.
func (r *ArchiveRepository) DeleteRoot(ctx context.Context, tx *sqlx.Tx, root, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", root)
	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", root, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s delete rows: %w", root, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func keyPredicate(columns []string, id string) (string, []interface{}) {
	conditions := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		conditions = append(conditions, col+" = ?")
		args = append(args, id)
	}
	return strings.Join(conditions, " OR "), args
}
