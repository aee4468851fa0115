package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// TeachersTable is the aggregate root table.
const TeachersTable = "teachers"

// EnsureSchema creates every archive table and index that does not exist yet.
// Existing tables and their rows are left untouched.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ensure schema: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range splitStatements(schemaSQL) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %q: %w", firstLine(stmt), err)
		}
	}

	if err = verifyTables(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit ensure schema: %w", err)
	}
	return nil
}

// verifyTables guards against a half-provisioned database.
func verifyTables(ctx context.Context, tx *sqlx.Tx) error {
	var present []string
	if err := tx.SelectContext(ctx, &present, `SELECT name FROM sqlite_master WHERE type = 'table'`); err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	have := make(map[string]struct{}, len(present))
	for _, name := range present {
		have[name] = struct{}{}
	}
	var missing []string
	for _, name := range TableNames() {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	stmts := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			stmts = append(stmts, trimmed)
		}
	}
	return stmts
}

func firstLine(stmt string) string {
	if idx := strings.IndexByte(stmt, '\n'); idx >= 0 {
		return stmt[:idx]
	}
	return stmt
}
