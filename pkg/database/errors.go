package database

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

// Translate maps SQLite constraint failures onto the archive error taxonomy.
// Errors that are not constraint violations are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return appErrors.WithField(appErrors.Rewrap(appErrors.ErrUniqueConstraint, err, ""), constraintColumn(sqliteErr.Error()))
	case sqlite3.ErrConstraintForeignKey:
		return appErrors.Rewrap(appErrors.ErrForeignKey, err, "")
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return appErrors.Rewrap(appErrors.ErrValidation, err, "")
	}
	return err
}

// constraintColumn extracts "id_number" from "UNIQUE constraint failed: teachers.id_number".
func constraintColumn(msg string) string {
	idx := strings.LastIndex(msg, ":")
	if idx < 0 {
		return ""
	}
	cols := strings.Split(strings.TrimSpace(msg[idx+1:]), ",")
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		col = strings.TrimSpace(col)
		if dot := strings.LastIndex(col, "."); dot >= 0 {
			col = col[dot+1:]
		}
		if col != "" {
			names = append(names, col)
		}
	}
	return strings.Join(names, ",")
}
