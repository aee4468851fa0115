package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/noah-isme/teacher-archive/pkg/config"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// NewSQLite opens the archive database file and returns the single shared handle.
func NewSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("prepare database directory: %w", err)
		}
	}

	db, err := sqlx.Open(DriverName, DSN(cfg))
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; every repository shares this one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	var fk int
	if err := db.Get(&fk, "PRAGMA foreign_keys"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read foreign_keys pragma: %w", err)
	}
	if fk != 1 {
		_ = db.Close()
		return nil, fmt.Errorf("foreign key enforcement is disabled")
	}

	return db, nil
}

// DSN builds the go-sqlite3 connection string with per-connection pragmas.
func DSN(cfg config.DatabaseConfig) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	if cfg.BusyTimeout > 0 {
		params.Set("_busy_timeout", fmt.Sprintf("%d", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.JournalMode != "" {
		params.Set("_journal_mode", cfg.JournalMode)
	}
	params.Set("_txlock", "immediate")
	return fmt.Sprintf("file:%s?%s", cfg.Path, params.Encode())
}

// TxBeginner is satisfied by *sqlx.DB.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// WithTx runs fn inside a transaction, rolling back on any error and committing otherwise.
func WithTx(ctx context.Context, db TxBeginner, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
