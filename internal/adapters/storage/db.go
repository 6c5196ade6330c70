package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by the sqlite stores.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// InitDB initializes the local database schema.
// The hosted data service owns the real planning_choices table; this schema
// mirrors it for the local development/demo store only.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS planning_choices (
		id TEXT PRIMARY KEY,
		day TEXT NOT NULL,
		column_number INTEGER NOT NULL DEFAULT 0,
		column_label TEXT NOT NULL DEFAULT '',
		slot_type_code TEXT NOT NULL DEFAULT '',
		planning_day_label TEXT NOT NULL DEFAULT '',
		activity_type TEXT NOT NULL DEFAULT '',
		guard_nature TEXT NOT NULL DEFAULT 'normale',
		trigram TEXT NOT NULL,
		user_type TEXT NOT NULL,
		choice_order INTEGER NOT NULL DEFAULT 0,
		etat TEXT NOT NULL DEFAULT 'en attente',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_planning_choices_owner
		ON planning_choices (trigram, user_type, choice_order);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
