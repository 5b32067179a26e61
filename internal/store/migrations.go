package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the task archive.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id             TEXT PRIMARY KEY,
		submitter      TEXT NOT NULL DEFAULT '',
		name           TEXT NOT NULL DEFAULT '',
		priority       TEXT NOT NULL DEFAULT 'MEDIUM',
		async          INTEGER NOT NULL DEFAULT 0,
		timeout        TEXT NOT NULL DEFAULT '',
		parameters     TEXT NOT NULL DEFAULT '{}',
		status         TEXT NOT NULL,
		result_status  TEXT NOT NULL DEFAULT 'PENDING',
		result_message TEXT NOT NULL DEFAULT '',
		result_data    TEXT NOT NULL DEFAULT '',
		error_message  TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		started_at     TEXT,
		ended_at       TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_submitter ON tasks(submitter)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
