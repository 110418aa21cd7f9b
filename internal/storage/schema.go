package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// initSchema creates the answers table and its indexes.
// The partial unique index enforces the "at most one open row per user"
// invariant at the storage layer, not just in application code.
func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		step INTEGER NOT NULL CHECK(step BETWEEN 0 AND 2),
		answer TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_answers_user ON answers(user_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_answers_user_open ON answers(user_id) WHERE answer = '';
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create answers table: %w", err)
	}

	return nil
}
