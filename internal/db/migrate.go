package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// RevisionKey is the store_meta row bumped on every whole-map write.
const RevisionKey = "revision"

// Migrate runs all schema migrations. Statements are re-run on every open,
// so each one must be idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Columns added by ALTER TABLE already exist on fresh databases.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillColumns(db); err != nil {
		return fmt.Errorf("backfilling task columns: %w", err)
	}
	return nil
}

// migrateBackfillColumns fills the denormalized columns from the stored
// record for rows written before the columns existed.
func migrateBackfillColumns(db *sql.DB) error {
	_, err := db.Exec(`UPDATE tasks SET
			completed = COALESCE(json_extract(data, '$.completed'), 0),
			task_date = COALESCE(json_extract(data, '$.date'), '')
		WHERE backfilled = 0`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE tasks SET backfilled = 1 WHERE backfilled = 0`)
	return err
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id         TEXT PRIMARY KEY,
		parent_id  TEXT NOT NULL DEFAULT '',
		project_id TEXT NOT NULL DEFAULT '',
		data       TEXT NOT NULL CHECK(json_valid(data)),
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,

	`CREATE TABLE IF NOT EXISTS store_meta (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	)`,
	`INSERT OR IGNORE INTO store_meta (key, value) VALUES ('revision', 0)`,

	// Columns for listing without decoding every record.
	`ALTER TABLE tasks ADD COLUMN completed INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE tasks ADD COLUMN task_date TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE tasks ADD COLUMN backfilled INTEGER NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(task_date)`,
}
