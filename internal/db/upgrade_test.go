package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_LegacyTasksTable upgrades a store created before
// the denormalized columns existed. Records must survive and the new
// columns must be filled from the stored JSON.
func TestMigrate_UpgradePath_LegacyTasksTable(t *testing.T) {
	db, err := sql.Open("sqlite", MemoryPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	legacy := []string{
		`CREATE TABLE tasks (
			id         TEXT PRIMARY KEY,
			parent_id  TEXT NOT NULL DEFAULT '',
			project_id TEXT NOT NULL DEFAULT '',
			data       TEXT NOT NULL CHECK(json_valid(data)),
			updated_at TEXT NOT NULL
		)`,
		`INSERT INTO tasks (id, data, updated_at) VALUES
			('done', '{"id":"done","title":"Filed","completed":true,"date":"2025-01-02"}', '2025-01-02T00:00:00Z'),
			('open', '{"id":"open","title":"Pending","completed":false}', '2025-01-02T00:00:00Z')`,
	}
	for _, stmt := range legacy {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(db))

	var completed int
	var date string
	require.NoError(t, db.QueryRow(`SELECT completed, task_date FROM tasks WHERE id = 'done'`).Scan(&completed, &date))
	assert.Equal(t, 1, completed)
	assert.Equal(t, "2025-01-02", date)

	require.NoError(t, db.QueryRow(`SELECT completed, task_date FROM tasks WHERE id = 'open'`).Scan(&completed, &date))
	assert.Equal(t, 0, completed)
	assert.Equal(t, "", date)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE backfilled = 0`).Scan(&count))
	assert.Zero(t, count)

	// Re-running on the upgraded store is a no-op.
	require.NoError(t, Migrate(db))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&count))
	assert.Equal(t, 2, count)
}
