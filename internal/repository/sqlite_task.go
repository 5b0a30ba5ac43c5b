package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/domain"
)

// SQLiteTaskStore implements TaskStore over the tasks table. Each record is
// stored as its JSON encoding with a few columns copied out for queries.
type SQLiteTaskStore struct {
	db db.DBTX
}

// NewSQLiteTaskStore creates a store on a database or an open transaction.
func NewSQLiteTaskStore(conn db.DBTX) *SQLiteTaskStore {
	return &SQLiteTaskStore{db: conn}
}

var (
	_ TaskStore  = (*SQLiteTaskStore)(nil)
	_ TaskLookup = (*SQLiteTaskStore)(nil)
)

func (r *SQLiteTaskStore) ReadTasks(ctx context.Context) (domain.TaskMap, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make(domain.TaskMap)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t, err := decodeTask(id, data)
		if err != nil {
			return nil, err
		}
		tasks[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM tasks WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return decodeTask(id, data)
}

// WriteTasks replaces the stored map with tasks: records missing from tasks
// are deleted, changed records are rewritten and the revision is bumped.
// Run it inside a UnitOfWork so a failure leaves the stored map unchanged.
func (r *SQLiteTaskStore) WriteTasks(ctx context.Context, tasks domain.TaskMap) error {
	if err := checkWritable(tasks); err != nil {
		return err
	}

	stored, err := r.storedData(ctx)
	if err != nil {
		return err
	}

	for id := range stored {
		if _, keep := tasks[id]; keep {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting task %s: %w", id, err)
		}
	}

	now := nowUTC()
	upsert := `INSERT INTO tasks (id, parent_id, project_id, data, updated_at, completed, task_date, backfilled)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			parent_id = excluded.parent_id,
			project_id = excluded.project_id,
			data = excluded.data,
			updated_at = excluded.updated_at,
			completed = excluded.completed,
			task_date = excluded.task_date,
			backfilled = 1`
	for _, id := range tasks.IDs() {
		t := tasks[id]
		data, err := codec.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding task %s: %w", id, err)
		}
		if prev, ok := stored[id]; ok && prev == string(data) {
			continue
		}
		_, err = r.db.ExecContext(ctx, upsert,
			t.ID,
			t.ParentID,
			t.ProjectID,
			string(data),
			now,
			boolToInt(t.Completed),
			string(t.Date),
		)
		if err != nil {
			return fmt.Errorf("writing task %s: %w", id, err)
		}
	}

	if _, err := r.bumpRevision(ctx); err != nil {
		return err
	}
	return nil
}

// Revision returns a counter bumped on every write.
func (r *SQLiteTaskStore) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, db.RevisionKey).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("reading revision: %w", err)
	}
	return rev, nil
}

func (r *SQLiteTaskStore) Stats(ctx context.Context, today domain.DateKey) (StoreStats, error) {
	var s StoreStats
	query := `SELECT COUNT(*),
			COALESCE(SUM(completed), 0),
			COALESCE(SUM(CASE WHEN completed = 0 AND task_date != '' AND task_date < ? THEN 1 ELSE 0 END), 0)
		FROM tasks`
	if err := r.db.QueryRowContext(ctx, query, string(today)).Scan(&s.Total, &s.Completed, &s.Overdue); err != nil {
		return StoreStats{}, fmt.Errorf("counting tasks: %w", err)
	}
	rev, err := r.Revision(ctx)
	if err != nil {
		return StoreStats{}, err
	}
	s.Revision = rev
	return s, nil
}

// ExportJSON returns the stored map as indented JSON keyed by task id.
func (r *SQLiteTaskStore) ExportJSON(ctx context.Context) ([]byte, error) {
	tasks, err := r.ReadTasks(ctx)
	if err != nil {
		return nil, err
	}
	out, err := codec.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding task map: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskStore) storedData(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("listing stored tasks: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning stored task: %w", err)
		}
		out[id] = data
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stored tasks: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskStore) bumpRevision(ctx context.Context) (int64, error) {
	var rev int64
	query := `UPDATE store_meta SET value = value + 1 WHERE key = ? RETURNING value`
	if err := r.db.QueryRowContext(ctx, query, db.RevisionKey).Scan(&rev); err != nil {
		return 0, fmt.Errorf("bumping revision: %w", err)
	}
	return rev, nil
}

func decodeTask(id, data string) (*domain.Task, error) {
	var t domain.Task
	if err := codec.UnmarshalFromString(data, &t); err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", id, err)
	}
	if t.ID == "" {
		t.ID = id
	}
	return &t, nil
}

// checkWritable rejects maps that would corrupt the store: nil records, keys
// that differ from the record id, and materialized instances of a recurring
// task.
func checkWritable(tasks domain.TaskMap) error {
	for key, t := range tasks {
		if t == nil {
			return &domain.ValidationError{Field: "task " + key, Reason: "is nil"}
		}
		if t.ID != key {
			return &domain.ValidationError{Field: "task " + key, Reason: fmt.Sprintf("is stored under a different id %q", t.ID)}
		}
		if orig, _, ok := domain.SplitInstanceID(key); ok {
			if parent, exists := tasks[orig]; exists && parent.IsRecurring() {
				return &domain.ValidationError{Field: "task " + key, Reason: "is a repeat instance and cannot be stored"}
			}
		}
	}
	return nil
}
