package repository

import (
	"context"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// TaskStore persists the whole task map. Reads and writes are always of the
// full map; the last write wins.
type TaskStore interface {
	ReadTasks(ctx context.Context) (domain.TaskMap, error)
	WriteTasks(ctx context.Context, tasks domain.TaskMap) error
	Revision(ctx context.Context) (int64, error)
}

// TaskLookup serves single-record reads that do not need the whole map.
type TaskLookup interface {
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	Stats(ctx context.Context, today domain.DateKey) (StoreStats, error)
}

// StoreStats summarizes the stored records without decoding them.
type StoreStats struct {
	Total     int
	Completed int
	Overdue   int
	Revision  int64
}
