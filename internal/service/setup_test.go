package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/reload"
	"github.com/alexanderramin/tasklane/internal/repository"
	"github.com/alexanderramin/tasklane/internal/testutil"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	mu    sync.Mutex
	count int
}

func (r *countingReloader) Request() *reload.Pending {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	return nil
}

func (r *countingReloader) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.Name
	}
	return out
}

type fixture struct {
	db       *sql.DB
	store    *repository.SQLiteTaskStore
	reloader *countingReloader
	observer *recordingObserver
	opts     Options
	tasks    TaskService
	repeats  RepeatService
	board    BoardService
	drops    DropService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		db:       database,
		store:    repository.NewSQLiteTaskStore(database),
		reloader: &countingReloader{},
		observer: &recordingObserver{},
	}
	f.opts = Options{
		Now:      func() time.Time { return testutil.FixedNow },
		Location: time.UTC,
		Reloader: f.reloader,
	}
	uow := testutil.NewTestUoW(database)
	f.tasks = NewTaskService(f.store, uow, f.opts, f.observer)
	f.repeats = NewRepeatService(f.store, uow, f.opts, f.observer)
	f.board = NewBoardService(f.store, uow, f.opts, f.observer)
	f.drops = NewDropService(f.store, uow, f.opts, f.observer)
	return f
}

func (f *fixture) seed(t *testing.T, tasks ...*domain.Task) {
	t.Helper()
	require.NoError(t, f.store.WriteTasks(context.Background(), testutil.TaskMapOf(tasks...)))
}

func (f *fixture) snapshot(t *testing.T) domain.TaskMap {
	t.Helper()
	tasks, err := f.store.ReadTasks(context.Background())
	require.NoError(t, err)
	return tasks
}

func (f *fixture) revision(t *testing.T) int64 {
	t.Helper()
	rev, err := f.store.Revision(context.Background())
	require.NoError(t, err)
	return rev
}
