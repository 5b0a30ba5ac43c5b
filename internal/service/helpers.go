package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/recurrence"
	"github.com/alexanderramin/tasklane/internal/reload"
	"github.com/alexanderramin/tasklane/internal/repository"
)

// Reloader is notified after every committed write.
type Reloader interface {
	Request() *reload.Pending
}

// Options carries the collaborators shared by all services. Zero fields get
// defaults: the wall clock, the local time zone and a discarding logger.
type Options struct {
	Now      func() time.Time
	Location *time.Location
	Reloader Reloader
	Blocks   BlockResolver
	Logger   *slog.Logger
}

// core is embedded by every service. Reads outside a write go through
// store; writes read and replace the whole map inside one transaction.
type core struct {
	store    repository.TaskStore
	uow      db.UnitOfWork
	reloader Reloader
	blocks   BlockResolver
	engine   *recurrence.Engine
	now      func() time.Time
	loc      *time.Location
	observer UseCaseObserver
}

func newCore(store repository.TaskStore, uow db.UnitOfWork, opts Options, observers []UseCaseObserver) core {
	c := core{
		store:    store,
		uow:      uow,
		reloader: opts.Reloader,
		blocks:   opts.Blocks,
		engine:   recurrence.NewEngine(opts.Logger),
		now:      opts.Now,
		loc:      opts.Location,
		observer: combineObservers(observers),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	return c
}

func (c *core) clock() time.Time {
	return c.now().In(c.loc)
}

func (c *core) today() domain.DateKey {
	return domain.NewDateKey(c.clock())
}

func (c *core) todayOr(override *domain.DateKey) domain.DateKey {
	if override != nil && override.Valid() {
		return *override
	}
	return c.today()
}

// mutate runs fn against a fresh copy of the stored map and writes the map
// back when fn reports a change. Nothing is written when fn fails or changes
// nothing, and a reload is requested only after a commit.
func (c *core) mutate(ctx context.Context, fn func(tasks domain.TaskMap) (bool, error)) error {
	wrote := false
	err := c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		store := repository.NewSQLiteTaskStore(tx)
		tasks, err := store.ReadTasks(ctx)
		if err != nil {
			return err
		}
		changed, err := fn(tasks)
		if err != nil || !changed {
			return err
		}
		wrote = true
		return store.WriteTasks(ctx, tasks)
	})
	if err != nil {
		return err
	}
	if wrote && c.reloader != nil {
		c.reloader.Request()
	}
	return nil
}

func (c *core) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err error) {
	c.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Err:       err,
		Fields:    fields,
	})
}

// lookup returns the stored task with id or, for an occurrence id, the
// merged occurrence view built from its rule.
func lookup(id string, tasks domain.TaskMap) (*domain.Task, error) {
	if t, ok := tasks[id]; ok && t != nil {
		return t, nil
	}
	rule, key, err := recurrence.ResolveInstance(id, tasks)
	if err != nil {
		return nil, &domain.NotFoundError{Kind: "task", ID: id}
	}
	inst := recurrence.Build(rule, key)
	return &inst.Task, nil
}

// maxSort returns the largest sort key among tasks of a project.
func maxSort(tasks domain.TaskMap, projectID string) int {
	best := 0
	for _, t := range tasks.ByProject(projectID) {
		if t.Sort > best {
			best = t.Sort
		}
	}
	return best
}
