package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
	"github.com/alexanderramin/tasklane/internal/ordering"
	"github.com/alexanderramin/tasklane/internal/paste"
	"github.com/alexanderramin/tasklane/internal/recurrence"
	"github.com/alexanderramin/tasklane/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	core
}

func NewTaskService(store repository.TaskStore, uow db.UnitOfWork, opts Options, observers ...UseCaseObserver) TaskService {
	return &taskService{core: newCore(store, uow, opts, observers)}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"title": t.Title}
	defer func() { s.observe(ctx, "task.create", startedAt, fields, err) }()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	fields["task_id"] = t.ID
	if t.Priority == "" {
		t.Priority = domain.PriorityNone
	}
	if t.CreatedTime.IsZero() {
		t.CreatedTime = s.clock().UTC()
	}
	if err = s.checkBlock(ctx, t.BlockID); err != nil {
		return err
	}

	today := s.today()
	return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		if _, exists := tasks[t.ID]; exists {
			return false, &domain.ValidationError{Field: "id", Reason: "is already taken"}
		}
		if t.ParentID != "" {
			parent, err := tasks.Get(t.ParentID)
			if err != nil {
				return false, err
			}
			if t.ProjectID == "" {
				t.ProjectID = parent.ProjectID
			}
			if t.CustomGroupID == "" {
				t.CustomGroupID = parent.CustomGroupID
			}
			graph.InheritStatus(t, parent, tasks, today)
		}
		if err := t.Validate(); err != nil {
			return false, err
		}
		t.Sort = nextSort(tasks, t)
		tasks[t.ID] = t
		return true, nil
	})
}

// nextSort places t after every existing member of its parent, or after
// every task of its project when it is top level.
func nextSort(tasks domain.TaskMap, t *domain.Task) int {
	if t.ParentID == "" {
		return maxSort(tasks, t.ProjectID) + ordering.Step
	}
	kids := tasks.Children(t.ParentID)
	best := 0
	for _, k := range kids {
		if k.ID != t.ID && k.Sort > best {
			best = k.Sort
		}
	}
	return best + ordering.Step
}

func (s *taskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	tasks, err := s.store.ReadTasks(ctx)
	if err != nil {
		return nil, err
	}
	return lookup(id, tasks)
}

func (s *taskService) List(ctx context.Context, filter app.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.store.ReadTasks(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Task
	for _, id := range tasks.IDs() {
		t := tasks[id]
		switch {
		case filter.ProjectID != "" && t.ProjectID != filter.ProjectID:
			continue
		case filter.ParentID != "" && t.ParentID != filter.ParentID:
			continue
		case filter.TopLevelOnly && !t.IsTopLevel():
			continue
		case !filter.IncludeCompleted && t.Completed:
			continue
		}
		out = append(out, t)
	}
	ordering.SortDefault(out)
	return out, nil
}

// Update applies patch to a stored task, or records it as an overlay when id
// names a single occurrence.
func (s *taskService) Update(ctx context.Context, id string, patch app.TaskPatch) (updated *domain.Task, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": id}
	defer func() { s.observe(ctx, "task.update", startedAt, fields, err) }()

	if patch.IsEmpty() {
		return nil, &domain.ValidationError{Field: "patch", Reason: "changes nothing"}
	}
	if patch.BlockID != nil {
		if err = s.checkBlock(ctx, *patch.BlockID); err != nil {
			return nil, err
		}
	}

	err = s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		if t, ok := tasks[id]; ok {
			next := t.Clone()
			patch.Apply(next)
			if err := next.Validate(); err != nil {
				return false, err
			}
			tasks[id] = next
			updated = next
			return true, nil
		}

		rule, key, err := recurrence.ResolveInstance(id, tasks)
		if err != nil {
			return false, &domain.NotFoundError{Kind: "task", ID: id}
		}
		mod, ok := patch.Modification()
		if !ok {
			return false, &domain.ValidationError{Field: "title", Reason: "cannot be changed for a single occurrence"}
		}
		fields["instance"] = true
		changed := recurrence.EditInstance(rule, key, mod)
		inst := recurrence.Build(rule, key)
		updated = &inst.Task
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete completes a task and its open subtree with one shared stamp, or
// checks off a single occurrence.
func (s *taskService) Complete(ctx context.Context, id string) (changed []string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": id}
	defer func() {
		fields["changed"] = len(changed)
		s.observe(ctx, "task.complete", startedAt, fields, err)
	}()

	at := s.clock().UTC()
	err = s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		if _, ok := tasks[id]; ok {
			ids, err := graph.CascadeComplete(id, tasks, at)
			if err != nil {
				return false, err
			}
			changed = ids
			return len(ids) > 0, nil
		}
		rule, key, err := recurrence.ResolveInstance(id, tasks)
		if err != nil {
			return false, &domain.NotFoundError{Kind: "task", ID: id}
		}
		if recurrence.CompleteInstance(rule, key) {
			changed = []string{rule.ID}
		}
		return len(changed) > 0, nil
	})
	return changed, err
}

// Reopen clears completion on one task. Subtasks keep their state.
func (s *taskService) Reopen(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "task.reopen", startedAt, map[string]any{"task_id": id}, err) }()

	return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		if t, ok := tasks[id]; ok {
			if !t.Completed {
				return false, nil
			}
			t.Reopen()
			return true, nil
		}
		rule, key, err := recurrence.ResolveInstance(id, tasks)
		if err != nil {
			return false, &domain.NotFoundError{Kind: "task", ID: id}
		}
		return recurrence.UncompleteInstance(rule, key), nil
	})
}

// Delete removes a task with its whole subtree in one write. An occurrence
// id excludes that date from the rule instead.
func (s *taskService) Delete(ctx context.Context, id string) (removed []string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": id}
	defer func() {
		fields["removed"] = len(removed)
		s.observe(ctx, "task.delete", startedAt, fields, err)
	}()

	err = s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		if _, ok := tasks[id]; ok {
			ids, err := graph.CascadeDelete(id, tasks)
			removed = ids
			return err == nil, err
		}
		rule, key, err := recurrence.ResolveInstance(id, tasks)
		if err != nil {
			return false, &domain.NotFoundError{Kind: "task", ID: id}
		}
		if !recurrence.DeleteInstance(rule, key) {
			return false, nil
		}
		removed = []string{id}
		return true, nil
	})
	return removed, err
}

func (s *taskService) SetParent(ctx context.Context, childID, parentID string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": childID, "parent_id": parentID}
	defer func() { s.observe(ctx, "task.set-parent", startedAt, fields, err) }()

	today := s.today()
	return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		err := graph.SetParent(childID, parentID, tasks, today)
		if errors.Is(err, graph.ErrNoop) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		child := tasks[childID]
		child.Sort = nextSort(tasks, child)
		return true, nil
	})
}

func (s *taskService) UnsetParent(ctx context.Context, childID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "task.unset-parent", startedAt, map[string]any{"task_id": childID}, err) }()

	return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		child, err := tasks.Get(childID)
		if err != nil {
			return false, err
		}
		if child.IsTopLevel() {
			return false, nil
		}
		graph.UnsetParent(child)
		child.Sort = nextSort(tasks, child)
		return true, nil
	})
}

func (s *taskService) SetGroup(ctx context.Context, id, group string) (changed []string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": id, "group": group}
	defer func() { s.observe(ctx, "task.set-group", startedAt, fields, err) }()

	err = s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		ids, err := graph.CascadeGroup(id, group, tasks)
		changed = ids
		return len(ids) > 0, err
	})
	return changed, err
}

func (s *taskService) RollUp(ctx context.Context, id string) (graph.Metrics, error) {
	tasks, err := s.store.ReadTasks(ctx)
	if err != nil {
		return graph.Metrics{}, err
	}
	return graph.RollUp(id, tasks)
}

func (s *taskService) Snapshot(ctx context.Context) (domain.TaskMap, error) {
	return s.store.ReadTasks(ctx)
}

// Paste creates the parsed task tree in one write. Block ids that do not
// resolve are dropped from their task and reported.
func (s *taskService) Paste(ctx context.Context, req app.PasteRequest) (result *app.PasteResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": req.ProjectID, "parent_id": req.ParentID}
	defer func() {
		if result != nil {
			fields["created"] = len(result.Created)
		}
		s.observe(ctx, "task.paste", startedAt, fields, err)
	}()

	nodes := paste.Parse(req.Text)
	if len(nodes) == 0 {
		return nil, &domain.ValidationError{Field: "text", Reason: "contains no tasks"}
	}
	result = &app.PasteResult{}
	paste.Walk(nodes, func(n *paste.Node) {
		if n.BlockID == "" {
			return
		}
		if s.checkBlock(ctx, n.BlockID) != nil {
			result.Unbound = append(result.Unbound, n.BlockID)
			n.BlockID = ""
		}
	})

	now := s.clock().UTC()
	err = s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		opts := paste.BuildOptions{
			ProjectID:    req.ProjectID,
			GroupID:      req.GroupID,
			KanbanStatus: req.KanbanStatus,
			DefaultDate:  req.DefaultDate,
			Now:          now,
			NewID:        func() string { return uuid.New().String() },
		}
		if req.ParentID != "" {
			parent, err := tasks.Get(req.ParentID)
			if err != nil {
				return false, err
			}
			opts.Parent = parent
			if opts.ProjectID == "" {
				opts.ProjectID = parent.ProjectID
			}
		}
		opts.StartSort = maxSort(tasks, opts.ProjectID)

		created := paste.Build(nodes, opts)
		for _, t := range created {
			if err := t.Validate(); err != nil {
				return false, err
			}
		}
		for _, t := range created {
			tasks[t.ID] = t
		}
		result.Created = created
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkBlock validates a block binding. Without a resolver every id is
// accepted.
func (s *taskService) checkBlock(ctx context.Context, blockID string) error {
	if blockID == "" || s.blocks == nil {
		return nil
	}
	info, err := s.blocks.ResolveBlock(ctx, blockID)
	if err != nil || info == nil {
		return &domain.ValidationError{Field: "blockId", Reason: "does not name an existing block"}
	}
	return nil
}
