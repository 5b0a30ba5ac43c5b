package drag

import (
	"errors"
	"sort"
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
	"github.com/alexanderramin/tasklane/internal/ordering"
	"github.com/alexanderramin/tasklane/internal/recurrence"
	"github.com/alexanderramin/tasklane/internal/status"
)

// Apply performs a on tasks in place and returns the ids of the stored
// records it changed, sorted. A NoOp changes nothing. On error tasks may be
// partially modified; callers apply actions to a copy.
func Apply(a Action, tasks domain.TaskMap, mode domain.BoardMode, today domain.DateKey, at time.Time) ([]string, error) {
	ch := changes{}
	var err error
	switch a.Kind {
	case NoOp:
		return nil, nil
	case Reorder:
		err = applyReorder(a, tasks, mode, today, ch)
	case BecomeSibling:
		err = applySibling(a, tasks, today, ch)
	case Nest:
		err = applyNest(a, tasks, today, ch)
	case ChangeLane:
		err = applyLane(a, tasks, mode, today, at, ch)
	}
	if err != nil {
		return nil, err
	}
	return ch.ids(), nil
}

type changes map[string]bool

func (c changes) add(ids ...string) {
	for _, id := range ids {
		c[id] = true
	}
}

func (c changes) addTasks(list []*domain.Task) {
	for _, t := range list {
		c[t.ID] = true
	}
}

func (c changes) ids() []string {
	out := make([]string, 0, len(c))
	for id := range c {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func laneFunc(tasks domain.TaskMap, today domain.DateKey) func(*domain.Task) domain.Lane {
	return func(t *domain.Task) domain.Lane { return status.BoardLane(t, tasks, today) }
}

func applyReorder(a Action, tasks domain.TaskMap, mode domain.BoardMode, today domain.DateKey, ch changes) error {
	dragged, err := tasks.Get(a.DraggedID)
	if err != nil {
		return err
	}
	target, err := tasks.Get(a.TargetID)
	if err != nil {
		return err
	}
	laneOf := laneFunc(tasks, today)
	members := ordering.Members(tasks, ordering.ScopeOf(target, mode, laneOf(target)), laneOf)
	members = ordering.Append(members, dragged)
	out, ok := ordering.Move(members, dragged.ID, target.ID, a.Before)
	if !ok {
		return &domain.NotFoundError{Kind: "task", ID: target.ID}
	}
	ch.addTasks(out)
	return nil
}

// applySibling moves the dragged task under the target's parent next to the
// target. The group follows the new parent.
func applySibling(a Action, tasks domain.TaskMap, today domain.DateKey, ch changes) error {
	dragged, err := tasks.Get(a.DraggedID)
	if err != nil {
		return err
	}
	parent, err := tasks.Get(a.NewParentID)
	if err != nil {
		return err
	}
	if err := graph.SetParent(dragged.ID, parent.ID, tasks, today); err != nil && !errors.Is(err, graph.ErrNoop) {
		return err
	}
	dragged.CustomGroupID = parent.CustomGroupID
	ch.add(dragged.ID)

	siblings := ordering.Members(tasks, ordering.Scope{ParentID: parent.ID}, nil)
	out, ok := ordering.Move(siblings, dragged.ID, a.TargetID, a.Before)
	if !ok {
		return &domain.NotFoundError{Kind: "task", ID: a.TargetID}
	}
	ch.addTasks(out)
	return nil
}

// applyNest makes the dragged task the last child of the target.
func applyNest(a Action, tasks domain.TaskMap, today domain.DateKey, ch changes) error {
	dragged, err := tasks.Get(a.DraggedID)
	if err != nil {
		return err
	}
	if err := graph.SetParent(dragged.ID, a.NewParentID, tasks, today); err != nil {
		if errors.Is(err, graph.ErrNoop) {
			return nil
		}
		return err
	}
	ch.add(dragged.ID)
	siblings := ordering.Members(tasks, ordering.Scope{ParentID: a.NewParentID}, nil)
	ch.addTasks(ordering.Append(siblings, dragged))
	return nil
}

// applyLane rewrites the stored fields so the task resolves to the target
// lane. A subtask leaves its parent, since it would otherwise keep showing
// in its root's lane. Instances record the change as an overlay.
func applyLane(a Action, tasks domain.TaskMap, mode domain.BoardMode, today domain.DateKey, at time.Time, ch changes) error {
	if _, ok := tasks[a.DraggedID]; !ok {
		return applyInstanceLane(a, tasks, mode, ch)
	}
	dragged := tasks[a.DraggedID]
	ch.add(dragged.ID)
	graph.UnsetParent(dragged)

	if mode == domain.ModeGroup && a.Lane.Group != dragged.CustomGroupID {
		moved, err := graph.CascadeGroup(dragged.ID, a.Lane.Group, tasks)
		if err != nil {
			return err
		}
		ch.add(moved...)
	}

	switch a.Lane.Status {
	case domain.LaneDone:
		done, err := graph.CascadeComplete(dragged.ID, tasks, at)
		if err != nil {
			return err
		}
		ch.add(done...)
	case domain.LaneDoing:
		dragged.Reopen()
		dragged.KanbanStatus = domain.KanbanDoing
	case domain.LaneShortTerm:
		dragged.Reopen()
		dragged.KanbanStatus = domain.KanbanTodo
		dragged.TermType = domain.TermShort
	case domain.LaneLongTerm:
		dragged.Reopen()
		dragged.KanbanStatus = domain.KanbanTodo
		dragged.TermType = domain.TermLong
	}

	if mode == domain.ModeList {
		return nil
	}
	laneOf := laneFunc(tasks, today)
	members := ordering.Members(tasks, ordering.ScopeOf(dragged, mode, laneOf(dragged)), laneOf)
	ch.addTasks(ordering.Append(members, dragged))
	return nil
}

// applyInstanceLane writes the lane into the occurrence overlay. On group
// boards the group is always written, so an empty group overrides the
// rule's own group.
func applyInstanceLane(a Action, tasks domain.TaskMap, mode domain.BoardMode, ch changes) error {
	task, key, err := recurrence.ResolveInstance(a.DraggedID, tasks)
	if err != nil {
		return err
	}
	var mod domain.InstanceModification
	if mode == domain.ModeGroup {
		mod.CustomGroupID = ptr(a.Lane.Group)
	}
	changed := false
	switch a.Lane.Status {
	case domain.LaneDone:
		changed = recurrence.CompleteInstance(task, key)
	case domain.LaneDoing:
		changed = recurrence.UncompleteInstance(task, key)
		mod.KanbanStatus = ptr(domain.KanbanDoing)
	case domain.LaneShortTerm:
		changed = recurrence.UncompleteInstance(task, key)
		mod.KanbanStatus = ptr(domain.KanbanTodo)
		mod.TermType = ptr(domain.TermShort)
	case domain.LaneLongTerm:
		changed = recurrence.UncompleteInstance(task, key)
		mod.KanbanStatus = ptr(domain.KanbanTodo)
		mod.TermType = ptr(domain.TermLong)
	}
	if recurrence.EditInstance(task, key, mod) {
		changed = true
	}
	if changed {
		ch.add(task.ID)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
