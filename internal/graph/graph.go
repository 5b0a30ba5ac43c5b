// Package graph implements parent/child operations over a task map.
// Stored data is never assumed acyclic: every walk keeps a visited set.
package graph

import (
	"errors"
	"sort"
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/status"
)

// ErrNoop is returned by SetParent when the child already has that parent.
var ErrNoop = errors.New("parent unchanged")

// childIndex maps a parent id to its child ids in lexical order.
func childIndex(tasks domain.TaskMap) map[string][]string {
	idx := make(map[string][]string)
	for id, t := range tasks {
		if t == nil || t.ParentID == "" {
			continue
		}
		idx[t.ParentID] = append(idx[t.ParentID], id)
	}
	for _, kids := range idx {
		sort.Strings(kids)
	}
	return idx
}

// Descendants returns every task below id, breadth first. id itself is never
// included, even when the stored data loops back to it.
func Descendants(id string, tasks domain.TaskMap) []string {
	idx := childIndex(tasks)
	visited := map[string]bool{id: true}
	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range idx[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// IsDescendant reports whether ancestorID is reachable from childID by
// following parentId upward.
func IsDescendant(childID, ancestorID string, tasks domain.TaskMap) bool {
	if childID == ancestorID {
		return false
	}
	visited := map[string]bool{childID: true}
	cur, ok := tasks[childID]
	for steps := 0; ok && cur != nil && cur.ParentID != "" && steps < status.MaxDepth; steps++ {
		if cur.ParentID == ancestorID {
			return true
		}
		if visited[cur.ParentID] {
			return false
		}
		visited[cur.ParentID] = true
		cur, ok = tasks[cur.ParentID]
	}
	return false
}

// Root returns the topmost ancestor of id.
func Root(id string, tasks domain.TaskMap) (*domain.Task, error) {
	t, err := tasks.Get(id)
	if err != nil {
		return nil, err
	}
	return status.RootOf(t, tasks), nil
}

// SetParent places child under parent. It rejects self-parenting and cycles
// with a CycleError and returns ErrNoop when nothing would change. When the
// parent's subtree sits in the doing lane, an open child is pulled into doing
// as well. Group membership is left alone.
func SetParent(childID, parentID string, tasks domain.TaskMap, today domain.DateKey) error {
	child, err := tasks.Get(childID)
	if err != nil {
		return err
	}
	parent, err := tasks.Get(parentID)
	if err != nil {
		return err
	}
	if child.ID == parent.ID || IsDescendant(parent.ID, child.ID, tasks) {
		return &domain.CycleError{ChildID: child.ID, ParentID: parent.ID}
	}
	if child.ParentID == parent.ID {
		return ErrNoop
	}
	child.ParentID = parent.ID
	InheritStatus(child, parent, tasks, today)
	return nil
}

// InheritStatus forces an open child into doing when the root of its new
// parent resolves to doing.
func InheritStatus(child, parent *domain.Task, tasks domain.TaskMap, today domain.DateKey) {
	if child.Completed {
		return
	}
	if status.BoardLane(parent, tasks, today) == domain.LaneDoing {
		child.KanbanStatus = domain.KanbanDoing
	}
}

// UnsetParent detaches child from its parent. No other field changes.
func UnsetParent(child *domain.Task) {
	child.ParentID = ""
}

// CascadeComplete completes id and every open descendant with one shared
// stamp. It returns the ids that changed.
func CascadeComplete(id string, tasks domain.TaskMap, at time.Time) ([]string, error) {
	root, err := tasks.Get(id)
	if err != nil {
		return nil, err
	}
	var changed []string
	if root.MarkCompleted(at) {
		changed = append(changed, root.ID)
	}
	for _, d := range Descendants(id, tasks) {
		if tasks[d].MarkCompleted(at) {
			changed = append(changed, d)
		}
	}
	return changed, nil
}

// CascadeDelete removes id and all its descendants from tasks in one batch
// and returns the removed ids.
func CascadeDelete(id string, tasks domain.TaskMap) ([]string, error) {
	if _, err := tasks.Get(id); err != nil {
		return nil, err
	}
	removed := append([]string{id}, Descendants(id, tasks)...)
	for _, r := range removed {
		delete(tasks, r)
	}
	return removed, nil
}

// CascadeGroup moves id into group and returns the ids whose group changed.
// Descendants follow unless they carry a group of their own that differs
// from the one id is leaving.
func CascadeGroup(id, group string, tasks domain.TaskMap) ([]string, error) {
	t, err := tasks.Get(id)
	if err != nil {
		return nil, err
	}
	old := t.CustomGroupID
	var changed []string
	if old != group {
		t.CustomGroupID = group
		changed = append(changed, id)
	}
	for _, d := range Descendants(id, tasks) {
		dt := tasks[d]
		if dt.CustomGroupID != "" && dt.CustomGroupID != old {
			continue
		}
		if dt.CustomGroupID == group {
			continue
		}
		dt.CustomGroupID = group
		changed = append(changed, d)
	}
	return changed, nil
}

// Metrics aggregates counters over a task and its subtree.
type Metrics struct {
	Descendants   int
	Completed     int
	PomodoroCount int
	FocusMinutes  int
}

// Progress is the completed share of descendants, 0 when there are none.
func (m Metrics) Progress() float64 {
	if m.Descendants == 0 {
		return 0
	}
	return float64(m.Completed) / float64(m.Descendants)
}

// RollUp sums the counters of id and every descendant.
func RollUp(id string, tasks domain.TaskMap) (Metrics, error) {
	t, err := tasks.Get(id)
	if err != nil {
		return Metrics{}, err
	}
	m := Metrics{PomodoroCount: t.PomodoroCount, FocusMinutes: t.FocusMinutes}
	for _, d := range Descendants(id, tasks) {
		dt := tasks[d]
		m.Descendants++
		if dt.Completed {
			m.Completed++
		}
		m.PomodoroCount += dt.PomodoroCount
		m.FocusMinutes += dt.FocusMinutes
	}
	return m, nil
}
