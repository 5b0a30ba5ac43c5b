// Package status derives the board lane of a task from its stored fields.
// The lane is computed on every read and never persisted.
package status

import "github.com/alexanderramin/tasklane/internal/domain"

// MaxDepth caps parent-chain walks over stored data that may contain cycles.
const MaxDepth = 1000

// Resolve applies the lane rules in order, first match wins:
// completed, kanban doing, dated on or before today, long term, term doing,
// otherwise short term.
func Resolve(t *domain.Task, today domain.DateKey) domain.Lane {
	switch {
	case t.Completed:
		return domain.LaneDone
	case t.KanbanStatus == domain.KanbanDoing:
		return domain.LaneDoing
	case !t.Date.IsZero() && t.Date.Compare(today) <= 0:
		return domain.LaneDoing
	case t.TermType == domain.TermLong:
		return domain.LaneLongTerm
	case t.TermType == domain.TermDoing:
		return domain.LaneDoing
	default:
		return domain.LaneShortTerm
	}
}

// RootOf walks parentId links to the topmost ancestor. A missing parent or a
// cycle stops the walk at the last task reached.
func RootOf(t *domain.Task, tasks domain.TaskMap) *domain.Task {
	cur := t
	seen := map[string]bool{cur.ID: true}
	for depth := 0; cur.ParentID != "" && depth < MaxDepth; depth++ {
		parent, ok := tasks[cur.ParentID]
		if !ok || parent == nil || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		cur = parent
	}
	return cur
}

// BoardLane is the lane a task is placed in on the board: the lane of its
// root ancestor, so a whole subtree sits in one column.
func BoardLane(t *domain.Task, tasks domain.TaskMap, today domain.DateKey) domain.Lane {
	return Resolve(RootOf(t, tasks), today)
}
