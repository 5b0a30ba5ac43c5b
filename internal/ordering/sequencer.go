// Package ordering assigns manual sort keys within an ordering scope.
package ordering

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// Step is the gap between consecutive sort keys after a renumber.
const Step = 10

// Renumber assigns sort = index*Step in list order. The whole scope is
// always rewritten; existing gaps are never reused.
func Renumber(list []*domain.Task) {
	for i, t := range list {
		t.Sort = i * Step
	}
}

// Scope identifies the set of tasks renumbered together.
type Scope struct {
	ParentID  string
	ProjectID string
	Lane      domain.Lane
	Priority  domain.Priority
	Group     string
	Completed bool
	Mode      domain.BoardMode
}

// ScopeOf returns the scope of t on a board in the given mode. lane is the
// board lane of t. Subtasks are scoped by parent alone.
func ScopeOf(t *domain.Task, mode domain.BoardMode, lane domain.Lane) Scope {
	if t.ParentID != "" {
		return Scope{ParentID: t.ParentID}
	}
	switch mode {
	case domain.ModeGroup:
		return Scope{Mode: mode, ProjectID: t.ProjectID, Group: t.CustomGroupID, Completed: t.Completed}
	case domain.ModeStatus:
		return Scope{Mode: mode, ProjectID: t.ProjectID, Lane: lane, Priority: t.Priority.Normalize()}
	default:
		return Scope{Mode: mode, ProjectID: t.ProjectID, Priority: t.Priority.Normalize()}
	}
}

func (s Scope) String() string {
	if s.ParentID != "" {
		return "parent:" + s.ParentID
	}
	switch s.Mode {
	case domain.ModeGroup:
		return fmt.Sprintf("group:%s/%s/%t", s.ProjectID, s.Group, s.Completed)
	case domain.ModeStatus:
		return fmt.Sprintf("status:%s/%s/%s", s.ProjectID, s.Lane, s.Priority)
	default:
		return fmt.Sprintf("list:%s/%s", s.ProjectID, s.Priority)
	}
}

// SortDefault orders by priority desc, then sort, then newest first.
func SortDefault(list []*domain.Task) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		if !a.CreatedTime.Equal(b.CreatedTime) {
			return a.CreatedTime.After(b.CreatedTime)
		}
		return a.ID < b.ID
	})
}

// HasManualOrder reports whether any member carries a sort key.
func HasManualOrder(list []*domain.Task) bool {
	for _, t := range list {
		if t.Sort != 0 {
			return true
		}
	}
	return false
}

// Order sorts one scope for display: by sort key once a manual order
// exists, by the default rules before that.
func Order(list []*domain.Task) {
	if !HasManualOrder(list) {
		SortDefault(list)
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		if !a.CreatedTime.Equal(b.CreatedTime) {
			return a.CreatedTime.After(b.CreatedTime)
		}
		return a.ID < b.ID
	})
}

// Members collects the tasks of tasks that share scope and returns them in
// display order. laneOf supplies the board lane of a task.
func Members(tasks domain.TaskMap, scope Scope, laneOf func(*domain.Task) domain.Lane) []*domain.Task {
	var out []*domain.Task
	for _, t := range tasks {
		if t == nil {
			continue
		}
		var lane domain.Lane
		if scope.ParentID == "" && scope.Mode == domain.ModeStatus {
			lane = laneOf(t)
		}
		if ScopeOf(t, scope.Mode, lane) == scope {
			out = append(out, t)
		}
	}
	Order(out)
	return out
}

// Move places id directly before or after anchorID within list and
// renumbers the result. The returned slice is the new order; ok is false
// when either id is missing from list.
func Move(list []*domain.Task, id, anchorID string, before bool) ([]*domain.Task, bool) {
	var moving *domain.Task
	rest := make([]*domain.Task, 0, len(list))
	for _, t := range list {
		if t.ID == id {
			moving = t
			continue
		}
		rest = append(rest, t)
	}
	if moving == nil {
		return list, false
	}
	at := -1
	for i, t := range rest {
		if t.ID == anchorID {
			at = i
			break
		}
	}
	if at < 0 {
		return list, false
	}
	if !before {
		at++
	}
	out := make([]*domain.Task, 0, len(list))
	out = append(out, rest[:at]...)
	out = append(out, moving)
	out = append(out, rest[at:]...)
	Renumber(out)
	return out, true
}

// Append puts t at the end of list and renumbers.
func Append(list []*domain.Task, t *domain.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(list)+1)
	for _, m := range list {
		if m.ID != t.ID {
			out = append(out, m)
		}
	}
	out = append(out, t)
	Renumber(out)
	return out
}
