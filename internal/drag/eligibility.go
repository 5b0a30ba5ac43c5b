package drag

import (
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
)

// CanReorder: both top level in the same project and priority bucket, or
// siblings.
func CanReorder(dragged, target *domain.Task) bool {
	if dragged.ID == target.ID {
		return false
	}
	if dragged.IsTopLevel() && target.IsTopLevel() {
		return dragged.ProjectID == target.ProjectID &&
			dragged.Priority.Normalize() == target.Priority.Normalize()
	}
	return dragged.ParentID != "" && dragged.ParentID == target.ParentID
}

// CanBecomeSibling reports whether dragged can move under target's parent.
// Tasks already sharing that parent reorder instead.
func CanBecomeSibling(dragged, target *domain.Task, tasks domain.TaskMap) bool {
	if target.ParentID == "" {
		return false
	}
	if dragged.ID == target.ParentID || dragged.ParentID == target.ParentID {
		return false
	}
	if _, ok := tasks[target.ParentID]; !ok {
		return false
	}
	return !graph.IsDescendant(target.ID, dragged.ID, tasks)
}

// CanNest reports whether dragged can become a child of target.
func CanNest(dragged, target *domain.Task, tasks domain.TaskMap) bool {
	if dragged.ID == target.ID || target.ParentID == dragged.ID || dragged.ParentID == target.ID {
		return false
	}
	return !graph.IsDescendant(target.ID, dragged.ID, tasks) && !graph.IsDescendant(dragged.ID, target.ID, tasks)
}

// CanChangeLane applies only to boards with lanes, when the lanes differ.
func CanChangeLane(from, to LaneRef, mode domain.BoardMode) bool {
	switch mode {
	case domain.ModeStatus:
		return to.Status != "" && to.Status != from.Status
	case domain.ModeGroup:
		return to != from && (to.Status != "" || to.Group != from.Group)
	default:
		return false
	}
}
