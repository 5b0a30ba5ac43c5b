package drag

import (
	"fmt"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/status"
)

// LaneRef names a board column. Group is set on group boards only; Status
// is the status lane or, on group boards, the status sub-lane.
type LaneRef struct {
	Group  string
	Status domain.Lane
}

func (l LaneRef) String() string {
	if l.Group == "" {
		return string(l.Status)
	}
	return l.Group + "/" + string(l.Status)
}

// Target is what the pointer is over at drop time. Task is nil for an empty
// column, in which case Lane names the column.
type Target struct {
	Task *domain.Task
	Rect Rect
	Lane LaneRef
}

type Kind int

const (
	NoOp Kind = iota
	Reorder
	BecomeSibling
	Nest
	ChangeLane
)

func (k Kind) String() string {
	switch k {
	case Reorder:
		return "reorder"
	case BecomeSibling:
		return "become-sibling"
	case Nest:
		return "nest"
	case ChangeLane:
		return "change-lane"
	default:
		return "noop"
	}
}

// Action is the single structural mutation a drop resolves to.
type Action struct {
	Kind        Kind
	DraggedID   string
	TargetID    string
	NewParentID string
	Before      bool
	Lane        LaneRef
}

func (a Action) String() string {
	switch a.Kind {
	case Reorder:
		return fmt.Sprintf("reorder %s %s %s", a.DraggedID, position(a.Before), a.TargetID)
	case BecomeSibling:
		return fmt.Sprintf("move %s under %s %s %s", a.DraggedID, a.NewParentID, position(a.Before), a.TargetID)
	case Nest:
		return fmt.Sprintf("nest %s under %s", a.DraggedID, a.TargetID)
	case ChangeLane:
		return fmt.Sprintf("move %s to %s", a.DraggedID, a.Lane)
	default:
		return "noop"
	}
}

func position(before bool) string {
	if before {
		return "before"
	}
	return "after"
}

// Classifier resolves drops against one snapshot of the task map.
type Classifier struct {
	Tasks domain.TaskMap
	Today domain.DateKey
}

func NewClassifier(tasks domain.TaskMap, today domain.DateKey) *Classifier {
	return &Classifier{Tasks: tasks, Today: today}
}

// LaneOf returns the column t is shown in. Subtasks sit in their root's
// column.
func (c *Classifier) LaneOf(t *domain.Task, mode domain.BoardMode) LaneRef {
	switch mode {
	case domain.ModeStatus:
		return LaneRef{Status: status.BoardLane(t, c.Tasks, c.Today)}
	case domain.ModeGroup:
		root := status.RootOf(t, c.Tasks)
		return LaneRef{Group: root.CustomGroupID, Status: status.Resolve(root, c.Today)}
	default:
		return LaneRef{}
	}
}

// Classify resolves one drop. A lane change wins over any position; then
// the edge zones reorder or move under the target's parent and the middle
// zone nests. Anything else is a silent NoOp.
func (c *Classifier) Classify(s DragSession, p Pointer, target Target, mode domain.BoardMode) Action {
	dragged := s.Dragged
	if dragged == nil {
		return Action{Kind: NoOp}
	}
	noop := Action{Kind: NoOp, DraggedID: dragged.ID}

	to := target.Lane
	if target.Task != nil {
		to = c.LaneOf(target.Task, mode)
	}
	if CanChangeLane(c.LaneOf(dragged, mode), to, mode) {
		return Action{Kind: ChangeLane, DraggedID: dragged.ID, Lane: to}
	}
	if target.Task == nil {
		return noop
	}
	// Instances are views over a stored rule and cannot move structurally.
	if !c.stored(dragged) || !c.stored(target.Task) {
		return noop
	}
	tgt := target.Task

	switch zone := ZoneOf(p, target.Rect); zone {
	case ZoneBefore, ZoneAfter:
		before := zone == ZoneBefore
		if CanReorder(dragged, tgt) {
			return Action{Kind: Reorder, DraggedID: dragged.ID, TargetID: tgt.ID, Before: before}
		}
		if CanBecomeSibling(dragged, tgt, c.Tasks) {
			return Action{Kind: BecomeSibling, DraggedID: dragged.ID, TargetID: tgt.ID, NewParentID: tgt.ParentID, Before: before}
		}
	case ZoneNest:
		if CanNest(dragged, tgt, c.Tasks) {
			return Action{Kind: Nest, DraggedID: dragged.ID, TargetID: tgt.ID, NewParentID: tgt.ID}
		}
	}
	return noop
}

func (c *Classifier) stored(t *domain.Task) bool {
	_, ok := c.Tasks[t.ID]
	return ok
}
