package app

import (
	"github.com/alexanderramin/tasklane/internal/domain"
)

// TaskPatch lists the fields an update changes. Nil fields are left alone.
type TaskPatch struct {
	Title        *string
	Note         *string
	Date         *domain.DateKey
	EndDate      *domain.DateKey
	Time         *string
	EndTime      *string
	Priority     *domain.Priority
	CategoryID   *string
	ProjectID    *string
	BlockID      *string
	TermType     *domain.TermType
	KanbanStatus *domain.KanbanStatus
}

func (p TaskPatch) IsEmpty() bool {
	return p == TaskPatch{}
}

// Apply copies the set fields onto t.
func (p TaskPatch) Apply(t *domain.Task) {
	t.Title = domain.ValueOr(p.Title, t.Title)
	t.Note = domain.ValueOr(p.Note, t.Note)
	t.Date = domain.ValueOr(p.Date, t.Date)
	t.EndDate = domain.ValueOr(p.EndDate, t.EndDate)
	t.Time = domain.ValueOr(p.Time, t.Time)
	t.EndTime = domain.ValueOr(p.EndTime, t.EndTime)
	t.Priority = domain.ValueOr(p.Priority, t.Priority)
	t.CategoryID = domain.ValueOr(p.CategoryID, t.CategoryID)
	t.ProjectID = domain.ValueOr(p.ProjectID, t.ProjectID)
	t.BlockID = domain.ValueOr(p.BlockID, t.BlockID)
	t.TermType = domain.ValueOr(p.TermType, t.TermType)
	t.KanbanStatus = domain.ValueOr(p.KanbanStatus, t.KanbanStatus)
}

// Modification returns the overlay form of the patch for a single
// occurrence. ok is false when the patch touches a field occurrences cannot
// override.
func (p TaskPatch) Modification() (domain.InstanceModification, bool) {
	if p.Title != nil || p.BlockID != nil {
		return domain.InstanceModification{}, false
	}
	return domain.InstanceModification{
		Date:         p.Date,
		EndDate:      p.EndDate,
		Time:         p.Time,
		EndTime:      p.EndTime,
		Note:         p.Note,
		Priority:     p.Priority,
		CategoryID:   p.CategoryID,
		ProjectID:    p.ProjectID,
		TermType:     p.TermType,
		KanbanStatus: p.KanbanStatus,
	}, true
}

// TaskFilter narrows List. The zero value lists every open task.
type TaskFilter struct {
	ProjectID        string
	ParentID         string
	TopLevelOnly     bool
	IncludeCompleted bool
}

// PasteRequest creates a task tree from indented text in one write.
type PasteRequest struct {
	Text         string
	ProjectID    string
	ParentID     string
	GroupID      string
	KanbanStatus domain.KanbanStatus
	// DefaultDate dates top-level tasks that carry no date of their own and
	// belong to no project.
	DefaultDate domain.DateKey
}

type PasteResult struct {
	Created []*domain.Task
	// Unbound lists block ids that did not resolve and were dropped.
	Unbound []string
}
