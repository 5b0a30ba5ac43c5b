package paste

import (
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// SortStep separates consecutive pasted tasks.
const SortStep = 10

// BuildOptions controls how a parsed forest becomes task records.
type BuildOptions struct {
	ProjectID    string
	Parent       *domain.Task
	GroupID      string
	KanbanStatus domain.KanbanStatus
	DefaultDate  domain.DateKey
	StartSort    int
	Now          time.Time
	NewID        func() string
}

// Build converts nodes into tasks in pre-order. Each child gets its parent's
// id, the group is inherited downwards, and a node without its own priority
// takes its parent's. Sort values continue from StartSort in steps of
// SortStep.
func Build(nodes []*Node, opts BuildOptions) []*domain.Task {
	status := opts.KanbanStatus
	if status == "" {
		status = domain.KanbanDoing
	}
	b := &builder{opts: opts, status: status, sort: opts.StartSort}

	parentID, group, prio := "", opts.GroupID, domain.PriorityNone
	if p := opts.Parent; p != nil {
		parentID = p.ID
		if group == "" {
			group = p.CustomGroupID
		}
		prio = p.Priority.Normalize()
	}
	for _, n := range nodes {
		b.add(n, parentID, group, prio, parentID == "")
	}
	return b.out
}

type builder struct {
	opts   BuildOptions
	status domain.KanbanStatus
	sort   int
	out    []*domain.Task
}

func (b *builder) add(n *Node, parentID, group string, inherited domain.Priority, top bool) {
	prio := n.Priority.Normalize()
	if prio == domain.PriorityNone {
		prio = inherited
	}
	b.sort += SortStep

	t := &domain.Task{
		ID:            b.opts.NewID(),
		Title:         n.Title,
		Date:          n.StartDate,
		EndDate:       n.EndDate,
		Priority:      prio,
		ProjectID:     b.opts.ProjectID,
		CustomGroupID: group,
		ParentID:      parentID,
		BlockID:       n.BlockID,
		KanbanStatus:  b.status,
		Sort:          b.sort,
		CreatedTime:   b.opts.Now,
	}
	if top && t.Date.IsZero() && t.ProjectID == "" {
		t.Date = b.opts.DefaultDate
	}
	if n.Completed != nil && *n.Completed {
		t.MarkCompleted(b.opts.Now)
	}
	b.out = append(b.out, t)

	for _, c := range n.Children {
		b.add(c, t.ID, group, prio, false)
	}
}
