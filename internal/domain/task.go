package domain

import (
	"sort"
	"strings"
	"time"
)

// Task is the persisted task record. JSON names are the stored field names.
type Task struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Note          string        `json:"note,omitempty"`
	Date          DateKey       `json:"date,omitempty"`
	EndDate       DateKey       `json:"endDate,omitempty"`
	Time          string        `json:"time,omitempty"`
	EndTime       string        `json:"endTime,omitempty"`
	Completed     bool          `json:"completed"`
	CompletedTime *time.Time    `json:"completedTime,omitempty"`
	Priority      Priority      `json:"priority"`
	CategoryID    string        `json:"categoryId,omitempty"`
	ProjectID     string        `json:"projectId,omitempty"`
	CustomGroupID string        `json:"customGroupId,omitempty"`
	ParentID      string        `json:"parentId,omitempty"`
	BlockID       string        `json:"blockId,omitempty"`
	TermType      TermType      `json:"termType,omitempty"`
	KanbanStatus  KanbanStatus  `json:"kanbanStatus,omitempty"`
	Sort          int           `json:"sort"`
	CreatedTime   time.Time     `json:"createdTime"`
	Repeat        *RepeatConfig `json:"repeat,omitempty"`

	// Counters aggregated by graph roll-up.
	PomodoroCount int `json:"pomodoroCount,omitempty"`
	FocusMinutes  int `json:"focusMinutes,omitempty"`
}

func (t *Task) IsTopLevel() bool { return t.ParentID == "" }

// IsRecurring reports whether the task expands into instances. A task whose
// repeat rule is disabled or unusable renders as a plain task.
func (t *Task) IsRecurring() bool {
	return t.Repeat.Usable()
}

// Validate checks the fields required to persist a task.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if t.ProjectID == "" && t.ParentID == "" && t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required for tasks outside a project"}
	}
	if !t.Date.IsZero() && !t.Date.Valid() {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if !t.EndDate.IsZero() {
		if !t.EndDate.Valid() {
			return &ValidationError{Field: "endDate", Reason: "must be YYYY-MM-DD"}
		}
		if !t.Date.IsZero() && t.EndDate < t.Date {
			return &ValidationError{Field: "endDate", Reason: "must not be before date"}
		}
	}
	if t.Priority != "" && !ValidPriorities[string(t.Priority)] {
		return &ValidationError{Field: "priority", Reason: "must be high, medium, low or none"}
	}
	return nil
}

// MarkCompleted sets the completion flag and stamp. Already completed tasks
// keep their original stamp.
func (t *Task) MarkCompleted(at time.Time) bool {
	if t.Completed {
		return false
	}
	t.Completed = true
	stamp := at
	t.CompletedTime = &stamp
	return true
}

func (t *Task) Reopen() {
	t.Completed = false
	t.CompletedTime = nil
}

// Clone returns a deep copy.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.CompletedTime != nil {
		ct := *t.CompletedTime
		c.CompletedTime = &ct
	}
	c.Repeat = t.Repeat.Clone()
	return &c
}

// TaskMap is the whole persisted store: task id to record.
type TaskMap map[string]*Task

// Get returns the task with the given id or a NotFoundError.
func (m TaskMap) Get(id string) (*Task, error) {
	t, ok := m[id]
	if !ok || t == nil {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}
	return t, nil
}

// Children returns the direct children of parentID ordered by sort, then
// creation time, then id.
func (m TaskMap) Children(parentID string) []*Task {
	var out []*Task
	for _, t := range m {
		if t != nil && t.ParentID == parentID && t.ID != parentID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sort != out[j].Sort {
			return out[i].Sort < out[j].Sort
		}
		if !out[i].CreatedTime.Equal(out[j].CreatedTime) {
			return out[i].CreatedTime.Before(out[j].CreatedTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ByProject returns the tasks of a project. An empty projectID selects tasks
// without a project.
func (m TaskMap) ByProject(projectID string) []*Task {
	var out []*Task
	for _, t := range m {
		if t != nil && t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the map keys in lexical order.
func (m TaskMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone deep-copies every record.
func (m TaskMap) Clone() TaskMap {
	out := make(TaskMap, len(m))
	for id, t := range m {
		out[id] = t.Clone()
	}
	return out
}
