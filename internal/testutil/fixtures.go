package testutil

import (
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/google/uuid"
)

// FixedNow is the creation stamp given to fixture tasks.
var FixedNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

// Task options
type TaskOption func(*domain.Task)

func WithID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

func WithDate(d domain.DateKey) TaskOption {
	return func(t *domain.Task) {
		t.Date = d
	}
}

func WithProject(id string) TaskOption {
	return func(t *domain.Task) {
		t.ProjectID = id
	}
}

func WithParent(id string) TaskOption {
	return func(t *domain.Task) {
		t.ParentID = id
	}
}

func WithGroup(id string) TaskOption {
	return func(t *domain.Task) {
		t.CustomGroupID = id
	}
}

func WithPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithTerm(term domain.TermType) TaskOption {
	return func(t *domain.Task) {
		t.TermType = term
	}
}

func WithKanban(s domain.KanbanStatus) TaskOption {
	return func(t *domain.Task) {
		t.KanbanStatus = s
	}
}

func WithSort(n int) TaskOption {
	return func(t *domain.Task) {
		t.Sort = n
	}
}

func WithCompleted(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.MarkCompleted(at)
	}
}

func WithCounters(pomodoros, focusMin int) TaskOption {
	return func(t *domain.Task) {
		t.PomodoroCount = pomodoros
		t.FocusMinutes = focusMin
	}
}

// WithRepeat enables a repeat rule of the given type with interval 1.
func WithRepeat(typ domain.RepeatType, opts ...func(*domain.RepeatConfig)) TaskOption {
	return func(t *domain.Task) {
		cfg := &domain.RepeatConfig{Enabled: true, Type: typ, Interval: 1, EndType: domain.EndNever}
		for _, opt := range opts {
			opt(cfg)
		}
		t.Repeat = cfg
	}
}

// NewTestTask returns a valid open task. Without options it is dated on
// FixedNow's day and has no project.
func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Date:        domain.NewDateKey(FixedNow),
		Priority:    domain.PriorityNone,
		CreatedTime: FixedNow,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TaskMapOf indexes tasks by id.
func TaskMapOf(tasks ...*domain.Task) domain.TaskMap {
	m := make(domain.TaskMap, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}
