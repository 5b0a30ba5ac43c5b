// Package recurrence expands repeat rules into dated instances. Instances
// are derived on every read; only overlay entries on the parent rule are
// ever stored.
package recurrence

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// maxAttempts bounds the widening search for a future occurrence.
const maxAttempts = 5

// Engine materializes instances for the board. The zero value is not usable;
// construct with NewEngine.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns an engine logging to logger. A nil logger discards.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{logger: logger}
}

// Materialize expands task inside [windowStart, windowEnd] and keeps every
// past-incomplete, today-incomplete and completed instance, plus only the
// chronologically first future-incomplete one. Classification uses the
// displayed date, so a moved occurrence lands where it is shown.
func Materialize(task *domain.Task, windowStart, windowEnd, today domain.DateKey) []domain.Instance {
	if task == nil || !task.IsRecurring() {
		return nil
	}
	all := expand(task, windowStart, windowEnd)

	next := -1
	for i := range all {
		inst := &all[i]
		if inst.Completed || inst.Date.Compare(today) <= 0 {
			continue
		}
		if next < 0 || before(inst, &all[next]) {
			next = i
		}
	}

	out := make([]domain.Instance, 0, len(all))
	for i := range all {
		inst := all[i]
		if !inst.Completed && inst.Date.Compare(today) > 0 && i != next {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// MaterializeWithGuarantee picks a window around today sized by rule type
// and widens it until a future-incomplete instance exists. When every
// attempt fails, the last attempt's instances are returned without one.
func (e *Engine) MaterializeWithGuarantee(task *domain.Task, today domain.DateKey) []domain.Instance {
	if task == nil || !task.IsRecurring() {
		return nil
	}
	months, widen := WindowMonths(task.Repeat.Type)

	var start, end domain.DateKey
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start, end = Window(today, months)
		if hasFutureOpen(task, start, end, today) {
			return Materialize(task, start, end, today)
		}
		months += widen
	}
	e.logger.Debug("no future occurrence found",
		"task_id", task.ID,
		"type", string(task.Repeat.Type),
		"window_start", start.String(),
		"window_end", end.String(),
	)
	return Materialize(task, start, end, today)
}

// Materialize is the method form of the package function, for callers that
// hold an engine.
func (e *Engine) Materialize(task *domain.Task, windowStart, windowEnd, today domain.DateKey) []domain.Instance {
	return Materialize(task, windowStart, windowEnd, today)
}

// WindowMonths returns the initial window width in months and the widening
// step for a rule type.
func WindowMonths(t domain.RepeatType) (initial, widen int) {
	switch t {
	case domain.RepeatYearly, domain.RepeatLunarMonthly, domain.RepeatLunarYearly:
		return 14, 12
	case domain.RepeatMonthly:
		return 3, 6
	default:
		return 2, 6
	}
}

// Window spans the first day of the month before today through the last day
// of month today.month + months - 1.
func Window(today domain.DateKey, months int) (domain.DateKey, domain.DateKey) {
	t, ok := today.Time()
	if !ok {
		return today, today
	}
	start := time.Date(t.Year(), t.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return domain.NewDateKey(start), domain.NewDateKey(end)
}

// NextOpen returns the first instance dated after today that is not
// completed.
func NextOpen(instances []domain.Instance, today domain.DateKey) (domain.Instance, bool) {
	var best *domain.Instance
	for i := range instances {
		inst := &instances[i]
		if inst.Completed || inst.Date.Compare(today) <= 0 {
			continue
		}
		if best == nil || before(inst, best) {
			best = inst
		}
	}
	if best == nil {
		return domain.Instance{}, false
	}
	return *best, true
}

func hasFutureOpen(task *domain.Task, start, end, today domain.DateKey) bool {
	for _, inst := range expand(task, start, end) {
		if !inst.Completed && inst.Date.Compare(today) > 0 {
			return true
		}
	}
	return false
}

func before(a, b *domain.Instance) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.DateKey < b.DateKey
}

// expand builds every non-excluded instance in the window, in key order.
func expand(task *domain.Task, windowStart, windowEnd domain.DateKey) []domain.Instance {
	keys := Candidates(task, windowStart, windowEnd)
	out := make([]domain.Instance, 0, len(keys))
	for _, key := range keys {
		if task.Repeat.ExcludeDates.Has(key) {
			continue
		}
		out = append(out, Build(task, key))
	}
	return out
}

// Build returns the instance of task generated for key with its overlay
// applied.
func Build(task *domain.Task, key domain.DateKey) domain.Instance {
	cfg := task.Repeat
	mod, _ := cfg.Modification(key)

	merged := *task
	merged.ID = domain.InstanceID(task.ID, key)
	merged.Repeat = nil
	merged.CompletedTime = nil
	merged.Completed = cfg.CompletedInstances.Has(key)

	merged.Date = domain.ValueOr(mod.Date, key)
	switch {
	case mod.EndDate != nil:
		merged.EndDate = *mod.EndDate
	case !task.EndDate.IsZero() && !task.Date.IsZero():
		merged.EndDate = merged.Date.AddDays(domain.DaysBetween(task.Date, task.EndDate))
	default:
		merged.EndDate = ""
	}
	merged.Time = domain.ValueOr(mod.Time, task.Time)
	merged.EndTime = domain.ValueOr(mod.EndTime, task.EndTime)
	merged.Note = domain.ValueOr(mod.Note, task.Note)
	merged.Priority = domain.ValueOr(mod.Priority, task.Priority)
	merged.CategoryID = domain.ValueOr(mod.CategoryID, task.CategoryID)
	merged.ProjectID = domain.ValueOr(mod.ProjectID, task.ProjectID)
	merged.CustomGroupID = domain.ValueOr(mod.CustomGroupID, task.CustomGroupID)
	merged.TermType = domain.ValueOr(mod.TermType, task.TermType)
	merged.KanbanStatus = domain.ValueOr(mod.KanbanStatus, task.KanbanStatus)

	return domain.Instance{Task: merged, OriginalID: task.ID, DateKey: key}
}
