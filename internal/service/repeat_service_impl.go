package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/recurrence"
	"github.com/alexanderramin/tasklane/internal/repository"
)

type repeatService struct {
	core
}

func NewRepeatService(store repository.TaskStore, uow db.UnitOfWork, opts Options, observers ...UseCaseObserver) RepeatService {
	return &repeatService{core: newCore(store, uow, opts, observers)}
}

// SetRule installs cfg as the task's repeat rule. Overlays of a previous
// rule (completions, exclusions, per-date edits) are kept.
func (s *repeatService) SetRule(ctx context.Context, id string, cfg domain.RepeatConfig) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": id, "type": string(cfg.Type)}
	defer func() { s.observe(ctx, "repeat.set", startedAt, fields, err) }()

	if err = normalizeRule(&cfg); err != nil {
		return err
	}
	return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		t, err := tasks.Get(id)
		if err != nil {
			return false, err
		}
		if !cfg.Type.IsLunar() && t.Date.IsZero() {
			return false, &domain.ValidationError{Field: "date", Reason: "is required for a solar repeat rule"}
		}
		if prev := t.Repeat; prev != nil && !prev.Malformed() {
			cfg.CompletedInstances = prev.CompletedInstances
			cfg.ExcludeDates = prev.ExcludeDates
			cfg.InstanceModifications = prev.InstanceModifications
		}
		t.Repeat = &cfg
		return true, nil
	})
}

func normalizeRule(cfg *domain.RepeatConfig) error {
	cfg.Enabled = true
	if cfg.Interval < 1 {
		cfg.Interval = 1
	}
	if cfg.EndType == "" {
		cfg.EndType = domain.EndNever
	}
	switch cfg.EndType {
	case domain.EndNever:
	case domain.EndDate:
		if !cfg.EndDate.Valid() {
			return &domain.ValidationError{Field: "repeat.endDate", Reason: "must be YYYY-MM-DD"}
		}
	case domain.EndCount:
		if cfg.EndCount < 1 {
			return &domain.ValidationError{Field: "repeat.endCount", Reason: "must be at least 1"}
		}
	default:
		return &domain.ValidationError{Field: "repeat.endType", Reason: "must be never, date or count"}
	}
	if err := checkRange("repeat.weekDays", cfg.WeekDays, 0, 6); err != nil {
		return err
	}
	if err := checkRange("repeat.monthDays", cfg.MonthDays, 1, 31); err != nil {
		return err
	}
	if err := checkRange("repeat.months", cfg.Months, 1, 12); err != nil {
		return err
	}
	if !cfg.Usable() {
		if cfg.Type.IsLunar() {
			return &domain.ValidationError{Field: "repeat", Reason: "needs a lunar day 1-30 and, yearly, a lunar month 1-12"}
		}
		return &domain.ValidationError{Field: "repeat.type", Reason: fmt.Sprintf("unknown rule type %q", cfg.Type)}
	}
	return nil
}

func checkRange(field string, vals []int, lo, hi int) error {
	for _, v := range vals {
		if v < lo || v > hi {
			return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be between %d and %d", lo, hi)}
		}
	}
	return nil
}

func (s *repeatService) ClearRule(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "repeat.clear", startedAt, map[string]any{"task_id": id}, err) }()

	return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		t, err := tasks.Get(id)
		if err != nil {
			return false, err
		}
		if t.Repeat == nil {
			return false, nil
		}
		t.Repeat = nil
		return true, nil
	})
}

// Instances materializes the rule around today with the future guarantee.
func (s *repeatService) Instances(ctx context.Context, id string) ([]domain.Instance, error) {
	t, err := s.recurring(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.MaterializeWithGuarantee(t, s.today()), nil
}

func (s *repeatService) InstancesBetween(ctx context.Context, id string, from, to domain.DateKey) ([]domain.Instance, error) {
	if !from.Valid() || !to.Valid() || to < from {
		return nil, &domain.ValidationError{Field: "window", Reason: "must be two dates in order"}
	}
	t, err := s.recurring(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Materialize(t, from, to, s.today()), nil
}

func (s *repeatService) recurring(ctx context.Context, id string) (*domain.Task, error) {
	tasks, err := s.store.ReadTasks(ctx)
	if err != nil {
		return nil, err
	}
	t, err := tasks.Get(id)
	if err != nil {
		return nil, err
	}
	if !t.IsRecurring() {
		return nil, &domain.NotFoundError{Kind: "recurring task", ID: id}
	}
	return t, nil
}

func (s *repeatService) CompleteInstance(ctx context.Context, instanceID string) error {
	return s.onInstance(ctx, "repeat.complete", instanceID, recurrence.CompleteInstance)
}

func (s *repeatService) UncompleteInstance(ctx context.Context, instanceID string) error {
	return s.onInstance(ctx, "repeat.uncomplete", instanceID, recurrence.UncompleteInstance)
}

// SkipInstance removes one occurrence for good.
func (s *repeatService) SkipInstance(ctx context.Context, instanceID string) error {
	return s.onInstance(ctx, "repeat.skip", instanceID, recurrence.DeleteInstance)
}

func (s *repeatService) EditInstance(ctx context.Context, instanceID string, mod domain.InstanceModification) error {
	if mod.IsEmpty() {
		return &domain.ValidationError{Field: "modification", Reason: "changes nothing"}
	}
	if mod.Date != nil && !mod.Date.Valid() {
		return &domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if mod.Priority != nil && !domain.ValidPriorities[string(*mod.Priority)] {
		return &domain.ValidationError{Field: "priority", Reason: "must be high, medium, low or none"}
	}
	return s.onInstance(ctx, "repeat.edit", instanceID, func(t *domain.Task, key domain.DateKey) bool {
		return recurrence.EditInstance(t, key, mod)
	})
}

// ResetInstance drops every per-date edit of one occurrence.
func (s *repeatService) ResetInstance(ctx context.Context, instanceID string) error {
	return s.onInstance(ctx, "repeat.reset", instanceID, recurrence.ClearInstance)
}

func (s *repeatService) onInstance(ctx context.Context, name, instanceID string, op func(*domain.Task, domain.DateKey) bool) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"instance_id": instanceID}
	defer func() { s.observe(ctx, name, startedAt, fields, err) }()

	return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		t, key, err := recurrence.ResolveInstance(instanceID, tasks)
		if err != nil {
			return false, err
		}
		changed := op(t, key)
		fields["changed"] = changed
		return changed, nil
	})
}
