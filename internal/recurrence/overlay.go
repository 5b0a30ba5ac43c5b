package recurrence

import (
	"github.com/alexanderramin/tasklane/internal/domain"
)

// ResolveInstance maps an instance id back to its recurring task and the
// originally generated date key. The key is taken from the id, never from
// the displayed date.
func ResolveInstance(instanceID string, tasks domain.TaskMap) (*domain.Task, domain.DateKey, error) {
	origID, key, ok := domain.SplitInstanceID(instanceID)
	if !ok {
		return nil, "", &domain.NotFoundError{Kind: "instance", ID: instanceID}
	}
	task, err := tasks.Get(origID)
	if err != nil {
		return nil, "", err
	}
	if !task.IsRecurring() {
		return nil, "", &domain.NotFoundError{Kind: "recurring task", ID: origID}
	}
	return task, key, nil
}

// EditInstance layers mod over the stored overlay for key. It reports
// whether the rule changed.
func EditInstance(task *domain.Task, key domain.DateKey, mod domain.InstanceModification) bool {
	cfg := task.Repeat
	if cfg == nil || mod.IsEmpty() {
		return false
	}
	cur, _ := cfg.Modification(key)
	next := cur.Merge(mod)
	if cfg.InstanceModifications == nil {
		cfg.InstanceModifications = make(map[domain.DateKey]domain.InstanceModification)
	}
	cfg.InstanceModifications[key] = next
	return true
}

// ClearInstance drops the overlay for key.
func ClearInstance(task *domain.Task, key domain.DateKey) bool {
	cfg := task.Repeat
	if cfg == nil {
		return false
	}
	if _, ok := cfg.InstanceModifications[key]; !ok {
		return false
	}
	delete(cfg.InstanceModifications, key)
	return true
}

// DeleteInstance excludes key permanently. The stored task is kept.
func DeleteInstance(task *domain.Task, key domain.DateKey) bool {
	if task.Repeat == nil {
		return false
	}
	return task.Repeat.ExcludeDates.Add(key)
}

func CompleteInstance(task *domain.Task, key domain.DateKey) bool {
	if task.Repeat == nil {
		return false
	}
	return task.Repeat.CompletedInstances.Add(key)
}

func UncompleteInstance(task *domain.Task, key domain.DateKey) bool {
	if task.Repeat == nil {
		return false
	}
	return task.Repeat.CompletedInstances.Remove(key)
}
