package importer

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/status"
)

// Validate checks every record of snap and returns all problems found, in
// key order. Parent references may point into snap or into existing.
func Validate(snap Snapshot, existing domain.TaskMap) []error {
	var errs []error
	keys := make([]string, 0, len(snap))
	for key := range snap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		t := snap[key]
		if t == nil {
			errs = append(errs, fmt.Errorf("task %s: record is empty", key))
			continue
		}
		if t.ID != key {
			errs = append(errs, fmt.Errorf("task %s: id %q does not match its key", key, t.ID))
		}
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("task %s: %w", key, err))
		}
		if orig, _, ok := domain.SplitInstanceID(key); ok {
			if rule := lookup(orig, snap, existing); rule != nil && rule.IsRecurring() {
				errs = append(errs, fmt.Errorf("task %s: repeat occurrences cannot be imported", key))
			}
		}
		if t.ParentID != "" {
			switch {
			case t.ParentID == key:
				errs = append(errs, fmt.Errorf("task %s: is its own parent", key))
			case lookup(t.ParentID, snap, existing) == nil:
				errs = append(errs, fmt.Errorf("task %s: parent %q not found", key, t.ParentID))
			}
		}
	}
	errs = append(errs, cycles(keys, Merge(existing, snap, false))...)
	return errs
}

func lookup(id string, snap Snapshot, existing domain.TaskMap) *domain.Task {
	if t, ok := snap[id]; ok && t != nil {
		return t
	}
	return existing[id]
}

// cycles reports each imported task whose parent chain loops.
func cycles(keys []string, merged domain.TaskMap) []error {
	var errs []error
	for _, key := range keys {
		t := merged[key]
		if t == nil || t.ParentID == "" || t.ParentID == key {
			continue
		}
		seen := map[string]bool{key: true}
		cur := t
		for depth := 0; cur.ParentID != "" && depth < status.MaxDepth; depth++ {
			next, ok := merged[cur.ParentID]
			if !ok || next == nil {
				break
			}
			if seen[next.ID] {
				errs = append(errs, fmt.Errorf("task %s: parent chain loops through %q", key, next.ID))
				break
			}
			seen[next.ID] = true
			cur = next
		}
	}
	return errs
}
