package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/importer"
	"github.com/alexanderramin/tasklane/internal/repository"
)

type importService struct {
	core
}

func NewImportService(store repository.TaskStore, uow db.UnitOfWork, opts Options, observers ...UseCaseObserver) ImportService {
	return &importService{core: newCore(store, uow, opts, observers)}
}

func (s *importService) ImportFile(ctx context.Context, path string, replace bool) (*importer.Summary, error) {
	snap, err := importer.LoadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.Import(ctx, snap, replace)
}

// Import lays snap over the stored map, or swaps the map for snap when
// replace is set. Every record is checked first and nothing is written when
// any check fails.
func (s *importService) Import(ctx context.Context, snap importer.Snapshot, replace bool) (summary *importer.Summary, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"records": len(snap), "replace": replace}
	defer func() {
		if summary != nil {
			fields["added"] = summary.Added
			fields["updated"] = summary.Updated
			fields["removed"] = summary.Removed
		}
		s.observe(ctx, "task.import", startedAt, fields, err)
	}()

	if len(snap) == 0 && !replace {
		return nil, &domain.ValidationError{Field: "snapshot", Reason: "contains no tasks"}
	}

	err = s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
		existing := tasks
		if replace {
			existing = nil
		}
		if errs := importer.Validate(snap, existing); len(errs) > 0 {
			return false, formatValidationErrors(errs)
		}
		merged := importer.Merge(tasks, snap, replace)
		diff := importer.Diff(tasks, merged)
		summary = &diff
		if diff.Added+diff.Updated+diff.Removed == 0 {
			return false, nil
		}
		clear(tasks)
		for id, t := range merged {
			tasks[id] = t
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
