package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/drag"
	"github.com/alexanderramin/tasklane/internal/repository"
)

// cardHeight is the nominal card height a drop offset is scaled to.
const cardHeight = 100.0

type dropService struct {
	core
	tracker *drag.Tracker
}

func NewDropService(store repository.TaskStore, uow db.UnitOfWork, opts Options, observers ...UseCaseObserver) DropService {
	return &dropService{core: newCore(store, uow, opts, observers), tracker: &drag.Tracker{}}
}

// Begin starts a gesture on draggedID. Only one gesture may be in flight.
func (s *dropService) Begin(ctx context.Context, draggedID, sourceRef string) error {
	tasks, err := s.store.ReadTasks(ctx)
	if err != nil {
		return err
	}
	dragged, err := lookup(draggedID, tasks)
	if err != nil {
		return err
	}
	return s.tracker.Begin(drag.DragSession{Dragged: dragged, SourceRef: sourceRef})
}

func (s *dropService) Cancel() {
	s.tracker.Cancel()
}

// Preview classifies a drop without changing anything.
func (s *dropService) Preview(ctx context.Context, req app.DropRequest) (*app.DropResult, error) {
	tasks, err := s.store.ReadTasks(ctx)
	if err != nil {
		return nil, err
	}
	dragged, err := lookup(req.DraggedID, tasks)
	if err != nil {
		return nil, err
	}
	action, err := classifyDrop(tasks, dragged, req, s.todayOr(req.Today))
	if err != nil {
		return nil, err
	}
	return &app.DropResult{Kind: action.Kind.String(), Summary: action.String()}, nil
}

// Drop resolves and applies one drop. Without a gesture in flight one is
// begun for req.DraggedID. Ineligible drops resolve to a no-op and write
// nothing.
func (s *dropService) Drop(ctx context.Context, req app.DropRequest) (result *app.DropResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"dragged_id": req.DraggedID, "target_id": req.TargetID, "mode": string(req.Mode)}
	defer func() {
		if result != nil {
			fields["kind"] = result.Kind
			fields["changed"] = len(result.Changed)
		}
		s.observe(ctx, "board.drop", startedAt, fields, err)
	}()

	if cur, active := s.tracker.Current(); !active {
		if err = s.Begin(ctx, req.DraggedID, req.SourceRef); err != nil {
			return nil, err
		}
	} else if cur.Dragged.ID != req.DraggedID {
		return nil, drag.ErrDragInProgress
	}

	today := s.todayOr(req.Today)
	at := s.clock().UTC()
	err = s.tracker.Drop(func(session drag.DragSession) error {
		return s.mutate(ctx, func(tasks domain.TaskMap) (bool, error) {
			dragged, err := lookup(session.Dragged.ID, tasks)
			if err != nil {
				return false, err
			}
			action, err := classifyDrop(tasks, dragged, req, today)
			if err != nil {
				return false, err
			}
			changed, err := drag.Apply(action, tasks, modeOf(req), today, at)
			if err != nil {
				return false, err
			}
			result = &app.DropResult{Kind: action.Kind.String(), Summary: action.String(), Changed: changed}
			return len(changed) > 0, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func modeOf(req app.DropRequest) domain.BoardMode {
	if req.Mode == "" {
		return domain.ModeStatus
	}
	return req.Mode
}

func classifyDrop(tasks domain.TaskMap, dragged *domain.Task, req app.DropRequest, today domain.DateKey) (drag.Action, error) {
	mode := modeOf(req)
	if !domain.ValidBoardModes[string(mode)] {
		return drag.Action{}, &domain.ValidationError{Field: "mode", Reason: "must be status, group or list"}
	}
	target := drag.Target{Lane: drag.LaneRef{Group: req.Group, Status: req.Lane}}
	if req.TargetID != "" {
		t, err := lookup(req.TargetID, tasks)
		if err != nil {
			return drag.Action{}, err
		}
		target.Task = t
		target.Rect = drag.Rect{Top: 0, Height: cardHeight}
	}
	offset := min(max(req.Offset, 0), 1)
	pointer := drag.Pointer{Y: offset * cardHeight}
	session := drag.DragSession{Dragged: dragged, SourceRef: req.SourceRef}
	return drag.NewClassifier(tasks, today).Classify(session, pointer, target, mode), nil
}
