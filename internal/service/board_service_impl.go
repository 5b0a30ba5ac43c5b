package service

import (
	"context"
	"sort"
	"time"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/db"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
	"github.com/alexanderramin/tasklane/internal/ordering"
	"github.com/alexanderramin/tasklane/internal/recurrence"
	"github.com/alexanderramin/tasklane/internal/repository"
	"github.com/alexanderramin/tasklane/internal/status"
)

type boardService struct {
	core
}

func NewBoardService(store repository.TaskStore, uow db.UnitOfWork, opts Options, observers ...UseCaseObserver) BoardService {
	return &boardService{core: newCore(store, uow, opts, observers)}
}

// LoadBoard reads the store, expands recurring tasks and lays the result out
// in the columns of the requested mode. Lanes are derived on every load.
func (s *boardService) LoadBoard(ctx context.Context, req app.BoardRequest) (board *app.Board, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"mode": string(req.Mode), "project_id": req.ProjectID}
	defer func() {
		if board != nil {
			fields["columns"] = len(board.Columns)
		}
		s.observe(ctx, "board.load", startedAt, fields, err)
	}()

	mode := req.Mode
	if mode == "" {
		mode = domain.ModeStatus
	}
	if !domain.ValidBoardModes[string(mode)] {
		return nil, &domain.ValidationError{Field: "mode", Reason: "must be status, group or list"}
	}
	tasks, err := s.store.ReadTasks(ctx)
	if err != nil {
		return nil, err
	}
	rev, err := s.store.Revision(ctx)
	if err != nil {
		return nil, err
	}
	req.Mode = mode
	board = layoutBoard(tasks, req, s.todayOr(req.Today), s.engine)
	board.Revision = rev
	return board, nil
}

type placed struct {
	card  *app.Card
	lane  domain.Lane
	group string
}

// layoutBoard builds the board for one snapshot. Subtasks nest under their
// parent card; subtasks of a recurring rule and members of a stored parent
// cycle are shown at top level so nothing is lost.
func layoutBoard(tasks domain.TaskMap, req app.BoardRequest, today domain.DateKey, engine *recurrence.Engine) *app.Board {
	b := &boardBuilder{tasks: tasks, req: req, today: today, engine: engine, seen: map[string]bool{}}
	for _, id := range tasks.IDs() {
		if b.isTop(tasks[id]) {
			b.addTop(tasks[id])
		}
	}
	for _, id := range tasks.IDs() {
		if !b.seen[id] {
			b.addTop(tasks[id])
		}
	}
	return &app.Board{Mode: req.Mode, Today: today, Columns: b.columns()}
}

type boardBuilder struct {
	tasks  domain.TaskMap
	req    app.BoardRequest
	today  domain.DateKey
	engine *recurrence.Engine
	seen   map[string]bool
	tops   []placed
}

func (b *boardBuilder) isTop(t *domain.Task) bool {
	if t.ParentID == "" {
		return true
	}
	parent, ok := b.tasks[t.ParentID]
	return !ok || parent == nil || parent.IsRecurring()
}

func (b *boardBuilder) hidden(t *domain.Task) bool {
	if b.req.ProjectID != "" && t.ProjectID != b.req.ProjectID {
		return true
	}
	return b.req.HideCompleted && t.Completed
}

func (b *boardBuilder) addTop(t *domain.Task) {
	if b.seen[t.ID] {
		return
	}
	b.seen[t.ID] = true
	if t.IsRecurring() {
		for _, inst := range b.engine.MaterializeWithGuarantee(t, b.today) {
			view := inst.Task
			if b.hidden(&view) {
				continue
			}
			card := &app.Card{Task: &view, InstanceOf: inst.OriginalID, DateKey: inst.DateKey}
			b.tops = append(b.tops, placed{card: card, lane: status.Resolve(&view, b.today), group: view.CustomGroupID})
		}
		return
	}
	if b.hidden(t) {
		for _, d := range graph.Descendants(t.ID, b.tasks) {
			b.seen[d] = true
		}
		return
	}
	card := b.card(t)
	b.tops = append(b.tops, placed{card: card, lane: status.Resolve(t, b.today), group: t.CustomGroupID})
}

func (b *boardBuilder) card(t *domain.Task) *app.Card {
	card := &app.Card{Task: t}
	for _, child := range b.tasks.Children(t.ID) {
		if b.seen[child.ID] {
			continue
		}
		b.seen[child.ID] = true
		if b.req.HideCompleted && child.Completed {
			continue
		}
		card.Children = append(card.Children, b.card(child))
	}
	if len(card.Children) > 0 {
		card.Metrics, _ = graph.RollUp(t.ID, b.tasks)
	}
	return card
}

func (b *boardBuilder) columns() []app.Column {
	switch b.req.Mode {
	case domain.ModeList:
		cards := make([]*app.Card, 0, len(b.tops))
		for _, p := range b.tops {
			cards = append(cards, p.card)
		}
		return []app.Column{{Cards: orderCards(cards, domain.ModeList, "")}}
	case domain.ModeGroup:
		byGroup := map[string][]placed{}
		for _, p := range b.tops {
			byGroup[p.group] = append(byGroup[p.group], p)
		}
		groups := make([]string, 0, len(byGroup))
		for g := range byGroup {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		var cols []app.Column
		for _, g := range groups {
			cols = append(cols, laneColumns(byGroup[g], g, domain.ModeGroup)...)
		}
		return cols
	default:
		return laneColumns(b.tops, "", domain.ModeStatus)
	}
}

func laneColumns(items []placed, group string, mode domain.BoardMode) []app.Column {
	cols := make([]app.Column, 0, len(domain.Lanes))
	for _, lane := range domain.Lanes {
		var cards []*app.Card
		for _, p := range items {
			if p.lane == lane {
				cards = append(cards, p.card)
			}
		}
		cols = append(cols, app.Column{Group: group, Lane: lane, Cards: orderCards(cards, mode, lane)})
	}
	return cols
}

// orderCards splits a column into ordering scopes, orders each scope and
// concatenates them by project, then priority high to low.
func orderCards(cards []*app.Card, mode domain.BoardMode, lane domain.Lane) []*app.Card {
	byTask := make(map[*domain.Task]*app.Card, len(cards))
	scopes := map[ordering.Scope][]*domain.Task{}
	for _, c := range cards {
		byTask[c.Task] = c
		sc := ordering.ScopeOf(c.Task, mode, lane)
		scopes[sc] = append(scopes[sc], c.Task)
	}
	keys := make([]ordering.Scope, 0, len(scopes))
	for sc := range scopes {
		keys = append(keys, sc)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.String() < b.String()
	})
	out := make([]*app.Card, 0, len(cards))
	for _, sc := range keys {
		list := scopes[sc]
		ordering.Order(list)
		for _, t := range list {
			out = append(out, byTask[t])
		}
	}
	return out
}
