package app

import (
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
)

type BoardRequest struct {
	Mode      domain.BoardMode
	ProjectID string
	// Today overrides the clock for lane derivation and recurrence windows.
	Today         *domain.DateKey
	HideCompleted bool
}

func NewBoardRequest(mode domain.BoardMode) BoardRequest {
	if mode == "" {
		mode = domain.ModeStatus
	}
	return BoardRequest{Mode: mode}
}

// Card is one task or repeat occurrence on the board with its subtasks.
type Card struct {
	Task       *domain.Task
	InstanceOf string
	DateKey    domain.DateKey
	Children   []*Card
	Metrics    graph.Metrics
}

func (c *Card) IsInstance() bool { return c.InstanceOf != "" }

// Column is one board lane. Group is set on group boards only; list boards
// have a single column with neither set.
type Column struct {
	Group string
	Lane  domain.Lane
	Cards []*Card
}

// Title names the column for display.
func (c Column) Title() string {
	switch {
	case c.Group == "" && c.Lane == "":
		return "tasks"
	case c.Group == "":
		return string(c.Lane)
	default:
		return c.Group + " / " + string(c.Lane)
	}
}

type Board struct {
	Mode     domain.BoardMode
	Today    domain.DateKey
	Revision int64
	Columns  []Column
}

// Find returns the card with id, searching subtasks too.
func (b *Board) Find(id string) (*Card, bool) {
	for _, col := range b.Columns {
		if c, ok := findCard(col.Cards, id); ok {
			return c, true
		}
	}
	return nil, false
}

func findCard(cards []*Card, id string) (*Card, bool) {
	for _, c := range cards {
		if c.Task.ID == id {
			return c, true
		}
		if found, ok := findCard(c.Children, id); ok {
			return found, true
		}
	}
	return nil, false
}
