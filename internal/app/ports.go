package app

import (
	"context"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
)

type CreateTaskUseCase interface {
	Create(ctx context.Context, t *domain.Task) error
}

type CompleteTaskUseCase interface {
	Complete(ctx context.Context, id string) ([]string, error)
	Reopen(ctx context.Context, id string) error
}

type PasteUseCase interface {
	Paste(ctx context.Context, req PasteRequest) (*PasteResult, error)
}

type RollUpUseCase interface {
	RollUp(ctx context.Context, id string) (graph.Metrics, error)
}

type LoadBoardUseCase interface {
	LoadBoard(ctx context.Context, req BoardRequest) (*Board, error)
}

type DropUseCase interface {
	Preview(ctx context.Context, req DropRequest) (*DropResult, error)
	Drop(ctx context.Context, req DropRequest) (*DropResult, error)
}
