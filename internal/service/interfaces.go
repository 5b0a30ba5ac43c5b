package service

import (
	"context"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
	"github.com/alexanderramin/tasklane/internal/importer"
)

// TaskService covers single-task mutations and hierarchy edits. Ids of repeat
// occurrences are accepted wherever an occurrence can meaningfully change.
type TaskService interface {
	Create(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter app.TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, id string, patch app.TaskPatch) (*domain.Task, error)
	Complete(ctx context.Context, id string) ([]string, error)
	Reopen(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) ([]string, error)
	SetParent(ctx context.Context, childID, parentID string) error
	UnsetParent(ctx context.Context, childID string) error
	SetGroup(ctx context.Context, id, group string) ([]string, error)
	RollUp(ctx context.Context, id string) (graph.Metrics, error)
	Snapshot(ctx context.Context) (domain.TaskMap, error)
	Paste(ctx context.Context, req app.PasteRequest) (*app.PasteResult, error)
}

type RepeatService interface {
	SetRule(ctx context.Context, id string, cfg domain.RepeatConfig) error
	ClearRule(ctx context.Context, id string) error
	Instances(ctx context.Context, id string) ([]domain.Instance, error)
	InstancesBetween(ctx context.Context, id string, from, to domain.DateKey) ([]domain.Instance, error)
	CompleteInstance(ctx context.Context, instanceID string) error
	UncompleteInstance(ctx context.Context, instanceID string) error
	SkipInstance(ctx context.Context, instanceID string) error
	EditInstance(ctx context.Context, instanceID string, mod domain.InstanceModification) error
	ResetInstance(ctx context.Context, instanceID string) error
}

// ImportService loads snapshots written by export.
type ImportService interface {
	Import(ctx context.Context, snap importer.Snapshot, replace bool) (*importer.Summary, error)
	ImportFile(ctx context.Context, path string, replace bool) (*importer.Summary, error)
}

type BoardService interface {
	LoadBoard(ctx context.Context, req app.BoardRequest) (*app.Board, error)
}

type DropService interface {
	Begin(ctx context.Context, draggedID, sourceRef string) error
	Cancel()
	Preview(ctx context.Context, req app.DropRequest) (*app.DropResult, error)
	Drop(ctx context.Context, req app.DropRequest) (*app.DropResult, error)
}

var (
	_ app.CreateTaskUseCase   = TaskService(nil)
	_ app.CompleteTaskUseCase = TaskService(nil)
	_ app.PasteUseCase        = TaskService(nil)
	_ app.RollUpUseCase       = TaskService(nil)
	_ app.LoadBoardUseCase    = BoardService(nil)
	_ app.DropUseCase         = DropService(nil)
)

// BlockInfo describes a note block a task can be bound to.
type BlockInfo struct {
	ID      string
	Content string
}

// BlockResolver looks up note blocks. A nil *BlockInfo with a nil error means
// the block does not exist.
type BlockResolver interface {
	ResolveBlock(ctx context.Context, id string) (*BlockInfo, error)
}
