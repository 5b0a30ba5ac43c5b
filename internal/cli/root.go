package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/reload"
	"github.com/alexanderramin/tasklane/internal/repository"
	"github.com/alexanderramin/tasklane/internal/service"
)

// Store is the part of the task store the CLI reads directly.
type Store interface {
	Revision(ctx context.Context) (int64, error)
	ExportJSON(ctx context.Context) ([]byte, error)
	Stats(ctx context.Context, today domain.DateKey) (repository.StoreStats, error)
}

// WatchOptions configures board watch.
type WatchOptions struct {
	PollInterval time.Duration
	RolloverAt   string
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Tasks   service.TaskService
	Repeats service.RepeatService
	Board   service.BoardService
	Drops   service.DropService
	Imports service.ImportService
	Store   Store

	// Reloads coalesces reload requests from services and watchers;
	// Refresh is what a reload does.
	Reloads *reload.Queue
	Refresh *Refresher

	Watch    WatchOptions
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger

	IsInteractive func() bool
}

func (a *App) today() domain.DateKey {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	return domain.NewDateKey(now().In(loc))
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "tasklane" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tasklane",
		Short:         "Kanban task board with subtasks and repeating tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Mutations leave a reload scheduled; run it before the store closes.
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.Reloads == nil {
				return nil
			}
			return app.Reloads.Flush(context.Background())
		},
	}

	root.AddCommand(
		newTaskCmd(app),
		newRepeatCmd(app),
		newBoardCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newStatsCmd(app),
	)

	return root
}
