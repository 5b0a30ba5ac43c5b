package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/cli/formatter"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/rollover"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board and move cards",
	}

	cmd.AddCommand(
		newBoardShowCmd(app),
		newBoardWatchCmd(app),
		newBoardDropCmd(app, false),
		newBoardDropCmd(app, true),
	)

	return cmd
}

// boardFlags select which board is shown.
type boardFlags struct {
	mode     string
	project  string
	today    string
	hideDone bool
}

func (f *boardFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.mode, "mode", string(domain.ModeStatus), "Board mode (status|group|list)")
	fs.StringVar(&f.project, "project", "", "Only cards of this project")
	fs.StringVar(&f.today, "today", "", "Render as if today were this date (YYYY-MM-DD)")
	fs.BoolVar(&f.hideDone, "hide-done", false, "Leave completed cards out")
}

func (f *boardFlags) request() (app.BoardRequest, error) {
	mode, err := parseMode(f.mode)
	if err != nil {
		return app.BoardRequest{}, err
	}
	today, err := parseTodayFlag(f.today)
	if err != nil {
		return app.BoardRequest{}, err
	}
	req := app.NewBoardRequest(mode)
	req.ProjectID = f.project
	req.Today = today
	req.HideCompleted = f.hideDone
	return req, nil
}

func newBoardShowCmd(app *App) *cobra.Command {
	var f boardFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the board once",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}
			return renderBoard(cmd.Context(), app, req, cmd.OutOrStdout(), false)
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func renderBoard(ctx context.Context, app *App, req app.BoardRequest, w io.Writer, clear bool) error {
	board, err := app.Board.LoadBoard(ctx, req)
	if err != nil {
		return err
	}
	if clear {
		fmt.Fprint(w, "\033[H\033[2J")
	}
	fmt.Fprint(w, formatter.FormatBoard(board))
	return nil
}

func newBoardWatchCmd(app *App) *cobra.Command {
	var f boardFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the board on screen, redrawing on writes and at the day change",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchBoard(ctx, app, req, cmd.OutOrStdout())
		},
	}

	f.register(cmd.Flags())
	return cmd
}

// watchBoard draws the board, then redraws through the reload queue until
// ctx ends. The day change and writes by other processes request reloads.
func watchBoard(ctx context.Context, app *App, req app.BoardRequest, w io.Writer) error {
	clear := app.interactive()
	draw := func(ctx context.Context) error {
		return renderBoard(ctx, app, req, w, clear)
	}
	if err := draw(ctx); err != nil {
		return err
	}
	if app.Refresh == nil || app.Reloads == nil {
		<-ctx.Done()
		return nil
	}
	app.Refresh.Set(draw)
	defer app.Refresh.Set(nil)

	request := func() { app.Reloads.Request() }
	sched := rollover.New(app.Location, app.Logger)
	if _, err := sched.ScheduleDaily(app.Watch.RolloverAt, request); err != nil {
		return err
	}
	if app.Store != nil {
		if _, err := sched.WatchRevision(app.Store, app.Watch.PollInterval, request); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	<-ctx.Done()
	app.Reloads.Stop()
	return nil
}

// dropFlags describe where the dragged card was released.
type dropFlags struct {
	onto   string
	lane   string
	group  string
	offset float64
	mode   string
	today  string
	source string
}

func newBoardDropCmd(app *App, preview bool) *cobra.Command {
	var f dropFlags

	use, short := "drop DRAGGED", "Drop a card onto another card or into a column"
	if preview {
		use, short = "preview DRAGGED", "Show what a drop would do without applying it"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: `Drop a card. With --onto the card lands relative to the target card:
--offset is the pointer height inside the target, 0 at its top edge and 1 at
its bottom edge. The top and bottom fifths place the card before or after
the target; the middle nests it. Without --onto the card lands in the
column named by --lane and, on group boards, --group.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dragged, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			target, err := resolveOptionalTaskID(ctx, app, f.onto)
			if err != nil {
				return err
			}
			req, err := f.request(dragged, target)
			if err != nil {
				return err
			}
			res, err := runDrop(ctx, app, req, preview)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDropResult(res, preview))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.onto, "onto", "", "Target card ID")
	fs.StringVar(&f.lane, "lane", "", "Target lane (doing|short_term|long_term|done)")
	fs.StringVar(&f.group, "group", "", "Target group on group boards")
	fs.Float64Var(&f.offset, "offset", 0.5, "Pointer height inside the target card (0..1)")
	fs.StringVar(&f.mode, "mode", string(domain.ModeStatus), "Board mode (status|group|list)")
	fs.StringVar(&f.today, "today", "", "Classify as if today were this date (YYYY-MM-DD)")
	fs.StringVar(&f.source, "from", "", "Reference of the column the drag started in")

	return cmd
}

func (f *dropFlags) request(dragged, target string) (app.DropRequest, error) {
	mode, err := parseMode(f.mode)
	if err != nil {
		return app.DropRequest{}, err
	}
	today, err := parseTodayFlag(f.today)
	if err != nil {
		return app.DropRequest{}, err
	}
	if target == "" && f.lane == "" && mode != domain.ModeList {
		return app.DropRequest{}, fmt.Errorf("either --onto or --lane is required")
	}
	return app.DropRequest{
		DraggedID: dragged,
		SourceRef: f.source,
		TargetID:  target,
		Group:     f.group,
		Lane:      domain.Lane(f.lane),
		Offset:    f.offset,
		Mode:      mode,
		Today:     today,
	}, nil
}

func runDrop(ctx context.Context, a *App, req app.DropRequest, preview bool) (*app.DropResult, error) {
	if preview {
		return a.Drops.Preview(ctx, req)
	}
	return a.Drops.Drop(ctx, req)
}
