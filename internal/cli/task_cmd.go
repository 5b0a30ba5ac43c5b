package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/cli/formatter"
	"github.com/alexanderramin/tasklane/internal/domain"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks and subtasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskShowCmd(app),
		newTaskEditCmd(app),
		newTaskDoneCmd(app),
		newTaskUndoCmd(app),
		newTaskRemoveCmd(app),
		newTaskParentCmd(app),
		newTaskUnparentCmd(app),
		newTaskGroupCmd(app),
		newTaskPasteCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var f taskFlags
	var parent, group string

	cmd := &cobra.Command{
		Use:   "add [TITLE...]",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if f.title == "" {
				f.title = strings.Join(args, " ")
			}
			t := &domain.Task{CustomGroupID: group}
			if err := f.apply(t); err != nil {
				return err
			}
			parentID, err := resolveOptionalTaskID(ctx, app, parent)
			if err != nil {
				return err
			}
			t.ParentID = parentID

			if err := app.Tasks.Create(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s)\n", t.Title, t.ID)
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task ID")
	cmd.Flags().StringVar(&group, "group", "", "Custom group ID")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var project, parent string
	var top, all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parentID, err := resolveOptionalTaskID(ctx, app, parent)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.List(ctx, appTaskFilter(project, parentID, top, all))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Only tasks of this project")
	cmd.Flags().StringVar(&parent, "parent", "", "Only subtasks of this task")
	cmd.Flags().BoolVar(&top, "top", false, "Only top-level tasks")
	cmd.Flags().BoolVar(&all, "all", false, "Include completed tasks")

	return cmd
}

func appTaskFilter(project, parent string, top, all bool) app.TaskFilter {
	return app.TaskFilter{
		ProjectID:        project,
		ParentID:         parent,
		TopLevelOnly:     top,
		IncludeCompleted: all,
	}
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a task with its subtasks and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			metrics, err := app.Tasks.RollUp(ctx, t.ID)
			if err != nil {
				return err
			}
			children, err := app.Tasks.List(ctx, appTaskFilter("", t.ID, false, true))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskDetail(t, children, metrics, app.today()))
			return nil
		},
	}
}

func newTaskEditCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change task fields; on an occurrence only that occurrence changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			t, err := app.Tasks.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", t.Title, t.ID)
			return nil
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Complete a task and all of its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			changed, err := app.Tasks.Complete(ctx, id)
			if err != nil {
				return err
			}
			if len(changed) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already done\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %s (%d record(s) updated)\n", id, len(changed))
			return nil
		},
	}
}

func newTaskUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo ID",
		Short: "Reopen a completed task; subtasks stay as they are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Tasks.Reopen(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s\n", id)
			return nil
		},
	}
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a task and its whole subtree",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			removed, err := app.Tasks.Delete(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s)\n", len(removed))
			return nil
		},
	}
}

func newTaskParentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "parent CHILD PARENT",
		Short: "Make CHILD a subtask of PARENT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			child, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			parent, err := resolveTaskID(ctx, app, args[1])
			if err != nil {
				return err
			}
			if err := app.Tasks.SetParent(ctx, child, parent); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s under %s\n", child, parent)
			return nil
		},
	}
}

func newTaskUnparentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unparent ID",
		Short: "Make a subtask top level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Tasks.UnsetParent(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now top level\n", id)
			return nil
		},
	}
}

func newTaskGroupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "group ID [GROUP]",
		Short: "Set the custom group of a task and its subtree; no GROUP clears it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			group := ""
			if len(args) == 2 {
				group = args[1]
			}
			changed, err := app.Tasks.SetGroup(ctx, id, group)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Regrouped %d record(s)\n", len(changed))
			return nil
		},
	}
}

func newTaskPasteCmd(app *App) *cobra.Command {
	var file, project, parent, group, kanban, date string

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Create a task tree from an indented list read from stdin or --file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text, err := readPasteInput(cmd, file)
			if err != nil {
				return err
			}
			parentID, err := resolveOptionalTaskID(ctx, app, parent)
			if err != nil {
				return err
			}
			defaultDate, err := parseOptionalDate(date)
			if err != nil {
				return err
			}
			res, err := app.Tasks.Paste(ctx, pasteRequest(text, project, parentID, group, kanban, defaultDate))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %d task(s)\n", len(res.Created))
			for _, id := range res.Unbound {
				fmt.Fprintf(out, "%s block %s not found, left unbound\n", formatter.StyleYellow.Render("!"), id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the list from a file instead of stdin")
	cmd.Flags().StringVar(&project, "project", "", "Project ID for every created task")
	cmd.Flags().StringVar(&parent, "parent", "", "Attach the tree under this task")
	cmd.Flags().StringVar(&group, "group", "", "Custom group ID for every created task")
	cmd.Flags().StringVar(&kanban, "kanban", "", "Kanban status (todo|doing)")
	cmd.Flags().StringVar(&date, "date", "", "Date for top-level tasks outside a project")

	return cmd
}

func pasteRequest(text, project, parent, group, kanban string, date domain.DateKey) app.PasteRequest {
	return app.PasteRequest{
		Text:         text,
		ProjectID:    project,
		ParentID:     parent,
		GroupID:      group,
		KanbanStatus: domain.KanbanStatus(kanban),
		DefaultDate:  date,
	}
}

func readPasteInput(cmd *cobra.Command, file string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), nil
}
