package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/tasklane/internal/cli/formatter"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/service"
)

func newRepeatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repeat",
		Short: "Manage repeat rules and their occurrences",
	}

	cmd.AddCommand(
		newRepeatSetCmd(app),
		newRepeatClearCmd(app),
		newRepeatListCmd(app),
		newRepeatOccurrenceCmd(app, "done", "Complete one occurrence", service.RepeatService.CompleteInstance),
		newRepeatOccurrenceCmd(app, "undo", "Reopen one occurrence", service.RepeatService.UncompleteInstance),
		newRepeatOccurrenceCmd(app, "skip", "Remove one occurrence for good", service.RepeatService.SkipInstance),
		newRepeatOccurrenceCmd(app, "reset", "Drop the edits made to one occurrence", service.RepeatService.ResetInstance),
		newRepeatEditCmd(app),
	)

	return cmd
}

// ruleFlags mirror the fields of a repeat rule.
type ruleFlags struct {
	kind       string
	interval   int
	weekdays   string
	monthdays  string
	months     string
	lunarMonth int
	lunarDay   int
	until      string
	count      int
}

func (f *ruleFlags) config() (domain.RepeatConfig, error) {
	cfg := domain.RepeatConfig{
		Type:       domain.RepeatType(f.kind),
		Interval:   f.interval,
		LunarMonth: f.lunarMonth,
		LunarDay:   f.lunarDay,
	}
	var err error
	if cfg.WeekDays, err = parseWeekdays(f.weekdays); err != nil {
		return cfg, err
	}
	if cfg.MonthDays, err = parseIntList(f.monthdays); err != nil {
		return cfg, err
	}
	if cfg.Months, err = parseIntList(f.months); err != nil {
		return cfg, err
	}
	switch {
	case f.until != "" && f.count > 0:
		return cfg, fmt.Errorf("--until and --count are mutually exclusive")
	case f.until != "":
		d, err := domain.ParseDateKey(f.until)
		if err != nil {
			return cfg, err
		}
		cfg.EndType, cfg.EndDate = domain.EndDate, d
	case f.count > 0:
		cfg.EndType, cfg.EndCount = domain.EndCount, f.count
	}
	return cfg, nil
}

func newRepeatSetCmd(app *App) *cobra.Command {
	var f ruleFlags

	cmd := &cobra.Command{
		Use:   "set ID",
		Short: "Make a task repeat",
		Long: `Make a task repeat. Solar rules (daily, weekly, monthly, yearly) start at
the task's date; lunar rules (lunar-monthly, lunar-yearly) use --lunar-day
and, for yearly rules, --lunar-month.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			cfg, err := f.config()
			if err != nil {
				return err
			}
			if err := app.Repeats.SetRule(ctx, id, cfg); err != nil {
				return err
			}
			t, err := app.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s repeats %s\n", t.Title, formatter.DescribeRule(t.Repeat))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.kind, "type", "", "daily|weekly|monthly|yearly|lunar-monthly|lunar-yearly")
	cmd.Flags().IntVar(&f.interval, "every", 1, "Interval between occurrences")
	cmd.Flags().StringVar(&f.weekdays, "weekdays", "", "Weekdays for weekly rules, e.g. mon,wed or 1,3")
	cmd.Flags().StringVar(&f.monthdays, "monthdays", "", "Days of month, e.g. 1,15")
	cmd.Flags().StringVar(&f.months, "months", "", "Months for yearly rules, e.g. 3,9")
	cmd.Flags().IntVar(&f.lunarMonth, "lunar-month", 0, "Lunar month (1-12)")
	cmd.Flags().IntVar(&f.lunarDay, "lunar-day", 0, "Lunar day (1-30)")
	cmd.Flags().StringVar(&f.until, "until", "", "Last possible date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.count, "count", 0, "Number of occurrences counted from the first")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newRepeatClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear ID",
		Short: "Stop a task repeating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Repeats.ClearRule(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s no longer repeats\n", id)
			return nil
		},
	}
}

func newRepeatListCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list ID",
		Short: "List the occurrences shown on the board, or every one in --from..--to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			var instances []domain.Instance
			if from == "" && to == "" {
				instances, err = app.Repeats.Instances(ctx, id)
			} else {
				instances, err = app.Repeats.InstancesBetween(ctx, id, domain.DateKey(from), domain.DateKey(to))
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatInstances(instances, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Window end (YYYY-MM-DD)")

	return cmd
}

func newRepeatOccurrenceCmd(app *App, use, short string, op func(service.RepeatService, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " OCCURRENCE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := op(app.Repeats, ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", use, id)
			return nil
		},
	}
}

func newRepeatEditCmd(app *App) *cobra.Command {
	var f taskFlags
	var group string

	cmd := &cobra.Command{
		Use:   "edit OCCURRENCE",
		Short: "Override fields of one occurrence",
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
			mod, ok := patch.Modification()
			if !ok {
				return fmt.Errorf("title and block cannot differ per occurrence")
			}
			if cmd.Flags().Changed("group") {
				mod.CustomGroupID = &group
			}
			if err := app.Repeats.EditInstance(ctx, id, mod); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated occurrence %s\n", id)
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringVar(&group, "group", "", "Custom group ID")
	return cmd
}
