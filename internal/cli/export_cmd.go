package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/tasklane/internal/cli/formatter"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored task map as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.Store.ExportJSON(cmd.Context())
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a task map written by export",
		Long: `Merge the tasks in FILE into the store. Records with a known id are
overwritten. With --replace, stored tasks missing from FILE are removed.
Every record is checked before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Imports.ImportFile(cmd.Context(), args[0], replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d added, %d updated, %d unchanged, %d removed\n",
				args[0], s.Added, s.Updated, s.Unchanged, s.Removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Remove stored tasks missing from FILE")
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count stored tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Store.Stats(cmd.Context(), app.today())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"tasks", fmt.Sprint(s.Total)},
				{"completed", fmt.Sprint(s.Completed)},
				{"overdue", fmt.Sprint(s.Overdue)},
				{"revision", fmt.Sprint(s.Revision)},
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"STAT", "VALUE"}, rows))
			return nil
		},
	}
}
