package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"focusflow/internal/tasks"
)

func newExportCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks to a JSON file",
		Args:  cobra.NoArgs,
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			b, err := tasks.Export(w.store.Snapshot())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if out == "-" {
				_, err := opts.out.Write(append(b, '\n'))
				return err
			}
			if out == "" {
				out = tasks.ExportFileName(tasks.DateOf(opts.now()))
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			ok(opts.out, fmt.Sprintf("Exported %d task(s) to %s", w.store.Len(), out))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default focusflow-tasks-<date>.json)")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append tasks from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			records, err := tasks.ParseImport(b)
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprintf(opts.out, "%s would append %d task(s) to your %d. Re-run with --yes to import.\n",
					args[0], len(records), w.store.Len())
				return nil
			}
			added := w.store.Append(records)
			ok(opts.out, fmt.Sprintf("Imported %d task(s)", len(added)))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the import")
	return cmd
}
