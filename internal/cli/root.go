package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// options are the global flags plus the seams tests replace.
type options struct {
	dataDir string
	backend string

	now func() time.Time
	out io.Writer
}

// NewRootCmd builds the command tree. Each call returns a fresh tree so
// flag state never leaks between runs.
func NewRootCmd(out, errOut io.Writer, now func() time.Time) *cobra.Command {
	opts := &options{now: now, out: out}

	root := &cobra.Command{
		Use:   "focusflow",
		Short: "FocusFlow - tasks, calendar and stats from the terminal",
		Long: `FocusFlow keeps a local task list with categories, priorities and dates.

Changes are saved locally right away. When sync.user_id is configured they
are also pushed to the shared database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory for local data (default from config)")
	root.PersistentFlags().StringVar(&opts.backend, "store", "", "Local store backend: file or sqlite")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newDoneCmd(opts),
		newEditCmd(opts),
		newMoveCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newCalendarCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newSyncCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// Execute runs the CLI against the process's stdio and clock.
func Execute(version string) error {
	root := NewRootCmd(os.Stdout, os.Stderr, time.Now)
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+err.Error()))
		return err
	}
	return nil
}
