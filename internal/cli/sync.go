package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"focusflow/internal/storage"
)

func newSyncCmd(opts *options) *cobra.Command {
	var pull bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push local tasks to the shared database",
		Long: `Push the local collection to the shared database.

A push is rejected when another device changed the same tasks since this
one last synced. Use --pull to replace local tasks with the remote copy.`,
		Args: cobra.NoArgs,
		RunE: withWorkspace(opts, func(cmd *cobra.Command, args []string, w *workspace) error {
			if !w.remote {
				fmt.Fprintln(opts.out, mutedStyle.Render("Sync is off: set sync.user_id (or FOCUSFLOW_USER_ID) and the db settings."))
				return nil
			}

			var err error
			if pull {
				err = w.sync.Pull(cmd.Context())
			} else {
				err = w.sync.Push(cmd.Context())
			}
			printSyncState(opts, w.sync.Status())
			return err
		}),
	}
	cmd.Flags().BoolVar(&pull, "pull", false, "Discard local changes and load the remote copy")
	return cmd
}

func printSyncState(opts *options, st storage.SyncState) {
	status := string(st.Status)
	switch st.Status {
	case storage.StatusSynced:
		status = successStyle.Render(status)
	case storage.StatusConflict, storage.StatusLocalOnly:
		status = errorStyle.Render(status)
	default:
		status = pendingStyle.Render(status)
	}
	fmt.Fprintf(opts.out, "Sync: %s\n", status)
	for _, id := range st.Conflicts {
		fmt.Fprintf(opts.out, "  changed remotely: %s\n", id)
	}
}
