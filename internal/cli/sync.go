package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Flush queued writes to the workspace",
		Long:          "Replay the offline write queue immediately instead of waiting for the next scheduled flush.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			session, err := OpenSession(opts)
			if err != nil {
				return err
			}
			defer session.Close()

			before, err := session.Engine.PendingWrites(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "reading write queue", err)
			}
			session.Engine.Flush(cmd.Context())
			after, err := session.Engine.PendingWrites(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "reading write queue", err)
			}

			if opts.Format == "json" {
				return formatter.JSON(map[string]any{
					"online":  session.Engine.Online(),
					"flushed": before - after,
					"pending": after,
				})
			}
			if !session.Engine.Online() {
				fmt.Fprintf(cmd.OutOrStdout(), "Offline; %d write(s) still queued\n", after)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flushed %d write(s), %d pending\n", before-after, after)
			return nil
		},
	}
	return cmd
}
