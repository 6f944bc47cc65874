package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dueline/internal/mutate"
)

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	var (
		scope string
		date  string
	)

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an obligation record",
		Long: "Delete a record, or occurrences of a recurring record. A master with past occurrences is\n" +
			"retired rather than erased so history stays reproducible.",
		Example: `  dueline rm r-12
  dueline rm r-3 --scope single --date 2025-02-28
  dueline rm r-3 --scope all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			sc, err := mutate.ParseScope(scope)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing scope", err)
			}
			if (sc == mutate.ScopeSingle || sc == mutate.ScopeFuture) && !cmd.Flags().Changed("date") {
				return WrapExitError(ExitCommandError, "parsing flags",
					fmt.Errorf("scope %q requires --date to pick the occurrence", scope))
			}

			var targetDate time.Time
			if cmd.Flags().Changed("date") {
				targetDate, err = parseCivilDate(date)
				if err != nil {
					return WrapExitError(ExitCommandError, "parsing date", err)
				}
			}

			session, err := OpenSession(opts)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Engine.DeleteOccurrence(cmd.Context(), sc, id, targetDate); err != nil {
				return WrapExitError(ExitFailure, "deleting record", err)
			}

			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			if opts.Format == "json" {
				return formatter.JSON(map[string]string{"id": id, "scope": sc.String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (scope %s)\n", id, sc)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "none", "delete scope (none|single|future|all)")
	cmd.Flags().StringVar(&date, "date", "", "occurrence date YYYY-MM-DD (single/future scope)")

	return cmd
}
