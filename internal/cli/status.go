package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dueline/internal/sync"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short:         "Show workspace and replication status",
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

			pending, err := session.Engine.PendingWrites(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "reading write queue", err)
			}
			balance, openingDate, configured := session.Engine.Opening()

			if opts.Format == "json" {
				states := make(map[string]string, len(sync.Categories))
				for _, cat := range sync.Categories {
					states[string(cat)] = session.Engine.CategoryState(cat).String()
				}
				payload := map[string]any{
					"workspace":  session.Cfg.Workspace,
					"profile":    session.Cfg.Profile,
					"online":     session.Engine.Online(),
					"hydrated":   session.Engine.Hydrated(),
					"pending":    pending,
					"records":    len(session.Engine.Transactions()),
					"categories": states,
				}
				if configured {
					payload["opening_balance"] = balance
					payload["opening_date"] = openingDate.Format(time.DateOnly)
				}
				return formatter.JSON(payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workspace: %s\n", session.Cfg.Workspace)
			if session.Cfg.Profile != "" {
				fmt.Fprintf(out, "Profile:   %s\n", session.Cfg.Profile)
			}
			fmt.Fprintf(out, "Online:    %v\n", session.Engine.Online())
			fmt.Fprintf(out, "Hydrated:  %v\n", session.Engine.Hydrated())
			fmt.Fprintf(out, "Pending:   %d queued write(s)\n", pending)
			fmt.Fprintf(out, "Records:   %d\n", len(session.Engine.Transactions()))
			if configured {
				fmt.Fprintf(out, "Opening:   %s as of %s\n",
					formatAmount(balance, session.Currency), openingDate.Format(time.DateOnly))
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tSTATE")
			for _, cat := range sync.Categories {
				fmt.Fprintf(w, "%s\t%s\n", cat, session.Engine.CategoryState(cat))
			}
			return w.Flush()
		},
	}
	return cmd
}
