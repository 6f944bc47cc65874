package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/recur"
)

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var (
		from    string
		to      string
		records bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List occurrences in a date window",
		Long: "Materialize every occurrence inside the window, recurring rules expanded and\n" +
			"overrides applied. With --records the raw record list is shown instead.",
		Example: `  dueline list
  dueline list --from 2025-01-01 --to 2025-06-30
  dueline list --records`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			now := time.Now()
			windowFrom := ledger.DateOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
			windowTo := windowFrom.AddDate(0, 3, 0).AddDate(0, 0, -1)
			var err error
			if cmd.Flags().Changed("from") {
				windowFrom, err = parseCivilDate(from)
				if err != nil {
					return WrapExitError(ExitCommandError, "parsing from date", err)
				}
			}
			if cmd.Flags().Changed("to") {
				windowTo, err = parseCivilDate(to)
				if err != nil {
					return WrapExitError(ExitCommandError, "parsing to date", err)
				}
			}
			if windowTo.Before(windowFrom) {
				return WrapExitError(ExitCommandError, "parsing window",
					fmt.Errorf("window end %s precedes start %s", windowTo.Format(time.DateOnly), windowFrom.Format(time.DateOnly)))
			}

			session, err := OpenSession(opts)
			if err != nil {
				return err
			}
			defer session.Close()

			<-session.Engine.HydrationDone()
			formatter.VerboseLog("hydrated: %v", session.Engine.Hydrated())

			if records {
				return listRecords(cmd, formatter, session)
			}
			return listOccurrences(cmd, formatter, session, windowFrom, windowTo)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start YYYY-MM-DD (default first of this month)")
	cmd.Flags().StringVar(&to, "to", "", "window end YYYY-MM-DD, inclusive (default three months out)")
	cmd.Flags().BoolVar(&records, "records", false, "list raw records instead of occurrences")

	return cmd
}

func listOccurrences(cmd *cobra.Command, formatter *OutputFormatter, session *Session, from, to time.Time) error {
	occurrences := recur.Materialize(session.Engine.Transactions(), session.Engine.Instruments(), from, to)

	if formatter.Format == "json" {
		payload := make([]OccurrencePayload, 0, len(occurrences))
		for _, occ := range occurrences {
			payload = append(payload, occurrenceView(occ, session.Currency))
		}
		return formatter.JSON(payload)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSETTLES\tID\tDESCRIPTION\tAMOUNT\tINSTRUMENT")
	var total int64
	for _, occ := range occurrences {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			occ.Date.Format(time.DateOnly),
			occ.Settlement.Format(time.DateOnly),
			occ.Record.ID,
			occ.Record.Description,
			formatAmount(occ.Record.Amount, session.Currency),
			occ.Record.Instrument)
		total += occ.Record.Amount
	}
	fmt.Fprintf(w, "\t\t\t%d occurrence(s)\t%s\t\n", len(occurrences), formatAmount(total, session.Currency))
	return w.Flush()
}

func listRecords(cmd *cobra.Command, formatter *OutputFormatter, session *Session) error {
	list := session.Engine.Transactions()

	if formatter.Format == "json" {
		payload := make([]RecordPayload, 0, len(list))
		for _, o := range list {
			payload = append(payload, recordView(o, session.Currency))
		}
		return formatter.JSON(payload)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDESCRIPTION\tAMOUNT\tDATE\tRULE\tINSTRUMENT\tPARENT")
	for _, o := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID,
			o.Description,
			formatAmount(o.Amount, session.Currency),
			o.OperationDate.Format(time.DateOnly),
			o.Rule,
			o.Instrument,
			o.ParentID)
	}
	return w.Flush()
}
