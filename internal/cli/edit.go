package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/mutate"
)

// NewEditCommand creates the edit command.
func NewEditCommand(opts *RootOptions) *cobra.Command {
	var (
		scope        string
		date         string
		description  string
		amount       string
		newDate      string
		rule         string
		instrument   string
		installments int
		planned      bool
		tag          string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an obligation record",
		Long: "Edit a record, or one occurrence of a recurring record. The scope flag controls the reach:\n" +
			"single edits one occurrence, future splits the rule at the date, all rewrites the master.",
		Example: `  dueline edit r-12 --amount -1300
  dueline edit r-3 --scope single --date 2025-02-28 --amount -110
  dueline edit r-3 --scope future --date 2025-03-15 --amount -60`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			sc, err := mutate.ParseScope(scope)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing scope", err)
			}
			if sc != mutate.ScopeNone && sc != mutate.ScopeAll && !cmd.Flags().Changed("date") {
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

			var f mutate.Fields
			if cmd.Flags().Changed("description") {
				f.Description = mutate.String(description)
			}
			if cmd.Flags().Changed("amount") {
				minor, err := parseAmount(amount)
				if err != nil {
					return WrapExitError(ExitCommandError, "parsing amount", err)
				}
				f.Amount = mutate.Int64(minor)
			}
			if cmd.Flags().Changed("move-to") {
				moved, err := parseCivilDate(newDate)
				if err != nil {
					return WrapExitError(ExitCommandError, "parsing move-to date", err)
				}
				f.OperationDate = mutate.DateP(moved)
			}
			if cmd.Flags().Changed("rule") {
				f.Rule = mutate.RuleP(ledger.RuleCode(rule))
			}
			if cmd.Flags().Changed("instrument") {
				f.Instrument = mutate.String(instrument)
			}
			if cmd.Flags().Changed("installments") {
				f.Installments = mutate.Int(installments)
			}
			if cmd.Flags().Changed("planned") {
				f.Planned = mutate.Bool(planned)
			}
			if cmd.Flags().Changed("tag") {
				f.Tag = mutate.String(tag)
			}

			session, err := OpenSession(opts)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Engine.EditOccurrence(cmd.Context(), sc, id, targetDate, f); err != nil {
				return WrapExitError(ExitFailure, "editing record", err)
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
			fmt.Fprintf(cmd.OutOrStdout(), "Edited %s (scope %s)\n", id, sc)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "none", "edit scope (none|single|future|all)")
	cmd.Flags().StringVar(&date, "date", "", "occurrence date YYYY-MM-DD (single/future scope)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new signed decimal amount")
	cmd.Flags().StringVar(&newDate, "move-to", "", "move the occurrence to this date")
	cmd.Flags().StringVar(&rule, "rule", "", "new recurrence code (D|W|BW|M|Q|S|Y)")
	cmd.Flags().StringVar(&instrument, "instrument", "", "new settlement instrument")
	cmd.Flags().IntVar(&installments, "installments", 0, "new installment count")
	cmd.Flags().BoolVar(&planned, "planned", false, "planned state")
	cmd.Flags().StringVar(&tag, "tag", "", "new classification tag")

	return cmd
}
