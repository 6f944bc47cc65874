package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/mutate"
)

// NewAddCommand creates the add command.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	var (
		description  string
		amount       string
		date         string
		rule         string
		instrument   string
		installments int
		planned      bool
		tag          string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an obligation record",
		Long:  "Add a one-off or recurring obligation. Amounts are decimal strings; negative means an outflow.",
		Example: `  dueline add -d "Rent" -a -1200 --date 2025-01-31 --rule M
  dueline add -d "Groceries" -a -45.80 --date 2025-03-02 --tag food
  dueline add -d "Laptop" -a -3600 --date 2025-02-15 --instrument visa --installments 12`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			minor, err := parseAmount(amount)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing amount", err)
			}
			opDate, err := parseCivilDate(date)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing date", err)
			}

			f := mutate.Fields{
				Description:   mutate.String(description),
				Amount:        mutate.Int64(minor),
				OperationDate: mutate.DateP(opDate),
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

			o, err := session.Engine.AddOccurrence(cmd.Context(), f)
			if err != nil {
				return WrapExitError(ExitFailure, "adding record", err)
			}

			formatter.VerboseLog("record %s created", o.ID)
			if opts.Format == "json" {
				return formatter.JSON(recordView(o, session.Currency))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s on %s\n",
				o.ID, o.Description,
				formatAmount(o.Amount, session.Currency),
				o.OperationDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "record description (required)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "signed decimal amount (required)")
	cmd.Flags().StringVar(&date, "date", "", "operation date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&rule, "rule", "", "recurrence code (D|W|BW|M|Q|S|Y)")
	cmd.Flags().StringVar(&instrument, "instrument", "", "settlement instrument (default cash)")
	cmd.Flags().IntVar(&installments, "installments", 0, "number of occurrences before the rule expires")
	cmd.Flags().BoolVar(&planned, "planned", false, "mark the record as planned")
	cmd.Flags().StringVar(&tag, "tag", "", "classification tag")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("date")

	return cmd
}
