package main

import (
	"github.com/spf13/cobra"

	appLog "studiobill/internal/log"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		startYear int
		years     int
		workbook  string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuild year sheets and the Summary sheet once",
		Long: `Rebuild the ledger sheet of every configured year from the calendars,
then rebuild the Summary sheet from every year sheet from the start year on.

Year sheets are replaced, never merged: edits made to them are lost.

Examples:
  studiobill sync                         Use start_year and years from config
  studiobill sync --start-year 2025 --years 2
  studiobill sync --dry-run               Print totals without saving`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("start-year") {
				a.cfg.StartYear = startYear
			}
			if cmd.Flags().Changed("years") {
				a.cfg.Years = years
			}
			if workbook != "" {
				a.cfg.Workbook = workbook
			}

			r, err := a.newRunner()
			if err != nil {
				return err
			}
			res, err := runPass(cmd.Context(), r, a.cfg.Workbook, dryRun)
			if err != nil {
				appLog.Error("billing pass failed", err, "workbook", a.cfg.Workbook)
				return err
			}
			printSummary(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().IntVar(&startYear, "start-year", 0, "First year to rebuild (overrides config)")
	cmd.Flags().IntVar(&years, "years", 0, "Number of years to rebuild (overrides config)")
	cmd.Flags().StringVar(&workbook, "workbook", "", "Workbook path (overrides config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and print totals without saving the workbook")
	return cmd
}
