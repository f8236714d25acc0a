package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"studiobill/internal/runner"
	"studiobill/internal/sheet"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the Settings sheet with default rates",
		Long: `Create the workbook if needed and add a Settings sheet holding the default
hourly rates (solo_rate, group_rate). An existing Settings sheet is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := sheet.Open(a.cfg.Workbook)
			if err != nil {
				return err
			}
			defer wb.Close()

			created, err := runner.InitSettings(wb)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Settings sheet created in %s\n", a.cfg.Workbook)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has a Settings sheet\n", a.cfg.Workbook)
			}
			return nil
		},
	}
}
