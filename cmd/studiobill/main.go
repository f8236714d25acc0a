package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"studiobill/internal/config"
	"studiobill/internal/ics"
	appLog "studiobill/internal/log"
	"studiobill/internal/runner"
	"studiobill/internal/sheet"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the loaded configuration into subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "studiobill",
		Short: "Turn calendar bookings into a yearly billing workbook",
		Long: `studiobill reads bookings from ICS calendars and writes an xlsx workbook
with one ledger sheet per year and a per-client Summary sheet.

Event descriptions may carry billing hints, one per line:
  type: group      billing type (solo or group)
  people: 3        number of people
  rate: 15         hourly rate, overrides the Settings sheet
  paid: 20         amount already paid

Default hourly rates come from the Settings sheet (solo_rate, group_rate).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "./studiobill.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (overrides config): debug, info, warn, error")

	root.AddCommand(newSyncCmd(a))
	root.AddCommand(newDaemonCmd(a))
	root.AddCommand(newInitCmd(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", a.configPath)
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	a.cfg = cfg
	return nil
}

// newRunner wires the configured calendars into a runner.
func (a *app) newRunner() (*runner.Runner, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	sources := make([]ics.Source, 0, len(a.cfg.Calendars))
	for _, c := range a.cfg.Calendars {
		sources = append(sources, ics.Source{ID: c.ID, URL: c.URL})
	}
	if len(sources) == 0 {
		appLog.Warn("no calendars configured; year sheets will be empty", "config_path", a.configPath)
	}

	appLog.Info("effective config",
		"timezone", loc.String(),
		"start_year", a.cfg.StartYear,
		"years", a.cfg.Years,
		"workbook", a.cfg.Workbook,
		"calendars", len(sources),
	)

	cal := ics.NewCalendar(ics.NewFetcher(a.cfg.CacheDir), sources, loc)
	return runner.New(cal, runner.Options{
		StartYear: a.cfg.StartYear,
		Years:     a.cfg.Years,
		Location:  loc,
	})
}

// dryRunBook computes everything but never writes the file.
type dryRunBook struct {
	*sheet.Workbook
}

func (dryRunBook) Save() error { return nil }

// runPass opens the workbook, runs one billing pass and closes it again.
func runPass(ctx context.Context, r *runner.Runner, path string, dryRun bool) (runner.Result, error) {
	wb, err := sheet.Open(path)
	if err != nil {
		return runner.Result{}, err
	}
	defer wb.Close()

	var book runner.Book = wb
	if dryRun {
		book = dryRunBook{wb}
	}
	return r.Run(ctx, book)
}

func printSummary(w io.Writer, res runner.Result) {
	for _, y := range res.Years {
		fmt.Fprintf(w, "%d: %d rows\n", y.Year, y.Rows)
	}
	if len(res.Summary) == 0 {
		fmt.Fprintln(w, "No billable bookings.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Client\tDue\tPaid\tRemainder\t")
	for _, c := range res.Summary {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t\n", c.Client, c.Due, c.Paid, c.Remainder)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Completed in %s\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
}
