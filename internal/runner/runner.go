// Package runner drives one billing pass: rebuild the configured years,
// then rebuild the summary from every year sheet in scope.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiobill/internal/billing"
	appLog "studiobill/internal/log"
	"studiobill/internal/model"
)

// Book is a workbook the runner can persist once a pass completes.
type Book interface {
	billing.Workbook
	Save() error
}

// Snapshotter is implemented by sources that can pin their data for one
// pass. Run takes one snapshot per pass and builds every year from it.
type Snapshotter interface {
	Snapshot(ctx context.Context) (billing.EventSource, error)
}

// Options selects the years to rebuild.
type Options struct {
	StartYear int
	Years     int
	Location  *time.Location
}

// YearStat describes one rebuilt year sheet.
type YearStat struct {
	Year int `json:"year"`
	Rows int `json:"rows"`
}

// Result is what a completed pass produced.
type Result struct {
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	StartYear  int                  `json:"start_year"`
	Rates      billing.RateTable    `json:"-"`
	Years      []YearStat           `json:"years"`
	Summary    []model.ClientTotals `json:"summary"`

	// Ledgers holds every year sheet counted in the summary, as read back.
	Ledgers []model.YearLedger `json:"-"`
}

// Ledger returns the ledger of a year counted in the summary.
func (r Result) Ledger(year int) (model.YearLedger, bool) {
	for _, l := range r.Ledgers {
		if l.Year == year {
			return l, true
		}
	}
	return model.YearLedger{}, false
}

type Runner struct {
	source billing.EventSource
	opts   Options
}

func New(source billing.EventSource, opts Options) (*Runner, error) {
	if source == nil {
		return nil, errors.New("runner: event source is nil")
	}
	if opts.Years <= 0 {
		return nil, fmt.Errorf("runner: years must be positive, got %d", opts.Years)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Runner{source: source, opts: opts}, nil
}

// Run rebuilds every configured year sheet and the Summary sheet, then saves
// the book. If any year fails nothing is saved.
func (r *Runner) Run(ctx context.Context, book Book) (Result, error) {
	res := Result{StartedAt: time.Now(), StartYear: r.opts.StartYear}

	rates, err := LoadRates(book)
	if err != nil {
		return res, err
	}
	res.Rates = rates

	source := r.source
	if sn, ok := source.(Snapshotter); ok {
		if source, err = sn.Snapshot(ctx); err != nil {
			return res, fmt.Errorf("load events: %w", err)
		}
	}

	for y := r.opts.StartYear; y < r.opts.StartYear+r.opts.Years; y++ {
		ledger, err := billing.BuildLedger(ctx, y, source, rates, r.opts.Location)
		if err != nil {
			return res, err
		}
		if err := book.Replace(billing.SheetName(y), billing.EncodeLedger(ledger, r.opts.Location)); err != nil {
			return res, fmt.Errorf("write year %d: %w", y, err)
		}
		res.Years = append(res.Years, YearStat{Year: y, Rows: len(ledger.Rows)})
		appLog.Info("year sheet rebuilt", "year", y, "rows", len(ledger.Rows))
	}

	ledgers, err := r.readYearSheets(book)
	if err != nil {
		return res, err
	}
	res.Ledgers = ledgers
	res.Summary = billing.Summarize(ledgers, r.opts.StartYear)

	if err := book.Replace(billing.SummarySheet, billing.EncodeSummary(res.Summary)); err != nil {
		return res, fmt.Errorf("write summary: %w", err)
	}
	if err := book.Save(); err != nil {
		return res, fmt.Errorf("save workbook: %w", err)
	}

	res.FinishedAt = time.Now()
	appLog.Info("billing pass completed",
		"start_year", r.opts.StartYear,
		"years", r.opts.Years,
		"year_sheets", len(ledgers),
		"clients", len(res.Summary),
		"elapsed", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond),
	)
	return res, nil
}

// readYearSheets loads every sheet named as a year from StartYear on,
// including years outside the rebuilt range.
func (r *Runner) readYearSheets(book billing.Workbook) ([]model.YearLedger, error) {
	var out []model.YearLedger
	for _, name := range book.Sheets() {
		year, ok := billing.YearSheet(name)
		if !ok || year < r.opts.StartYear {
			continue
		}
		rows, _, err := book.Rows(name)
		if err != nil {
			return nil, fmt.Errorf("read year sheet %s: %w", name, err)
		}
		out = append(out, billing.DecodeLedger(year, rows, r.opts.Location))
	}
	return out, nil
}

// LoadRates reads the Settings sheet. A missing sheet means default rates;
// rates that are not numbers are logged and kept.
func LoadRates(book billing.Workbook) (billing.RateTable, error) {
	rows, ok, err := book.Rows(billing.SettingsSheet)
	if err != nil {
		return billing.RateTable{}, fmt.Errorf("read settings: %w", err)
	}
	if !ok {
		appLog.Info("no Settings sheet; using default rates",
			"solo_rate", billing.DefaultSoloRate,
			"group_rate", billing.DefaultGroupRate,
		)
		return billing.DefaultRateTable(), nil
	}

	rates := billing.NewRateTable(rows)
	if err := rates.Validate(); err != nil {
		appLog.Warn("rate settings will produce NaN amounts", "reason", err)
	}
	appLog.Debug("rates loaded", "solo_rate", rates.Solo, "group_rate", rates.Group)
	return rates, nil
}

// InitSettings writes a Settings sheet holding the default rates unless the
// book already has one. It reports whether the sheet was created.
func InitSettings(book Book) (bool, error) {
	_, ok, err := book.Rows(billing.SettingsSheet)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}

	rows := [][]any{
		{"key", "value"},
		{billing.KeySoloRate, billing.DefaultSoloRate},
		{billing.KeyGroupRate, billing.DefaultGroupRate},
	}
	if err := book.Replace(billing.SettingsSheet, rows); err != nil {
		return false, err
	}
	if err := book.Save(); err != nil {
		return false, err
	}
	return true, nil
}
