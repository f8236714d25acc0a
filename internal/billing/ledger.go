package billing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	appLog "studiobill/internal/log"
	"studiobill/internal/model"
)

// BuildLedger produces the ledger for one calendar year. The year is taken
// as [Jan 1 00:00, Jan 1 00:00 of the next year) in loc.
//
// All-day events and events with a blank title are skipped. Amounts are
// never rejected: a NaN rate yields NaN amounts on that row. Only a failure
// of the event source is returned as an error.
func BuildLedger(ctx context.Context, year int, src EventSource, rates RateTable, loc *time.Location) (model.YearLedger, error) {
	if loc == nil {
		loc = time.Local
	}
	ledger := model.YearLedger{Year: year}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)

	events, err := src.Events(ctx, start, end)
	if err != nil {
		return ledger, fmt.Errorf("ledger %d: fetch events: %w", year, err)
	}

	skipped := 0
	rows := make([]model.LedgerRow, 0, len(events))
	for _, ev := range events {
		row, ok := ledgerRow(ev, rates)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Start.Before(rows[j].Start)
	})

	appLog.Debug("ledger built", "year", year, "events", len(events), "rows", len(rows), "skipped", skipped)

	ledger.Rows = rows
	return ledger, nil
}

func ledgerRow(ev model.Event, rates RateTable) (model.LedgerRow, bool) {
	if ev.AllDay {
		return model.LedgerRow{}, false
	}
	title := strings.TrimSpace(ev.Title)
	if title == "" {
		return model.LedgerRow{}, false
	}

	meta := ParseMeta(ev.Description)

	hours := math.Max(0, float64(ev.End.Sub(ev.Start))/float64(time.Hour))

	kind := meta.Type
	if kind == "" {
		kind = TypeSolo
	}
	kind = strings.ToLower(kind)

	people := 1.0
	if kind == TypeGroup {
		people = 2
	}
	if meta.People != nil {
		people = *meta.People
	}

	rate := rates.For(kind)
	if meta.Rate != nil {
		rate = *meta.Rate
	}

	// Due uses the unrounded duration; only the shown duration is rounded.
	due := round2(hours * rate)
	paid := 0.0
	if meta.Paid != nil {
		paid = *meta.Paid
	}

	return model.LedgerRow{
		Client:        title,
		Start:         ev.Start,
		End:           ev.End,
		DurationHours: round2(hours),
		Type:          kind,
		People:        people,
		Rate:          rate,
		Due:           due,
		Paid:          paid,
		Remainder:     round2(due - paid),
		Location:      ev.Location,
		Notes:         StripMetaLines(ev.Description),
		EventID:       ev.ID,
	}, true
}
