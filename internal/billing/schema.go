package billing

import (
	"regexp"
	"strconv"
	"time"

	"studiobill/internal/model"
)

// Sheet names shared with the workbook.
const (
	SettingsSheet = "Settings"
	SummarySheet  = "Summary"
)

// TimeLayout is how Start and End are written in year sheets.
const TimeLayout = "2006-01-02 15:04"

// LedgerHeader is the year sheet header. Column positions are read back by
// index when the summary is built, so the order must not change.
var LedgerHeader = []string{
	"Client", "Start", "End", "Duration (h)",
	"Type", "N people", "Rate (/h)", "Due",
	"Paid", "Remainder",
	"Location", "Notes", "EventId",
}

// SummaryHeader is the Summary sheet header.
var SummaryHeader = []string{"Client", "Due total", "Paid total", "Remainder total"}

const (
	colClient = iota
	colStart
	colEnd
	colDuration
	colType
	colPeople
	colRate
	colDue
	colPaid
	colRemainder
	colLocation
	colNotes
	colEventID
)

var yearSheetName = regexp.MustCompile(`^\d{4}$`)

// YearSheet reports whether a sheet name denotes a year ledger.
func YearSheet(name string) (int, bool) {
	if !yearSheetName.MatchString(name) {
		return 0, false
	}
	y, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return y, true
}

// SheetName is the sheet a year ledger is written to.
func SheetName(year int) string {
	return strconv.Itoa(year)
}

// EncodeLedger renders a ledger as sheet rows, header first.
func EncodeLedger(l model.YearLedger, loc *time.Location) [][]any {
	if loc == nil {
		loc = time.Local
	}
	out := make([][]any, 0, len(l.Rows)+1)
	out = append(out, headerRow(LedgerHeader))
	for _, r := range l.Rows {
		out = append(out, []any{
			r.Client,
			r.Start.In(loc).Format(TimeLayout),
			r.End.In(loc).Format(TimeLayout),
			r.DurationHours,
			r.Type,
			r.People,
			r.Rate,
			r.Due,
			r.Paid,
			r.Remainder,
			r.Location,
			r.Notes,
			r.EventID,
		})
	}
	return out
}

// DecodeLedger reads a year sheet back. Numeric cells that do not parse
// count as 0, as do NaN cells. Times that do not parse are left zero.
func DecodeLedger(year int, rows [][]string, loc *time.Location) model.YearLedger {
	if loc == nil {
		loc = time.Local
	}
	l := model.YearLedger{Year: year}
	if len(rows) < 2 {
		return l
	}
	for _, r := range rows[1:] {
		l.Rows = append(l.Rows, model.LedgerRow{
			Client:        cell(r, colClient),
			Start:         cellTime(r, colStart, loc),
			End:           cellTime(r, colEnd, loc),
			DurationHours: cellNumber(r, colDuration),
			Type:          cell(r, colType),
			People:        cellNumber(r, colPeople),
			Rate:          cellNumber(r, colRate),
			Due:           cellNumber(r, colDue),
			Paid:          cellNumber(r, colPaid),
			Remainder:     cellNumber(r, colRemainder),
			Location:      cell(r, colLocation),
			Notes:         cell(r, colNotes),
			EventID:       cell(r, colEventID),
		})
	}
	return l
}

// EncodeSummary renders client totals as Summary sheet rows, header first.
func EncodeSummary(totals []model.ClientTotals) [][]any {
	out := make([][]any, 0, len(totals)+1)
	out = append(out, headerRow(SummaryHeader))
	for _, t := range totals {
		out = append(out, []any{t.Client, t.Due, t.Paid, t.Remainder})
	}
	return out
}

func headerRow(h []string) []any {
	row := make([]any, len(h))
	for i, v := range h {
		row[i] = v
	}
	return row
}

func cell(r []string, i int) string {
	if i >= len(r) {
		return ""
	}
	return r[i]
}

func cellNumber(r []string, i int) float64 {
	v, ok := parseNumber(cell(r, i))
	if !ok {
		return 0
	}
	return orZero(v)
}

func cellTime(r []string, i int, loc *time.Location) time.Time {
	t, err := time.ParseInLocation(TimeLayout, cell(r, i), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}
