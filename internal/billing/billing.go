// Package billing turns calendar bookings into per-year ledgers and a
// per-client summary.
//
// The package has no I/O of its own. Events come from an EventSource and
// ledgers are written to, and read back from, a Workbook.
package billing

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"studiobill/internal/model"
)

// EventSource returns every event overlapping the half-open range
// [start, end).
type EventSource interface {
	Events(ctx context.Context, start, end time.Time) ([]model.Event, error)
}

// Workbook is a tabular sink made of named sheets.
type Workbook interface {
	// Sheets lists sheet names in workbook order.
	Sheets() []string
	// Rows returns the raw cell values of a sheet, header included.
	// A missing sheet yields (nil, false, nil).
	Rows(name string) ([][]string, bool, error)
	// Replace clears the sheet (creating it if needed) and writes rows.
	Replace(name string, rows [][]any) error
}

// round2 rounds to cents the way the spreadsheet formulas did:
// Math.round((x + Number.EPSILON) * 100) / 100, ties toward +Inf.
func round2(x float64) float64 {
	return jsRound((x+epsilon)*100) / 100
}

// epsilon is the gap between 1 and the next float64.
const epsilon = 2.220446049250313e-16

func jsRound(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	return f
}

// parseNumber accepts what a lenient spreadsheet cell parse would: optional
// surrounding space, decimal or exponent notation. Blank input is not a
// number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
