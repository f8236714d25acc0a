// Package sheet provides the tabular sinks ledgers are written to: an xlsx
// workbook on disk and an in-memory grid.
package sheet

import (
	"fmt"
	"math"
	"strconv"
)

// cellValue maps a row value to what gets stored. Non-finite floats are
// stored as text because xlsx has no numeric NaN.
func cellValue(v any) any {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case float32:
		return cellValue(float64(n))
	}
	return v
}

// cellText is the raw text form of a value, as a spreadsheet would report it.
func cellText(v any) string {
	switch n := cellValue(v).(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		if n {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(n)
	}
}
