package billing

import (
	"fmt"
	"strings"
)

// Settings keys read from the Settings sheet.
const (
	KeySoloRate  = "solo_rate"
	KeyGroupRate = "group_rate"
)

// Built-in hourly rates used when the Settings sheet does not set them.
const (
	DefaultSoloRate  = 10
	DefaultGroupRate = 20
)

// RateTable holds the default hourly rate for each billing type.
type RateTable struct {
	Solo  float64
	Group float64
}

func DefaultRateTable() RateTable {
	return RateTable{Solo: DefaultSoloRate, Group: DefaultGroupRate}
}

// NewRateTable builds rates from Settings sheet rows. The first row is a
// header. Keys are trimmed; later rows override earlier ones. A blank value
// keeps the default, while a value that is not a number becomes NaN and is
// left to propagate into every amount billed at that rate.
func NewRateTable(rows [][]string) RateTable {
	rt := DefaultRateTable()
	if len(rows) < 2 {
		return rt
	}

	values := make(map[string]string)
	for _, r := range rows[1:] {
		if len(r) == 0 {
			continue
		}
		key := strings.TrimSpace(r[0])
		if key == "" {
			continue
		}
		raw := ""
		if len(r) > 1 {
			raw = r[1]
		}
		values[key] = raw
	}

	if raw, ok := values[KeySoloRate]; ok && strings.TrimSpace(raw) != "" {
		rt.Solo, _ = parseNumber(raw)
	}
	if raw, ok := values[KeyGroupRate]; ok && strings.TrimSpace(raw) != "" {
		rt.Group, _ = parseNumber(raw)
	}
	return rt
}

// For returns the default rate for a (lowercased) billing type. Anything
// other than "group" bills at the solo rate.
func (rt RateTable) For(kind string) float64 {
	if kind == TypeGroup {
		return rt.Group
	}
	return rt.Solo
}

// Validate reports rates that would turn amounts into NaN or Inf.
func (rt RateTable) Validate() error {
	var bad []string
	if !isFinite(rt.Solo) {
		bad = append(bad, fmt.Sprintf("%s=%v", KeySoloRate, rt.Solo))
	}
	if !isFinite(rt.Group) {
		bad = append(bad, fmt.Sprintf("%s=%v", KeyGroupRate, rt.Group))
	}
	if len(bad) > 0 {
		return fmt.Errorf("non-numeric rate settings: %s", strings.Join(bad, ", "))
	}
	return nil
}
