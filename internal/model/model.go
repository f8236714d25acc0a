package model

import "time"

// Event is a single concrete booking as delivered by an event source,
// after recurrence expansion and timezone normalization.
type Event struct {
	SourceID string // calendar source ID (config calendar ID)

	// ID identifies this booking. For recurring events it is unique per
	// instance (UID plus the instance start in UTC).
	ID string

	Title       string
	Description string
	Location    string

	AllDay bool

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}

// LedgerRow is one billable event flattened into a ledger line.
type LedgerRow struct {
	Client string
	Start  time.Time
	End    time.Time

	// DurationHours is rounded to 2 decimals for display only; Due is
	// computed from the unrounded duration.
	DurationHours float64

	Type      string
	People    float64
	Rate      float64
	Due       float64
	Paid      float64
	Remainder float64

	Location string
	Notes    string
	EventID  string
}

// YearLedger is the ordered set of rows for one calendar year.
type YearLedger struct {
	Year int
	Rows []LedgerRow
}

// ClientTotals holds summed amounts for one client across years.
type ClientTotals struct {
	Client    string  `json:"client"`
	Due       float64 `json:"due"`
	Paid      float64 `json:"paid"`
	Remainder float64 `json:"remainder"`
}
