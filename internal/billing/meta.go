package billing

import (
	"regexp"
	"strings"
)

// Billing types with their own default rate.
const (
	TypeSolo  = "solo"
	TypeGroup = "group"
)

// Recognized meta keys. Any other key is accepted as a meta line but
// carries no billing hint.
const (
	metaType   = "type"
	metaPeople = "people"
	metaRate   = "rate"
	metaPaid   = "paid"
)

// metaLine matches "key: value" notes lines.
var metaLine = regexp.MustCompile(`^\s*([A-Za-z_]+)\s*:\s*(.+?)\s*$`)

var lineBreak = regexp.MustCompile(`\r?\n`)

// EventMeta holds billing hints found in an event description.
// Nil pointers and an empty Type mean "not given".
type EventMeta struct {
	Type   string
	People *float64
	Rate   *float64
	Paid   *float64
}

// ParseMeta reads "key: value" lines from a description. The last line for
// a key wins. Numeric values may use a decimal comma; a blank value counts
// as 0 and values that do not parse to a finite number are dropped.
func ParseMeta(description string) EventMeta {
	var meta EventMeta
	for _, line := range lineBreak.Split(description, -1) {
		m := metaLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, val := strings.ToLower(m[1]), m[2]

		switch key {
		case metaType:
			meta.Type = strings.ToLower(strings.TrimSpace(val))
		case metaPeople:
			if v, ok := metaNumber(val); ok {
				meta.People = &v
			}
		case metaRate:
			if v, ok := metaNumber(val); ok {
				meta.Rate = &v
			}
		case metaPaid:
			if v, ok := metaNumber(val); ok {
				meta.Paid = &v
			}
		}
	}
	return meta
}

// StripMetaLines returns the description without any "key: value" line,
// known key or not.
func StripMetaLines(description string) string {
	lines := lineBreak.Split(description, -1)
	kept := lines[:0]
	for _, line := range lines {
		if metaLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// metaNumber converts a numeric hint. A value that is blank after trimming
// reads as 0, the way a spreadsheet Number() coerces whitespace.
func metaNumber(val string) (float64, bool) {
	if strings.TrimSpace(val) == "" {
		return 0, true
	}
	v, ok := parseNumber(strings.ReplaceAll(val, ",", "."))
	if !ok || !isFinite(v) {
		return 0, false
	}
	return v, true
}
