package billing

import "testing"

func TestParseMeta(t *testing.T) {
	meta := ParseMeta("type: Group\r\npeople: 3\nrate: 15,5\npaid: 20\nExtra note")

	if meta.Type != "group" {
		t.Errorf("Type = %q, expected %q", meta.Type, "group")
	}
	if meta.People == nil || *meta.People != 3 {
		t.Errorf("People = %v, expected 3", meta.People)
	}
	if meta.Rate == nil || *meta.Rate != 15.5 {
		t.Errorf("Rate = %v, expected 15.5", meta.Rate)
	}
	if meta.Paid == nil || *meta.Paid != 20 {
		t.Errorf("Paid = %v, expected 20", meta.Paid)
	}
}

func TestParseMeta_MalformedNumbersAreAbsent(t *testing.T) {
	meta := ParseMeta("paid: lots\nrate: 1e999\npeople: two")

	if meta.Paid != nil {
		t.Errorf("Paid = %v, expected absent", *meta.Paid)
	}
	if meta.Rate != nil {
		t.Errorf("Rate = %v, expected absent", *meta.Rate)
	}
	if meta.People != nil {
		t.Errorf("People = %v, expected absent", *meta.People)
	}
}

func TestParseMeta_LastOccurrenceWins(t *testing.T) {
	meta := ParseMeta("paid: 5\ntype: solo\npaid: 7\ntype: GROUP")

	if meta.Paid == nil || *meta.Paid != 7 {
		t.Errorf("Paid = %v, expected 7", meta.Paid)
	}
	if meta.Type != "group" {
		t.Errorf("Type = %q, expected group", meta.Type)
	}
}

func TestParseMeta_OrderIndependent(t *testing.T) {
	a := ParseMeta("rate: 12\npaid: 3")
	b := ParseMeta("paid: 3\nrate: 12")

	if *a.Rate != *b.Rate || *a.Paid != *b.Paid {
		t.Errorf("different results for reordered lines: %+v vs %+v", a, b)
	}
}

func TestParseMeta_IgnoresUnknownKeysAndNonMetaLines(t *testing.T) {
	meta := ParseMeta("room: 4\nbring shoes\n  Type :  solo  ")

	if meta.Type != "solo" {
		t.Errorf("Type = %q, expected solo", meta.Type)
	}
	if meta.People != nil || meta.Rate != nil || meta.Paid != nil {
		t.Errorf("unexpected numeric hints: %+v", meta)
	}
}

func TestParseMeta_Empty(t *testing.T) {
	meta := ParseMeta("")
	if meta.Type != "" || meta.People != nil || meta.Rate != nil || meta.Paid != nil {
		t.Errorf("expected empty meta, got %+v", meta)
	}
}

func TestStripMetaLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"only meta", "type: group\npeople: 3", ""},
		{"unknown keys removed too", "room: 4\nbring shoes", "bring shoes"},
		{"mixed with crlf", "  first line\r\npaid: 10\r\nsecond line  \r\n", "first line\nsecond line"},
		{"digits in key are not meta", "step1: warm up", "step1: warm up"},
		{"colon without value kept", "todo:", "todo:"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMetaLines(tt.in); got != tt.want {
				t.Errorf("StripMetaLines(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMeta_BlankNumbersReadAsZero(t *testing.T) {
	tests := []struct {
		name string
		in   string
		get  func(EventMeta) *float64
	}{
		{"rate", "rate:   ", func(m EventMeta) *float64 { return m.Rate }},
		{"people", "people: ", func(m EventMeta) *float64 { return m.People }},
		{"paid tab", "paid:\t\t", func(m EventMeta) *float64 { return m.Paid }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.get(ParseMeta(tt.in))
			if v == nil || *v != 0 {
				t.Errorf("ParseMeta(%q) = %v, expected 0", tt.in, v)
			}
		})
	}

	if got := StripMetaLines("rate:   \nx"); got != "x" {
		t.Errorf("StripMetaLines = %q, expected %q", got, "x")
	}
}
