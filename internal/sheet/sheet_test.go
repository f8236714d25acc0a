package sheet

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMemory_ReplaceAndRows(t *testing.T) {
	m := NewMemory()

	if _, ok, _ := m.Rows("2026"); ok {
		t.Fatal("missing sheet reported as present")
	}

	if err := m.Replace("2026", [][]any{{"Client", "Due"}, {"Alice", 37.5}, {"Bob", math.NaN()}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := m.Replace("Summary", [][]any{{"Client"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := m.Replace("2026", [][]any{{"Client", "Due"}, {"Carol", 3}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	rows, ok, err := m.Rows("2026")
	if err != nil || !ok {
		t.Fatalf("Rows: ok=%v err=%v", ok, err)
	}
	want := [][]string{{"Client", "Due"}, {"Carol", "3"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, expected %v (old content must be cleared)", rows, want)
	}
	if got := m.Sheets(); !reflect.DeepEqual(got, []string{"2026", "Summary"}) {
		t.Errorf("Sheets() = %v", got)
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{17.5, "17.5"},
		{0.1, "0.1"},
		{3, "3"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "+Inf"},
		{true, "TRUE"},
	}
	for _, tt := range tests {
		if got := cellText(tt.in); got != tt.want {
			t.Errorf("cellText(%v) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestWorkbook_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.xlsx")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := w.Replace("Settings", [][]any{{"key", "value"}, {"solo_rate", 12}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := w.Replace("2026", [][]any{{"Client", "Due"}, {"Alice", 37.5}, {"Bob", 1.25}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := w.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = w.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, expected 600", perm)
	}

	w, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer w.Close()

	if got := w.Sheets(); !reflect.DeepEqual(got, []string{"Settings", "2026"}) {
		t.Errorf("Sheets() = %v, expected default sheet dropped", got)
	}

	// Replacing must drop rows that the new content does not cover.
	if err := w.Replace("2026", [][]any{{"Client", "Due"}, {"Carol", 2}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	rows, ok, err := w.Rows("2026")
	if err != nil || !ok {
		t.Fatalf("Rows: ok=%v err=%v", ok, err)
	}
	want := [][]string{{"Client", "Due"}, {"Carol", "2"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, expected %v", rows, want)
	}

	settings, ok, err := w.Rows("Settings")
	if err != nil || !ok {
		t.Fatalf("Rows(Settings): ok=%v err=%v", ok, err)
	}
	if settings[1][0] != "solo_rate" || settings[1][1] != "12" {
		t.Errorf("settings = %v", settings)
	}
}

func TestWorkbook_ReplaceOnlySheet(t *testing.T) {
	w, err := Open(filepath.Join(t.TempDir(), "one.xlsx"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	if err := w.Replace("Sheet1", [][]any{{"a"}, {"b"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := w.Replace("Sheet1", [][]any{{"c"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	rows, _, err := w.Rows("Sheet1")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"c"}}) {
		t.Errorf("rows = %v", rows)
	}
	if got := w.Sheets(); !reflect.DeepEqual(got, []string{"Sheet1"}) {
		t.Errorf("Sheets() = %v", got)
	}
}

func TestWorkbook_MissingSheet(t *testing.T) {
	w, err := Open(filepath.Join(t.TempDir(), "none.xlsx"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	rows, ok, err := w.Rows("Settings")
	if err != nil || ok || rows != nil {
		t.Errorf("Rows(missing) = %v, %v, %v", rows, ok, err)
	}
}

func TestWorkbook_ReplaceKeepsSheetPosition(t *testing.T) {
	w, err := Open(filepath.Join(t.TempDir(), "order.xlsx"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	for _, name := range []string{"Settings", "2026", "2027", "Summary"} {
		if err := w.Replace(name, [][]any{{name}, {"old", "wide", "row"}}); err != nil {
			t.Fatalf("Replace(%s): %v", name, err)
		}
	}
	before := w.Sheets()

	if err := w.Replace("2026", [][]any{{"Client"}, {"new"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := w.Sheets(); !reflect.DeepEqual(got, before) {
		t.Errorf("Sheets() = %v, expected %v", got, before)
	}

	rows, _, err := w.Rows("2026")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if want := [][]string{{"Client"}, {"new"}}; !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, expected %v", rows, want)
	}
}
