package web

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studiobill/internal/model"
	"studiobill/internal/runner"
)

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func sampleResult() runner.Result {
	return runner.Result{
		StartYear: 2026,
		Years:     []runner.YearStat{{Year: 2026, Rows: 1}},
		Summary:   []model.ClientTotals{{Client: "Bob", Due: 18.5, Paid: 15, Remainder: 3.5}},
		Ledgers: []model.YearLedger{{Year: 2026, Rows: []model.LedgerRow{{
			Client:    "Bob",
			Start:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			Due:       math.NaN(),
			Remainder: 3.5,
			EventID:   "b1",
		}}}},
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, NewServer(), "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestSummary_BeforeFirstRun(t *testing.T) {
	s := NewServer()
	s.Record(runner.Result{}, errors.New("feed down"))

	rec := get(t, s, "/api/summary")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "feed down") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSummary_KeepsLastGoodResult(t *testing.T) {
	s := NewServer()
	s.Record(sampleResult(), nil)
	s.Record(runner.Result{}, errors.New("feed down"))

	rec := get(t, s, "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		StartYear int                  `json:"start_year"`
		Summary   []model.ClientTotals `json:"summary"`
		LastError string               `json:"last_error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.StartYear != 2026 || len(body.Summary) != 1 || body.Summary[0].Remainder != 3.5 {
		t.Errorf("body = %+v", body)
	}
	if body.LastError != "feed down" {
		t.Errorf("last_error = %q", body.LastError)
	}
}

func TestLedger(t *testing.T) {
	s := NewServer()
	s.Record(sampleResult(), nil)

	tests := []struct {
		path string
		code int
	}{
		{"/api/ledger?year=2026", http.StatusOK},
		{"/api/ledger?year=2019", http.StatusNotFound},
		{"/api/ledger?year=abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := get(t, s, tt.path); rec.Code != tt.code {
			t.Errorf("GET %s = %d, expected %d", tt.path, rec.Code, tt.code)
		}
	}

	rec := get(t, s, "/api/ledger?year=2026")
	var body ledgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rows) != 1 || body.Rows[0].EventID != "b1" || body.Rows[0].Due != 0 {
		t.Errorf("rows = %+v", body.Rows)
	}
	if body.Rows[0].Start != "2026-03-01T09:00:00Z" || body.Rows[0].End != "" {
		t.Errorf("times = %q %q", body.Rows[0].Start, body.Rows[0].End)
	}
}

func TestSummary_InfiniteTotalsEncodeAsZero(t *testing.T) {
	s := NewServer()
	s.Record(runner.Result{
		StartYear: 2026,
		Summary: []model.ClientTotals{
			{Client: "A", Due: math.Inf(1), Paid: 5, Remainder: math.Inf(1)},
			{Client: "B", Due: 10, Paid: math.NaN(), Remainder: math.Inf(-1)},
		},
	}, nil)

	rec := get(t, s, "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Summary []model.ClientTotals `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	expected := []model.ClientTotals{
		{Client: "A", Due: 0, Paid: 5, Remainder: 0},
		{Client: "B", Due: 10, Paid: 0, Remainder: 0},
	}
	if len(body.Summary) != len(expected) {
		t.Fatalf("summary = %+v", body.Summary)
	}
	for i := range expected {
		if body.Summary[i] != expected[i] {
			t.Errorf("summary[%d] = %+v, expected %+v", i, body.Summary[i], expected[i])
		}
	}
}

func TestWriteJSON_EncodeFailureIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"due": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Header().Get("Content-Type"), "json") {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}
