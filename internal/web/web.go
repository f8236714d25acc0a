package web

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	appLog "studiobill/internal/log"
	"studiobill/internal/model"
	"studiobill/internal/runner"
)

// Server exposes the outcome of the last billing pass as read-only JSON.
type Server struct {
	mux *http.ServeMux

	mu      sync.RWMutex
	last    *runner.Result
	lastErr error
	lastAt  time.Time
}

func NewServer() *Server {
	s := &Server{mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Record stores the outcome of a pass. A failed pass keeps the previous
// result and only updates the error.
func (s *Server) Record(res runner.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAt = time.Now()
	s.lastErr = err
	if err == nil {
		r := res
		s.last = &r
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/summary", s.handleSummary)
	s.mux.HandleFunc("/api/ledger", s.handleLedger)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// summaryResponse is the JSON shape for /api/summary.
type summaryResponse struct {
	runner.Result
	LastAttempt time.Time `json:"last_attempt"`
	LastError   string    `json:"last_error,omitempty"`
}

// handleSummary returns the client totals and per-year row counts of the
// last successful pass.
func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	last, lastErr, lastAt := s.last, s.lastErr, s.lastAt
	s.mu.RUnlock()

	if last == nil {
		msg := "no billing pass completed yet"
		if lastErr != nil {
			msg += ": " + lastErr.Error()
		}
		writeError(w, http.StatusServiceUnavailable, msg)
		return
	}

	resp := summaryResponse{Result: *last, LastAttempt: lastAt}
	resp.Summary = finiteTotals(last.Summary)
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ledgerResponse is the JSON shape for /api/ledger.
type ledgerResponse struct {
	Year int      `json:"year"`
	Rows []rowDTO `json:"rows"`
}

// rowDTO is a JSON-friendly ledger row.
type rowDTO struct {
	Client        string  `json:"client"`
	Start         string  `json:"start"`
	End           string  `json:"end"`
	DurationHours float64 `json:"duration_hours"`
	Type          string  `json:"type"`
	People        float64 `json:"people"`
	Rate          float64 `json:"rate"`
	Due           float64 `json:"due"`
	Paid          float64 `json:"paid"`
	Remainder     float64 `json:"remainder"`
	Location      string  `json:"location"`
	Notes         string  `json:"notes"`
	EventID       string  `json:"event_id"`
}

// handleLedger returns the rows of one year sheet from the last pass.
//
// GET /api/ledger?year=2026
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be a 4-digit number")
		return
	}

	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last == nil {
		writeError(w, http.StatusServiceUnavailable, "no billing pass completed yet")
		return
	}

	ledger, ok := last.Ledger(year)
	if !ok {
		writeError(w, http.StatusNotFound, "no ledger for year "+strconv.Itoa(year))
		return
	}
	writeJSON(w, http.StatusOK, ledgerResponse{Year: year, Rows: toDTOs(ledger.Rows)})
}

func toDTOs(rows []model.LedgerRow) []rowDTO {
	out := make([]rowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowDTO{
			Client:        r.Client,
			Start:         formatTime(r.Start),
			End:           formatTime(r.End),
			DurationHours: finite(r.DurationHours),
			Type:          r.Type,
			People:        finite(r.People),
			Rate:          finite(r.Rate),
			Due:           finite(r.Due),
			Paid:          finite(r.Paid),
			Remainder:     finite(r.Remainder),
			Location:      r.Location,
			Notes:         r.Notes,
			EventID:       r.EventID,
		})
	}
	return out
}

func finiteTotals(totals []model.ClientTotals) []model.ClientTotals {
	out := make([]model.ClientTotals, len(totals))
	for i, t := range totals {
		out[i] = model.ClientTotals{
			Client:    t.Client,
			Due:       finite(t.Due),
			Paid:      finite(t.Paid),
			Remainder: finite(t.Remainder),
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// finite keeps encoding/json from failing on NaN or infinite amounts.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// writeJSON encodes before writing the header so an encoding failure
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
