package handlers

import (
	"net/http"
	"time"

	"github.com/jjaoguedes/facegate/internal/report"
)

// ReportsHandler serves attendance report exports.
type ReportsHandler struct {
	reports *report.Aggregator
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reports *report.Aggregator) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Weekly handles GET /report/weekly and streams the last seven days as CSV.
func (h *ReportsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.Weekly(r.Context(), time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not build weekly report")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="weekly.csv"`)
	if err := report.WriteWeeklyCSV(w, rows); err != nil {
		// Headers are already out; nothing left to do but log via middleware.
		return
	}
}

// Monthly handles GET /report/monthly and streams the current calendar month
// as CSV with detail and summary sections.
func (h *ReportsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.reports.Monthly(r.Context(), time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not build monthly report")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="monthly.csv"`)
	if err := report.WriteMonthlyCSV(w, monthly); err != nil {
		return
	}
}
