package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jjaoguedes/facegate/internal/report"
)

func TestWeeklyReportCSV(t *testing.T) {
	ext := &stubExtractor{embeddings: [][]float32{vec(0.1)}}
	service, store := newTestService(t, ext)
	enroll(t, service, store, "Ana", vec(0))
	handler := NewReportsHandler(report.NewAggregator(store.Sessions()))

	// One complete stay earlier today.
	ctx := context.Background()
	entry := time.Now().Add(-2 * time.Hour)
	if _, err := store.Sessions().Transition(ctx, 1, entry, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Sessions().Transition(ctx, 1, entry.Add(time.Hour), 0); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	handler.Weekly(rec, httptest.NewRequest(http.MethodGet, "/report/weekly", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines: %q", len(lines), rec.Body.String())
	}
	if !strings.HasPrefix(lines[1], "Ana,") {
		t.Errorf("unexpected row: %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "01:00:00") {
		t.Errorf("expected 1h duration, got %q", lines[1])
	}
}

func TestMonthlyReportCSV(t *testing.T) {
	ext := &stubExtractor{embeddings: [][]float32{vec(0.1)}}
	service, store := newTestService(t, ext)
	enroll(t, service, store, "Ana", vec(0))
	handler := NewReportsHandler(report.NewAggregator(store.Sessions()))

	// Mid-month entry so the stay always lands inside the current month.
	ctx := context.Background()
	now := time.Now()
	entry := time.Date(now.Year(), now.Month(), 15, 10, 0, 0, 0, now.Location())
	if _, err := store.Sessions().Transition(ctx, 1, entry, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Sessions().Transition(ctx, 1, entry.Add(90*time.Minute), 0); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	handler.Monthly(rec, httptest.NewRequest(http.MethodGet, "/report/monthly", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "detail,Ana,") {
		t.Errorf("missing detail section: %q", body)
	}
	if !strings.Contains(body, "summary,Ana,1.50,1,01:30:00") {
		t.Errorf("missing summary row: %q", body)
	}
}
