// Package report builds attendance reports from committed session records.
// Reports are pure projections; nothing here mutates state.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jjaoguedes/facegate/internal/database"
)

// WeeklyRow is one session in the weekly listing.
type WeeklyRow struct {
	SubjectName string
	EntryTime   time.Time
	ExitTime    *time.Time
	Duration    time.Duration
}

// DetailRow is the total presence of one subject on one calendar day.
type DetailRow struct {
	SubjectName string
	Day         time.Time // midnight of the calendar day
	Total       time.Duration
}

// SummaryRow aggregates one subject over the month.
type SummaryRow struct {
	SubjectName  string
	Total        time.Duration
	ActiveDays   int
	AverageDaily time.Duration
}

// MonthlyReport carries the two sections of the monthly export.
type MonthlyReport struct {
	Detail  []DetailRow
	Summary []SummaryRow
}

// Aggregator reads the session store and produces time-bucketed reports.
type Aggregator struct {
	sessions database.SessionStore
}

// NewAggregator creates a report aggregator over a session store.
func NewAggregator(sessions database.SessionStore) *Aggregator {
	return &Aggregator{sessions: sessions}
}

// Weekly lists all sessions entered in the last seven days, ordered by
// subject name then entry time.
func (a *Aggregator) Weekly(ctx context.Context, now time.Time) ([]WeeklyRow, error) {
	sessions, err := a.sessions.EntriesSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("weekly report: %w", err)
	}

	rows := make([]WeeklyRow, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, WeeklyRow{
			SubjectName: session.SubjectName,
			EntryTime:   session.EntryTime,
			ExitTime:    session.ExitTime,
			Duration:    session.StayDuration(),
		})
	}
	return rows, nil
}

// Monthly aggregates the current calendar month: per-subject per-day totals
// plus a per-subject summary. Summary rows exist only for subjects with at
// least one detail row, so distinct active days is never zero.
func (a *Aggregator) Monthly(ctx context.Context, now time.Time) (MonthlyReport, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	next := first.AddDate(0, 1, 0)

	sessions, err := a.sessions.EntriesBetween(ctx, first, next)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("monthly report: %w", err)
	}

	type dayKey struct {
		name string
		day  time.Time
	}
	totals := make(map[dayKey]time.Duration)
	for _, session := range sessions {
		entry := session.EntryTime.In(now.Location())
		day := time.Date(entry.Year(), entry.Month(), entry.Day(), 0, 0, 0, 0, now.Location())
		totals[dayKey{session.SubjectName, day}] += session.StayDuration()
	}

	detail := make([]DetailRow, 0, len(totals))
	for key, total := range totals {
		detail = append(detail, DetailRow{SubjectName: key.name, Day: key.day, Total: total})
	}
	sort.Slice(detail, func(i, j int) bool {
		if detail[i].SubjectName != detail[j].SubjectName {
			return detail[i].SubjectName < detail[j].SubjectName
		}
		return detail[i].Day.Before(detail[j].Day)
	})

	type subjectAgg struct {
		total time.Duration
		days  int
	}
	perSubject := make(map[string]subjectAgg)
	for _, row := range detail {
		agg := perSubject[row.SubjectName]
		agg.total += row.Total
		agg.days++
		perSubject[row.SubjectName] = agg
	}

	summary := make([]SummaryRow, 0, len(perSubject))
	for name, agg := range perSubject {
		summary = append(summary, SummaryRow{
			SubjectName:  name,
			Total:        agg.total,
			ActiveDays:   agg.days,
			AverageDaily: agg.total / time.Duration(agg.days),
		})
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].SubjectName < summary[j].SubjectName
	})

	return MonthlyReport{Detail: detail, Summary: summary}, nil
}
