package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteWeeklyCSV renders the weekly listing as CSV.
func WriteWeeklyCSV(w io.Writer, rows []WeeklyRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"name", "entry_time", "exit_time", "duration"}); err != nil {
		return fmt.Errorf("write weekly header: %w", err)
	}
	for _, row := range rows {
		exit := ""
		if row.ExitTime != nil {
			exit = row.ExitTime.Format(timeLayout)
		}
		record := []string{
			row.SubjectName,
			row.EntryTime.Format(timeLayout),
			exit,
			formatDuration(row.Duration),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write weekly row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMonthlyCSV renders the monthly report as CSV with a detail section
// followed by a summary section.
func WriteMonthlyCSV(w io.Writer, report MonthlyReport) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"detail", "name", "day", "total"}); err != nil {
		return fmt.Errorf("write detail header: %w", err)
	}
	for _, row := range report.Detail {
		record := []string{
			"detail",
			row.SubjectName,
			row.Day.Format("2006-01-02"),
			formatDuration(row.Total),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write detail row: %w", err)
		}
	}

	if err := cw.Write([]string{"summary", "name", "total_hours", "active_days", "avg_daily"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, row := range report.Summary {
		record := []string{
			"summary",
			row.SubjectName,
			fmt.Sprintf("%.2f", row.Total.Hours()),
			fmt.Sprintf("%d", row.ActiveDays),
			formatDuration(row.AverageDaily),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatDuration renders a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
