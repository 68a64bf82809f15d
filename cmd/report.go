package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:       "report [weekly|monthly]",
	Short:     "Export an attendance report as CSV",
	Long:      `Export an attendance report. The weekly report lists all stays from the last seven days; the monthly report carries per-day detail and per-subject summary sections for the current calendar month.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"weekly", "monthly"},
	RunE:      runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("output", "", "Write the CSV to a file instead of stdout")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var out io.Writer = os.Stdout
	if path := mustGetString(cmd, "output"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer file.Close()
		out = file
	}

	aggregator := report.NewAggregator(store.Sessions())
	now := time.Now()

	switch args[0] {
	case "weekly":
		rows, err := aggregator.Weekly(ctx, now)
		if err != nil {
			return err
		}
		return report.WriteWeeklyCSV(out, rows)
	case "monthly":
		monthly, err := aggregator.Monthly(ctx, now)
		if err != nil {
			return err
		}
		return report.WriteMonthlyCSV(out, monthly)
	default:
		return fmt.Errorf("unknown report %q", args[0])
	}
}
