package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/reclaim/pkg/reclaim/history"
)

var (
	flagLimit     int
	flagOlderThan int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show past scans and executions",
		RunE:  runHistory,
	}

	historyPruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Remove old history records",
		RunE:  runHistoryPrune,
	}
)

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "l", 20, "maximum records to show (0=all)")
	historyPruneCmd.Flags().IntVar(&flagOlderThan, "older-than", 0, "days to keep (0=config retention)")

	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	return store, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(flagLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		printInfo("No history yet. Run a scan first.")
		return nil
	}

	for _, rec := range records {
		when := rec.Timestamp.Local().Format("2006-01-02 15:04")
		switch rec.Kind {
		case history.KindScan:
			printInfo("%s  scan       %s  (%d entries, %d flagged, %s)",
				when, rec.Root, rec.Entries, rec.Detections,
				durationMS(rec.DurationMS))
		case history.KindExecution:
			printInfo("%s  execution  %s  (%d operations, %d failed, %s freed)",
				when, rec.PlanFile, rec.Operations, rec.Failed,
				humanize.IBytes(uint64(rec.SpaceFreed)))
		}
	}

	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	days := flagOlderThan
	if days <= 0 {
		days = cfg.History.RetentionDays
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Prune(time.Now().AddDate(0, 0, -days))
	if err != nil {
		return err
	}

	printInfo("Removed %d records older than %d days", removed, days)
	return nil
}

func durationMS(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}
