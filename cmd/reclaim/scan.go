package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/reclaim/pkg/reclaim/config"
	"github.com/jamesainslie/reclaim/pkg/reclaim/detect"
	"github.com/jamesainslie/reclaim/pkg/reclaim/history"
	"github.com/jamesainslie/reclaim/pkg/reclaim/logging"
	"github.com/jamesainslie/reclaim/pkg/reclaim/output"
	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
	"github.com/jamesainslie/reclaim/pkg/reclaim/progress"
	"github.com/jamesainslie/reclaim/pkg/reclaim/scanner"
	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

var (
	flagMaxDepth   int
	flagSkipHidden bool
	flagSymlinks   bool
	flagSequential bool
	flagWorkers    int
	flagThreshold  string
	flagPlanFile   string

	scanCmd = &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory and write a cleanup plan",
		Long: `Scan walks the directory tree, flags large files and build
artifact directories, and writes a cleanup plan for review. Nothing is
deleted; use "reclaim execute" to apply the plan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "limit reported depth (0=unlimited)")
	scanCmd.Flags().BoolVar(&flagSkipHidden, "skip-hidden", false, "skip hidden files and directories")
	scanCmd.Flags().BoolVar(&flagSymlinks, "follow-symlinks", false, "follow symbolic links")
	scanCmd.Flags().BoolVar(&flagSequential, "sequential", false, "use the sequential scan strategy")
	scanCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "worker count for parallel scanning (0=auto)")
	scanCmd.Flags().StringVarP(&flagThreshold, "threshold", "s", "", "size threshold (e.g. 500MiB, 1GiB)")
	scanCmd.Flags().StringVarP(&flagPlanFile, "plan", "p", "reclaim-plan.yaml", "plan output path (empty to skip)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := logging.Get("scan")

	root := config.DefaultPath
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	result, err := runScanPass(cmd, root)
	if err != nil {
		return err
	}

	threshold, err := resolveThreshold()
	if err != nil {
		return err
	}

	engine, err := buildEngine(threshold)
	if err != nil {
		return err
	}

	detections := engine.Analyze(result.Entries, detect.Context{
		BasePath: root,
		ScanTime: time.Now(),
	})
	logger.Info("detection complete",
		"entries", len(result.Entries), "flagged", len(detections))

	p := plan.NewGenerator(root).Generate(detections)

	if flagPlanFile != "" {
		if err := plan.Write(p, flagPlanFile); err != nil {
			return fmt.Errorf("writing plan: %w", err)
		}
	}

	if err := renderFindings(root, result, p); err != nil {
		return err
	}

	if flagPlanFile != "" {
		printInfo("Plan written to %s (review, then run: reclaim execute %s)",
			flagPlanFile, flagPlanFile)
	}

	recordHistory(history.Record{
		Kind:       history.KindScan,
		Root:       root,
		Entries:    len(result.Entries),
		Detections: len(detections),
		DurationMS: result.Elapsed.Milliseconds(),
	})

	return nil
}

// runScanPass runs the configured scan strategy over root.
func runScanPass(cmd *cobra.Command, root string) (*scanner.Result, error) {
	opts := scanner.Options{
		MaxDepth:       cfg.Scanner.MaxDepth,
		FollowSymlinks: cfg.Scanner.FollowSymlinks,
		SkipHidden:     cfg.Scanner.SkipHidden,
		Workers:        cfg.Scanner.Workers,
		Tracker:        progress.NewTracker(),
	}
	if cmd.Flags().Changed("max-depth") {
		opts.MaxDepth = flagMaxDepth
	}
	if cmd.Flags().Changed("skip-hidden") {
		opts.SkipHidden = flagSkipHidden
	}
	if cmd.Flags().Changed("follow-symlinks") {
		opts.FollowSymlinks = flagSymlinks
	}
	if flagWorkers > 0 {
		opts.Workers = flagWorkers
	}

	s := scanner.New(opts)

	parallel := cfg.Scanner.Parallel && !flagSequential
	if parallel {
		return s.ScanParallel(cmd.Context(), root)
	}
	return s.Scan(cmd.Context(), root)
}

func resolveThreshold() (int64, error) {
	raw := cfg.Detector.SizeThreshold.Threshold
	if flagThreshold != "" {
		raw = flagThreshold
	}
	if raw == "" {
		return detect.DefaultSizeThreshold, nil
	}

	threshold, err := types.ParseSize(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %q: %w", raw, err)
	}
	return threshold, nil
}

// renderFindings prints the plan's entries through the selected
// formatter, largest first.
func renderFindings(root string, result *scanner.Result, p *plan.Plan) error {
	report := &output.Report{
		Source:         root,
		EntriesScanned: len(result.Entries),
		Duration:       result.Elapsed,
		DiskFree:       output.DiskFree(root),
	}

	for _, e := range p.Entries {
		report.Findings = append(report.Findings, output.Finding{
			Path:      e.Path,
			Size:      e.Size,
			SizeHuman: humanize.IBytes(uint64(e.Size)),
			Rule:      e.RuleName,
			Reason:    e.Reason,
			IsDir:     e.RuleName == detect.RuleBuildArtifact,
		})
	}
	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].Size > report.Findings[j].Size
	})

	for _, scanErr := range result.Errors {
		report.Warnings = append(report.Warnings, scanErr.Error())
	}

	formatter, err := output.Get(flagOutput)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return err
	}
	fmt.Print(buf.String())

	return nil
}
