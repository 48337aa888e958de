package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/reclaim/pkg/reclaim/config"
	"github.com/jamesainslie/reclaim/pkg/reclaim/detect"
	"github.com/jamesainslie/reclaim/pkg/reclaim/history"
	"github.com/jamesainslie/reclaim/pkg/reclaim/logging"
	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

var (
	cfg *config.Config

	flagOutput  string
	flagQuiet   bool
	flagVerbose bool

	rootCmd = &cobra.Command{
		Use:   "reclaim",
		Short: "Find and safely remove disk space hogs",
		Long: `Reclaim scans directories for large files and build artifacts,
writes a reviewable cleanup plan, and executes the plan only after
verifying nothing changed underneath it.

Examples:
  reclaim scan ~/projects              # Scan and write reclaim-plan.yaml
  reclaim stats reclaim-plan.yaml      # Summarize a plan without executing
  reclaim verify reclaim-plan.yaml     # Check the plan against the disk
  reclaim execute reclaim-plan.yaml    # Apply the plan
  reclaim execute -d reclaim-plan.yaml # Preview without touching anything
  reclaim history                      # Past scans and executions`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded

			level := cfg.Logging.Level
			if flagVerbose {
				level = "debug"
			}
			return logging.Init(logging.Config{
				Level:      level,
				Path:       cfg.LogPath(),
				Rotation:   logging.DefaultRotationConfig(),
				Components: cfg.Logging.Components,
			})
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "pretty", "output format (pretty, plain, json)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func printInfo(format string, args ...interface{}) {
	if !flagQuiet {
		fmt.Printf(format+"\n", args...)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// buildEngine assembles the detection engine the way an interactive run
// wants it: the artifact rule runs before the size rule so artifact
// directories keep their specific reason, then custom rules follow.
func buildEngine(threshold int64) (*detect.Engine, error) {
	engine := detect.Empty()

	if cfg.Detector.BuildArtifacts.Enabled {
		if patterns := cfg.Detector.BuildArtifacts.CustomPatterns; len(patterns) > 0 {
			engine.AddRule(detect.NewBuildArtifactRuleWithPatterns(patterns))
		} else {
			engine.AddRule(detect.NewBuildArtifactRule())
		}
	}

	if cfg.Detector.SizeThreshold.Enabled {
		engine.AddRule(detect.SizeThresholdRule{Threshold: threshold})
	}

	for _, rc := range cfg.Detector.CustomRules {
		rule, err := customRule(rc)
		if err != nil {
			return nil, err
		}
		engine.AddRule(rule)
	}

	return engine, nil
}

func customRule(rc config.CustomRuleConfig) (*detect.CustomRule, error) {
	if rc.Name == "" {
		return nil, fmt.Errorf("custom rule is missing a name")
	}

	rule := &detect.CustomRule{
		RuleName:    rc.Name,
		Description: rc.Description,
		Pattern:     rc.Pattern,
		Extensions:  rc.Extensions,
		MinAge:      time.Duration(rc.MinAgeDays) * 24 * time.Hour,
	}

	if rc.MinSize != "" {
		size, err := types.ParseSize(rc.MinSize)
		if err != nil {
			return nil, fmt.Errorf("custom rule %s: %w", rc.Name, err)
		}
		rule.MinSize = size
	}

	return rule, nil
}

// recordHistory appends a run record, logging failures without
// interrupting the command.
func recordHistory(rec history.Record) {
	if !cfg.History.Enabled {
		return
	}

	if _, err := config.EnsureDataDir(); err != nil {
		logging.Get("history").Warn("cannot create data dir", "error", err)
		return
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.Get("history").Warn("cannot open history store", "error", err)
		return
	}
	defer store.Close()

	if _, err := store.Append(rec); err != nil {
		logging.Get("history").Warn("cannot record history", "error", err)
	}
}
