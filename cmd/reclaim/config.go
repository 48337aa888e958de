package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/reclaim/pkg/reclaim/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE:  runConfigShow,
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		RunE:  runConfigInit,
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	printInfo("scanner:")
	printInfo("  max_depth: %d", cfg.Scanner.MaxDepth)
	printInfo("  follow_symlinks: %t", cfg.Scanner.FollowSymlinks)
	printInfo("  skip_hidden: %t", cfg.Scanner.SkipHidden)
	printInfo("  parallel: %t", cfg.Scanner.Parallel)
	printInfo("  workers: %d", cfg.Scanner.Workers)

	printInfo("detector:")
	printInfo("  size_threshold: enabled=%t threshold=%s",
		cfg.Detector.SizeThreshold.Enabled, cfg.Detector.SizeThreshold.Threshold)
	printInfo("  build_artifacts: enabled=%t patterns=[%s]",
		cfg.Detector.BuildArtifacts.Enabled,
		strings.Join(cfg.Detector.BuildArtifacts.CustomPatterns, ", "))
	for _, rule := range cfg.Detector.CustomRules {
		printInfo("  custom_rule: %s (%s)", rule.Name, rule.Description)
	}

	printInfo("verifier:")
	printInfo("  check_size: %t", cfg.Verifier.CheckSize)
	printInfo("  check_mtime: %t", cfg.Verifier.CheckMtime)
	printInfo("  fail_fast: %t", cfg.Verifier.FailFast)

	printInfo("executor:")
	printInfo("  parallel: %t", cfg.Executor.Parallel)
	printInfo("  batch_size: %d", cfg.Executor.BatchSize)
	printInfo("  fail_fast: %t", cfg.Executor.FailFast)
	printInfo("  use_recycle_bin: %t", cfg.Executor.UseRecycleBin)
	printInfo("  backup_dir: %s", cfg.Executor.BackupDir)

	printInfo("history:")
	printInfo("  enabled: %t", cfg.History.Enabled)
	printInfo("  path: %s", cfg.HistoryPath())
	printInfo("  retention_days: %d", cfg.History.RetentionDays)

	printInfo("logging:")
	printInfo("  level: %s", cfg.Logging.Level)
	printInfo("  file: %s", cfg.LogPath())

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir, err := config.EnsureConfigDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	if err := config.WriteDefault(path); err != nil {
		return err
	}

	printInfo("Wrote %s", path)
	return nil
}
