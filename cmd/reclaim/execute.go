package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/reclaim/pkg/reclaim/exec"
	"github.com/jamesainslie/reclaim/pkg/reclaim/history"
	"github.com/jamesainslie/reclaim/pkg/reclaim/logging"
	"github.com/jamesainslie/reclaim/pkg/reclaim/output"
	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
	"github.com/jamesainslie/reclaim/pkg/reclaim/progress"
)

var (
	flagDryRun      bool
	flagInteractive bool
	flagParallel    bool
	flagBatchSize   int
	flagFailFast    bool
	flagBackupDir   string
	flagRecycleBin  bool
	flagSkipVerify  bool
	flagTxLog       string
	flagExecWorkers int

	executeCmd = &cobra.Command{
		Use:   "execute <plan>",
		Short: "Apply a cleanup plan",
		Long: `Execute carries out the Delete entries of a reviewed plan. The plan
is verified against the disk first; entries marked Keep or Review are
never touched. Every operation is recorded in a transaction log next to
the plan.`,
		Args: cobra.ExactArgs(1),
		RunE: runExecute,
	}
)

func init() {
	executeCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "d", false, "report what would be deleted without deleting")
	executeCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "confirm each entry")
	executeCmd.Flags().BoolVar(&flagParallel, "parallel", false, "delete in parallel batches")
	executeCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "parallel batch size (0=config default)")
	executeCmd.Flags().BoolVar(&flagFailFast, "fail-fast", false, "stop at the first failed operation")
	executeCmd.Flags().StringVar(&flagBackupDir, "backup-dir", "", "move entries here instead of deleting")
	executeCmd.Flags().BoolVar(&flagRecycleBin, "recycle-bin", false, "move entries to the system recycle bin")
	executeCmd.Flags().BoolVar(&flagSkipVerify, "skip-verify", false, "skip pre-execution verification")
	executeCmd.Flags().StringVar(&flagTxLog, "log", "", "transaction log path (default: <plan>.log.yaml)")
	executeCmd.Flags().IntVar(&flagExecWorkers, "workers", 0, "parallel worker count (0=auto)")

	rootCmd.AddCommand(executeCmd)
}

func runExecute(cmd *cobra.Command, args []string) error {
	logger := logging.Get("execute")
	planPath := args[0]

	p, err := plan.Load(planPath)
	if err != nil {
		return err
	}

	if !flagSkipVerify {
		result, err := verifyPlanFile(planPath)
		if err != nil {
			return err
		}
		if !result.SafeToExecute() {
			printInfo("%s", output.RenderVerification(result))
			return fmt.Errorf("%w (re-scan, or pass --skip-verify to override)", ErrPlanUnsafe)
		}
	}

	execCfg := executionConfig(cmd, planPath)

	txLogPath := flagTxLog
	if txLogPath == "" {
		txLogPath = planPath + ".log.yaml"
	}
	txLogger, err := exec.NewTransactionLogger(planPath, txLogPath, execCfg.Mode, exec.LogOptions{
		DryRun:        execCfg.Mode == exec.ModeDryRun,
		BackupDir:     execCfg.BackupDir,
		UseRecycleBin: execCfg.UseRecycleBin,
		FailFast:      execCfg.FailFast,
		Parallel:      execCfg.Parallel,
		BatchSize:     execCfg.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("creating transaction log: %w", err)
	}
	execCfg.Logger = txLogger

	engine := exec.NewEngine(execCfg)
	result, execErr := engine.Execute(p)

	if result != nil {
		dryRun := execCfg.Mode == exec.ModeDryRun
		printInfo("%s", output.RenderExecutionSummary(result.Summary, dryRun))
		printInfo("Transaction log: %s", txLogPath)

		recordHistory(history.Record{
			Kind:       history.KindExecution,
			PlanFile:   planPath,
			Operations: result.Summary.TotalOperations,
			Failed:     result.Summary.Failed,
			SpaceFreed: result.Summary.SpaceFreed,
			DurationMS: result.Summary.Duration.Milliseconds(),
		})
	}

	if execErr != nil {
		if errors.Is(execErr, exec.ErrUserAborted) {
			printInfo("Aborted; completed operations are in the transaction log.")
		}
		logger.Error("execution failed", "error", execErr)
		return execErr
	}
	return nil
}

// executionConfig resolves flags over configuration. Dry-run takes
// priority over interactive, which takes priority over batch.
func executionConfig(cmd *cobra.Command, planPath string) exec.Config {
	mode := exec.ModeBatch
	switch {
	case flagDryRun:
		mode = exec.ModeDryRun
	case flagInteractive:
		mode = exec.ModeInteractive
	}

	execCfg := exec.Config{
		Mode:          mode,
		BackupDir:     cfg.Executor.BackupDir,
		UseRecycleBin: cfg.Executor.UseRecycleBin,
		FailFast:      cfg.Executor.FailFast,
		Parallel:      cfg.Executor.Parallel,
		BatchSize:     cfg.Executor.BatchSize,
		Workers:       flagExecWorkers,
		PlanFile:      planPath,
		Tracker:       progress.NewTracker(),
	}

	if cmd.Flags().Changed("backup-dir") {
		execCfg.BackupDir = flagBackupDir
	}
	if cmd.Flags().Changed("recycle-bin") {
		execCfg.UseRecycleBin = flagRecycleBin
	}
	if cmd.Flags().Changed("fail-fast") {
		execCfg.FailFast = flagFailFast
	}
	if cmd.Flags().Changed("parallel") {
		execCfg.Parallel = flagParallel
	}
	if flagBatchSize > 0 {
		execCfg.BatchSize = flagBatchSize
	}

	if mode == exec.ModeInteractive {
		execCfg.Prompter = newStdinPrompter()
	}

	return execCfg
}
