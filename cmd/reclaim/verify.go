package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/reclaim/pkg/reclaim/logging"
	"github.com/jamesainslie/reclaim/pkg/reclaim/output"
	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
	"github.com/jamesainslie/reclaim/pkg/reclaim/verify"
)

// ErrPlanUnsafe signals a failed verification through the exit code.
var ErrPlanUnsafe = errors.New("plan is not safe to execute")

var (
	flagReport string

	verifyCmd = &cobra.Command{
		Use:   "verify <plan>",
		Short: "Check a plan against the current filesystem state",
		Long: `Verify confirms every entry in the plan still matches the disk:
nothing missing, no size or modification-time drift. Execution should
only proceed on a plan that verifies cleanly.`,
		Args: cobra.ExactArgs(1),
		RunE: runVerify,
	}
)

func init() {
	verifyCmd.Flags().StringVar(&flagReport, "report", "", "write a markdown verification report to this file")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	result, err := verifyPlanFile(args[0])
	if err != nil {
		return err
	}

	printInfo("%s", output.RenderVerification(result))

	if flagReport != "" {
		if err := verify.WriteReport(result, flagReport); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		printInfo("Report written to %s", flagReport)
	}

	if !result.SafeToExecute() {
		return ErrPlanUnsafe
	}
	return nil
}

// verifyPlanFile loads and verifies a plan with the configured checks.
func verifyPlanFile(planPath string) (*verify.Result, error) {
	p, err := plan.Load(planPath)
	if err != nil {
		return nil, err
	}

	engine := verify.NewEngine(verify.CheckConfig{
		CheckSize:  cfg.Verifier.CheckSize,
		CheckMtime: cfg.Verifier.CheckMtime,
		FailFast:   cfg.Verifier.FailFast,
	})

	result, err := engine.Verify(p)
	if err != nil {
		return nil, err
	}

	logging.Get("verify").Info("verification complete",
		"entries", result.TotalEntries,
		"verified", result.Verified,
		"drifted", len(result.Drifted),
		"missing", len(result.Missing))

	return result, nil
}
