package verify

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
)

// RenderReport produces a human-readable drift report.
func RenderReport(result *Result) string {
	var b strings.Builder

	b.WriteString("# Plan Verification Report\n\n")

	fmt.Fprintf(&b, "Total entries: %d\n", result.TotalEntries)
	fmt.Fprintf(&b, "Verified: %d\n", result.Verified)
	fmt.Fprintf(&b, "Drifted: %d\n", len(result.Drifted))
	fmt.Fprintf(&b, "Missing: %d\n", len(result.Missing))
	fmt.Fprintf(&b, "Permission errors: %d\n\n", len(result.PermissionErrors))

	if result.SafeToExecute() {
		b.WriteString("SAFE TO EXECUTE\n\n")
	} else {
		b.WriteString("DRIFT DETECTED - NOT SAFE TO EXECUTE\n\n")
	}

	if len(result.Missing) > 0 {
		b.WriteString("## Missing Files\n\n")
		b.WriteString("The following files were in the plan but no longer exist:\n\n")
		for _, path := range result.Missing {
			fmt.Fprintf(&b, "- %s\n", path)
		}
		b.WriteString("\n")
	}

	if len(result.Drifted) > 0 {
		b.WriteString("## Drifted Files\n\n")
		b.WriteString("The following files have changed since the plan was created:\n\n")
		for _, drift := range result.Drifted {
			fmt.Fprintf(&b, "### %s\n", drift.Path)
			fmt.Fprintf(&b, "Type: %s\n", driftKindLabel(drift.Kind))
			fmt.Fprintf(&b, "Expected: %s\n", drift.Expected)
			fmt.Fprintf(&b, "Actual: %s\n\n", drift.Actual)
		}
	}

	if len(result.PermissionErrors) > 0 {
		b.WriteString("## Permission Warnings\n\n")
		b.WriteString("The following files could not be verified due to permission errors.\n")
		b.WriteString("These are warnings only and will not block execution:\n\n")
		for _, path := range result.PermissionErrors {
			fmt.Fprintf(&b, "- %s\n", path)
		}
		b.WriteString("\n")
	}

	if !result.SafeToExecute() {
		b.WriteString("## Recommendations\n\n")
		b.WriteString("The plan cannot be safely executed due to detected drift.\n")
		b.WriteString("Consider one of the following actions:\n\n")
		b.WriteString("1. Re-scan the directory to generate a fresh plan\n")
		b.WriteString("2. Manually review the changes and update the plan file\n")
		b.WriteString("3. If changes are expected, use --skip-verify flag (not recommended)\n\n")
	}

	return b.String()
}

// WriteReport renders the report and writes it to a file atomically.
func WriteReport(result *Result, path string) error {
	return plan.WriteFileAtomic(path, []byte(RenderReport(result)))
}

func driftKindLabel(kind DriftKind) string {
	switch kind {
	case DriftSize:
		return "Size Mismatch"
	case DriftMtime:
		return "Modification Time Mismatch"
	default:
		return string(kind)
	}
}
