package output

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/reclaim/pkg/reclaim/exec"
	"github.com/jamesainslie/reclaim/pkg/reclaim/verify"
)

// RenderExecutionSummary renders the post-execution summary box.
func RenderExecutionSummary(s exec.Summary, dryRun bool) string {
	var lines []string

	title := "Execution complete"
	if dryRun {
		title = "Dry run complete"
	}
	lines = append(lines, TitleStyle.Render(title))

	var parts []string
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Operations:"),
		ValueStyle.Render(fmt.Sprintf("%d", s.TotalOperations))))
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Succeeded:"),
		SuccessStyle.Render(fmt.Sprintf("%d", s.Successful))))

	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Failed:"),
			ErrorStyle.Render(fmt.Sprintf("%d", s.Failed))))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Skipped:"),
			MutedStyle.Render(fmt.Sprintf("%d", s.Skipped))))
	}
	lines = append(lines, strings.Join(parts, "  "))

	freedLabel := "Freed:"
	if dryRun {
		freedLabel = "Would free:"
	}
	lines = append(lines, fmt.Sprintf("%s %s %s",
		LabelStyle.Render(freedLabel),
		SizeStyle.Render(humanize.IBytes(uint64(s.SpaceFreed))),
		MutedStyle.Render("in "+formatDuration(s.Duration))))

	return FooterBox.Render(strings.Join(lines, "\n"))
}

// RenderVerification renders a one-screen verification verdict.
func RenderVerification(res *verify.Result) string {
	var lines []string

	var parts []string
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Entries:"),
		ValueStyle.Render(fmt.Sprintf("%d", res.TotalEntries))))
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Verified:"),
		SuccessStyle.Render(fmt.Sprintf("%d", res.Verified))))
	if len(res.Drifted) > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Drifted:"),
			ErrorStyle.Render(fmt.Sprintf("%d", len(res.Drifted)))))
	}
	if len(res.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Missing:"),
			WarningStyle.Render(fmt.Sprintf("%d", len(res.Missing)))))
	}
	if len(res.PermissionErrors) > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Permission warnings:"),
			WarningStyle.Render(fmt.Sprintf("%d", len(res.PermissionErrors)))))
	}
	lines = append(lines, strings.Join(parts, "  "))

	if res.SafeToExecute() {
		lines = append(lines, SuccessStyle.Bold(true).Render("Safe to execute"))
	} else {
		lines = append(lines, ErrorStyle.Bold(true).Render("Not safe to execute"))
	}

	return FooterBox.Render(strings.Join(lines, "\n"))
}
