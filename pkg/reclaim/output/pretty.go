package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats findings with colors and styling using
// lipgloss, suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

func (f *PrettyFormatter) formatHeader(r *Report) string {
	var lines []string

	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	var infoParts []string

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%d entries in %s",
		r.EntriesScanned, formatDuration(r.Duration)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	if r.DiskFree > 0 {
		freeLabel := LabelStyle.Render("Free:")
		freeValue := SizeStyle.Render(humanize.IBytes(r.DiskFree))
		infoParts = append(infoParts, fmt.Sprintf("%s %s", freeLabel, freeValue))
	}

	lines = append(lines, strings.Join(infoParts, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTable builds the findings table with SIZE, RULE, and PATH columns.
func (f *PrettyFormatter) formatTable(r *Report) string {
	if len(r.Findings) == 0 {
		return MutedStyle.Render("  Nothing to reclaim\n")
	}

	var sb strings.Builder

	sizeHeader := TableHeaderStyle.Render("SIZE")
	ruleHeader := TableHeaderStyle.Render("RULE")
	pathHeader := TableHeaderStyle.Render("PATH")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", sizeHeader, ruleHeader, pathHeader))

	sizeWidth := 8
	ruleWidth := 4
	for _, finding := range r.Findings {
		if len(finding.SizeHuman) > sizeWidth {
			sizeWidth = len(finding.SizeHuman)
		}
		if len(finding.Rule) > ruleWidth {
			ruleWidth = len(finding.Rule)
		}
	}

	for _, finding := range r.Findings {
		sizeStr := SizeStyle.Render(padLeft(finding.SizeHuman, sizeWidth))
		ruleStr := RuleStyle.Render(padRight(finding.Rule, ruleWidth))
		path := finding.Path
		if finding.IsDir {
			path += "/"
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", sizeStr, ruleStr, PathStyle.Render(path)))
	}

	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Report) string {
	var parts []string

	countLabel := LabelStyle.Render("Flagged:")
	countValue := ValueStyle.Render(fmt.Sprintf("%d", len(r.Findings)))
	parts = append(parts, fmt.Sprintf("%s %s", countLabel, countValue))

	totalLabel := LabelStyle.Render("Reclaimable:")
	totalValue := SizeStyle.Render(humanize.IBytes(uint64(r.TotalSize())))
	parts = append(parts, fmt.Sprintf("%s %s", totalLabel, totalValue))

	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	return FooterBox.Render(strings.Join(parts, "  "))
}

func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatDuration renders a duration with sensible precision.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}
