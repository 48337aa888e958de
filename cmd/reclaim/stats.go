package main

import (
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/reclaim/pkg/reclaim/output"
	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
)

var statsCmd = &cobra.Command{
	Use:   "stats <plan>",
	Short: "Summarize a cleanup plan without executing it",
	Long: `Stats loads a plan and prints what executing it would do: entry
counts per action, reclaimable bytes, and a per-rule breakdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}

	printInfo("Plan:        %s", args[0])
	printInfo("Base path:   %s", p.BasePath)
	printInfo("Created:     %s", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	printInfo("Entries:     %d", len(p.Entries))
	printInfo("  delete:    %d", p.CountByAction(plan.ActionDelete))
	printInfo("  review:    %d", p.CountByAction(plan.ActionReview))
	printInfo("  keep:      %d", p.CountByAction(plan.ActionKeep))
	printInfo("Total size:  %s", humanize.IBytes(uint64(p.TotalSize())))
	printInfo("Reclaimable: %s", humanize.IBytes(uint64(p.DeleteSize())))
	if free := output.DiskFree(p.BasePath); free > 0 {
		printInfo("Disk free:   %s", humanize.IBytes(free))
	}

	byRule := ruleBreakdown(p)
	if len(byRule) > 0 {
		printInfo("")
		printInfo("By rule:")
		for _, rs := range byRule {
			printInfo("  %-16s %4d entries  %10s", rs.rule, rs.count,
				humanize.IBytes(uint64(rs.size)))
		}
	}

	return nil
}

type ruleStat struct {
	rule  string
	count int
	size  int64
}

// ruleBreakdown aggregates entries per rule, largest total first.
func ruleBreakdown(p *plan.Plan) []ruleStat {
	byRule := make(map[string]*ruleStat)
	for _, e := range p.Entries {
		rs, ok := byRule[e.RuleName]
		if !ok {
			rs = &ruleStat{rule: e.RuleName}
			byRule[e.RuleName] = rs
		}
		rs.count++
		rs.size += e.Size
	}

	stats := make([]ruleStat, 0, len(byRule))
	for _, rs := range byRule {
		stats = append(stats, *rs)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].size != stats[j].size {
			return stats[i].size > stats[j].size
		}
		return stats[i].rule < stats[j].rule
	})
	return stats
}
