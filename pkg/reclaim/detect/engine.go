package detect

import (
	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

// Detection pairs a flagged entry with the rule that flagged it.
type Detection struct {
	// Entry is the flagged filesystem object.
	Entry types.FileEntry

	// RuleName names the rule that produced the detection.
	RuleName string

	// Reason is the human-readable explanation.
	Reason string
}

// Engine applies an ordered rule list to entries. Rule order is
// semantically significant: the first matching rule wins and the entry
// is flagged at most once.
type Engine struct {
	rules  []Rule
	policy *Policy
}

// NewEngine creates an engine with the default rules (size threshold,
// then build artifacts) and the default protection policy.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			SizeThresholdRule{Threshold: DefaultSizeThreshold},
			NewBuildArtifactRule(),
		},
		policy: DefaultPolicy(),
	}
}

// Empty creates an engine with no rules and the default protection
// policy. Rules are added in the order they should match.
func Empty() *Engine {
	return &Engine{policy: DefaultPolicy()}
}

// AddRule appends a rule. Later rules only see entries no earlier rule
// matched.
func (e *Engine) AddRule(r Rule) {
	e.rules = append(e.rules, r)
}

// SetPolicy replaces the protection policy. A nil policy disables
// exclusion entirely.
func (e *Engine) SetPolicy(p *Policy) {
	e.policy = p
}

// RuleCount returns the number of registered rules.
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// Analyze returns one detection per entry that matches at least one
// rule. Entries the protection policy excludes never reach the rules.
// Output order follows input order; repeated calls with identical
// input produce identical output.
func (e *Engine) Analyze(entries []types.FileEntry, ctx Context) []Detection {
	var results []Detection

	for _, entry := range entries {
		if e.policy != nil && e.policy.Excluded(entry) {
			continue
		}
		for _, rule := range e.rules {
			if rule.Matches(entry, ctx) {
				results = append(results, Detection{
					Entry:    entry,
					RuleName: rule.Name(),
					Reason:   rule.Reason(),
				})
				break
			}
		}
	}

	return results
}
