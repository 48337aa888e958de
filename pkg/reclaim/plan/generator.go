package plan

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jamesainslie/reclaim/pkg/reclaim/detect"
)

// Generator converts detection results into a cleanup plan.
type Generator struct {
	basePath string
	policy   *detect.Policy

	// now is the plan timestamp source; replaceable in tests.
	now func() time.Time
}

// NewGenerator creates a generator for the given base path.
func NewGenerator(basePath string) *Generator {
	return &Generator{
		basePath: basePath,
		policy:   detect.DefaultPolicy(),
		now:      time.Now,
	}
}

// BasePath returns the generator's base path.
func (g *Generator) BasePath() string {
	return g.basePath
}

// Generate builds a plan from detections.
//
// Detections are sorted by path length ascending so a parent directory
// is always visited no later than its descendants. Strict descendants
// of directories already assigned Delete are dropped from the plan
// entirely: deleting the parent accounts for them. Default actions
// come from the rule identity; protected project-root paths are forced
// to Review as a second safety layer.
func (g *Generator) Generate(detections []detect.Detection) *Plan {
	p := &Plan{
		Version:   Version,
		CreatedAt: g.now().UTC(),
		BasePath:  g.basePath,
	}

	sorted := make([]detect.Detection, len(detections))
	copy(sorted, detections)
	sortByPathLength(sorted)

	var deletedDirs []string

	for _, d := range sorted {
		if underAny(d.Entry.Path, deletedDirs) {
			continue
		}

		action := defaultActionForRule(d.RuleName)
		if g.policy != nil && d.Entry.IsDir() && g.policy.IsProjectRoot(d.Entry.Path) {
			action = ActionReview
		}

		if d.Entry.IsDir() && action == ActionDelete {
			deletedDirs = append(deletedDirs, d.Entry.Path)
		}

		p.Entries = append(p.Entries, Entry{
			Path:     g.relativize(d.Entry.Path),
			Size:     d.Entry.Size,
			Modified: d.Entry.Modified.UTC().Format(time.RFC3339),
			Action:   action,
			RuleName: d.RuleName,
			Reason:   d.Reason,
		})
	}

	return p
}

// defaultActionForRule maps rule identity to a default disposition.
// Build artifacts are regenerable and default to Delete; everything
// else, including unrecognized custom rules, defaults to Review.
func defaultActionForRule(ruleName string) Action {
	switch ruleName {
	case detect.RuleBuildArtifact:
		return ActionDelete
	default:
		return ActionReview
	}
}

// relativize rewrites an absolute path relative to the base path,
// substituting the sentinel when they are equal.
func (g *Generator) relativize(path string) string {
	rel, err := filepath.Rel(g.basePath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	if rel == "." {
		return Sentinel
	}
	return rel
}

// sortByPathLength orders detections by path length ascending, with
// the path itself as a tie-breaker for stable output.
func sortByPathLength(detections []detect.Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		a, b := detections[i].Entry.Path, detections[j].Entry.Path
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}

// underAny reports whether path is a strict descendant of any of the
// given directories.
func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path != dir && strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
