// Package verify re-examines the filesystem against a previously
// generated plan and classifies drift. Verification is the gate
// between plan creation and execution: a plan is safe to execute only
// when nothing it names has gone missing or changed.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
	"github.com/jamesainslie/reclaim/pkg/reclaim/scanner"
)

// MtimeTolerance absorbs filesystem timestamp resolution limits; some
// filesystems keep only 2-second precision. Independent of whether the
// mtime check is enabled.
const MtimeTolerance = 2 * time.Second

// CheckConfig selects which verification checks run.
type CheckConfig struct {
	// CheckSize compares recorded against current sizes.
	CheckSize bool

	// CheckMtime compares recorded against current modification
	// times, within MtimeTolerance.
	CheckMtime bool

	// FailFast stops the pass at the first missing or drifted entry.
	FailFast bool
}

// DefaultCheckConfig enables both checks without fail-fast.
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{CheckSize: true, CheckMtime: true, FailFast: false}
}

// DriftKind classifies a drift detection.
type DriftKind string

const (
	// DriftSize is a size mismatch.
	DriftSize DriftKind = "size_mismatch"

	// DriftMtime is a modification time beyond tolerance.
	DriftMtime DriftKind = "mtime_mismatch"
)

// Drift records one detected change since plan creation.
type Drift struct {
	// Path is the absolute path that drifted.
	Path string

	// Kind is the drift classification.
	Kind DriftKind

	// Expected and Actual are display strings of the recorded and
	// observed values.
	Expected string
	Actual   string
}

// Result classifies every examined plan entry.
type Result struct {
	// TotalEntries is the number of entries in the plan.
	TotalEntries int

	// Verified is the number of entries confirmed unchanged. Keep
	// entries count as verified without inspection.
	Verified int

	// Drifted lists entries whose size or mtime changed.
	Drifted []Drift

	// Missing lists absolute paths that no longer exist.
	Missing []string

	// PermissionErrors lists paths whose metadata could not be read.
	// Warnings only; they never block execution.
	PermissionErrors []string
}

// HasDrift reports whether anything went missing or changed.
func (r *Result) HasDrift() bool {
	return len(r.Drifted) > 0 || len(r.Missing) > 0
}

// SafeToExecute reports whether the plan may proceed to execution.
// Permission errors represent an inability to confirm, not evidence of
// change, and never block on their own.
func (r *Result) SafeToExecute() bool {
	return !r.HasDrift()
}

// Engine verifies plans against current filesystem state.
type Engine struct {
	config CheckConfig
}

// NewEngine creates a verification engine.
func NewEngine(config CheckConfig) *Engine {
	return &Engine{config: config}
}

// Verify examines every entry whose disposition is not Keep and
// classifies it as verified, missing, drifted, or unreadable. Finding
// problems is not an error; the caller checks the result's safety
// predicate. An error is returned only for malformed plan data.
func (e *Engine) Verify(p *plan.Plan) (*Result, error) {
	result := &Result{TotalEntries: len(p.Entries)}

	for _, entry := range p.Entries {
		// Keep entries are never touched, so they are trivially
		// verified without inspection.
		if entry.Action == plan.ActionKeep {
			result.Verified++
			continue
		}

		fullPath := resolve(p.BasePath, entry.Path)

		info, err := os.Lstat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				result.Missing = append(result.Missing, fullPath)
				if e.config.FailFast {
					return result, nil
				}
			} else {
				result.PermissionErrors = append(result.PermissionErrors, fullPath)
			}
			continue
		}

		if e.config.CheckSize {
			var current int64
			if info.IsDir() {
				current = scanner.DirSize(fullPath)
			} else {
				current = info.Size()
			}

			if current != entry.Size {
				result.Drifted = append(result.Drifted, Drift{
					Path:     fullPath,
					Kind:     DriftSize,
					Expected: fmt.Sprintf("%d bytes", entry.Size),
					Actual:   fmt.Sprintf("%d bytes", current),
				})
				if e.config.FailFast {
					return result, nil
				}
				continue
			}
		}

		if e.config.CheckMtime {
			expected, err := entry.ModifiedTime()
			if err != nil {
				return nil, err
			}

			diff := info.ModTime().Sub(expected)
			if diff < 0 {
				diff = -diff
			}
			if diff > MtimeTolerance {
				result.Drifted = append(result.Drifted, Drift{
					Path:     fullPath,
					Kind:     DriftMtime,
					Expected: entry.Modified,
					Actual:   info.ModTime().UTC().Format(time.RFC3339),
				})
				if e.config.FailFast {
					return result, nil
				}
				continue
			}
		}

		result.Verified++
	}

	return result, nil
}

// resolve joins a plan-relative entry path onto the base path,
// honoring the sentinel for the base itself.
func resolve(basePath, entryPath string) string {
	if entryPath == plan.Sentinel {
		return basePath
	}
	return filepath.Join(basePath, entryPath)
}
