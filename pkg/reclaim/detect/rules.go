// Package detect applies ordered, pluggable rules to scan results to
// identify cleanup candidates. Each entry is flagged at most once: the
// first matching rule wins, so rule order is part of the contract. A
// protection policy excludes source trees and project roots from
// consideration before any rule runs.
package detect

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

// Context carries scan-wide information available to rules.
type Context struct {
	// BasePath is the root that was scanned.
	BasePath string

	// ScanTime is the moment the scan was taken. Rules that reason
	// about entry age use this instead of the wall clock so repeated
	// analysis of the same scan is deterministic.
	ScanTime time.Time
}

// Rule identifies cleanup candidates. Implementations must be
// deterministic: the same entry and context always produce the same
// answer.
type Rule interface {
	// Name identifies the rule in detections and plans.
	Name() string

	// Matches reports whether the entry should be flagged.
	Matches(entry types.FileEntry, ctx Context) bool

	// Reason explains why flagged entries were flagged.
	Reason() string
}

// RuleSizeThreshold and RuleBuildArtifact are the built-in rule names
// recorded in plans.
const (
	RuleSizeThreshold = "large_file"
	RuleBuildArtifact = "build_artifact"
)

// DefaultSizeThreshold is the built-in size rule's threshold.
const DefaultSizeThreshold = 100 * types.MiB

// SizeThresholdRule flags any entry, file or directory, whose size is
// at or above the threshold.
type SizeThresholdRule struct {
	// Threshold is the minimum size in bytes to flag.
	Threshold int64
}

// Name implements Rule.
func (r SizeThresholdRule) Name() string { return RuleSizeThreshold }

// Matches implements Rule.
func (r SizeThresholdRule) Matches(entry types.FileEntry, _ Context) bool {
	return entry.Size >= r.Threshold
}

// Reason implements Rule.
func (r SizeThresholdRule) Reason() string {
	return fmt.Sprintf("exceeds size threshold of %s", types.FormatSize(r.Threshold))
}

// DefaultArtifactPatterns lists conventional generated-output directory
// names. Matching is exact and case-sensitive.
func DefaultArtifactPatterns() []string {
	return []string{
		"target",        // Rust
		"node_modules",  // Node.js
		"build",         // generic
		".next",         // Next.js
		"dist",          // build outputs
		"__pycache__",   // Python
		".pytest_cache", // pytest
		"bin",           // binaries
		"obj",           // C#/C++
	}
}

// BuildArtifactRule flags directories whose base name exactly matches
// one of a set of generated-output directory names. Files are never
// flagged, even when they share such a name.
type BuildArtifactRule struct {
	patterns []string
}

// NewBuildArtifactRule creates the rule with the default pattern set.
func NewBuildArtifactRule() *BuildArtifactRule {
	return &BuildArtifactRule{patterns: DefaultArtifactPatterns()}
}

// NewBuildArtifactRuleWithPatterns creates the rule with custom
// patterns.
func NewBuildArtifactRuleWithPatterns(patterns []string) *BuildArtifactRule {
	return &BuildArtifactRule{patterns: patterns}
}

// Name implements Rule.
func (r *BuildArtifactRule) Name() string { return RuleBuildArtifact }

// Matches implements Rule.
func (r *BuildArtifactRule) Matches(entry types.FileEntry, _ Context) bool {
	if !entry.IsDir() {
		return false
	}
	base := filepath.Base(entry.Path)
	for _, pattern := range r.patterns {
		if base == pattern {
			return true
		}
	}
	return false
}

// Reason implements Rule.
func (r *BuildArtifactRule) Reason() string {
	return "common build artifact directory"
}

// CustomRule is a user-declared rule loaded from configuration. All
// non-empty criteria must hold for an entry to match.
type CustomRule struct {
	// RuleName identifies the rule. Custom rule detections default to
	// the Review disposition downstream.
	RuleName string

	// Description explains the rule's intent; used as the reason.
	Description string

	// Pattern is an optional glob matched against the entry base name.
	Pattern string

	// Extensions optionally restricts matches to files with one of
	// these extensions (leading dot included).
	Extensions []string

	// MinSize optionally requires at least this many bytes.
	MinSize int64

	// MinAge optionally requires the entry to be unmodified for at
	// least this long before the scan time.
	MinAge time.Duration
}

// Name implements Rule.
func (r *CustomRule) Name() string { return r.RuleName }

// Matches implements Rule.
func (r *CustomRule) Matches(entry types.FileEntry, ctx Context) bool {
	base := filepath.Base(entry.Path)

	if r.Pattern != "" {
		matched, err := filepath.Match(r.Pattern, base)
		if err != nil || !matched {
			return false
		}
	}

	if len(r.Extensions) > 0 {
		if entry.IsDir() {
			return false
		}
		ext := filepath.Ext(entry.Path)
		found := false
		for _, e := range r.Extensions {
			if ext == e {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if r.MinSize > 0 && entry.Size < r.MinSize {
		return false
	}

	if r.MinAge > 0 && ctx.ScanTime.Sub(entry.Modified) < r.MinAge {
		return false
	}

	return r.Pattern != "" || len(r.Extensions) > 0 || r.MinSize > 0 || r.MinAge > 0
}

// Reason implements Rule.
func (r *CustomRule) Reason() string {
	if r.Description != "" {
		return r.Description
	}
	return fmt.Sprintf("matched custom rule %q", r.RuleName)
}
