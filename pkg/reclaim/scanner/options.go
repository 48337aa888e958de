// Package scanner walks a directory tree and produces entry records
// with sizes, modification times, and types. Two traversal strategies
// are provided: a single-threaded depth-first walk and a two-phase
// parallel strategy that enumerates paths first, then computes metadata
// across a worker pool. Both produce the same set of entries.
package scanner

import (
	"runtime"

	"github.com/jamesainslie/reclaim/pkg/reclaim/progress"
)

// Options configures scanner behavior.
type Options struct {
	// MaxDepth limits how many levels below the root are included in
	// results. 0 means unlimited. Directory sizes always account for
	// deeper content regardless of this limit.
	MaxDepth int

	// FollowSymlinks resolves symbolic links during traversal. When
	// false (the default), symlinks are skipped entirely.
	FollowSymlinks bool

	// SkipHidden excludes hidden entries and their subtrees from
	// results. Hidden detection is platform-aware: the native hidden
	// attribute on Windows, a leading dot elsewhere.
	SkipHidden bool

	// Workers is the worker pool size for the parallel strategy.
	Workers int

	// Tracker receives live progress updates. Optional.
	Tracker *progress.Tracker
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth:       0,
		FollowSymlinks: false,
		SkipHidden:     false,
		Workers:        runtime.NumCPU(),
	}
}

// Validate applies defaults for invalid values.
func (o *Options) Validate() error {
	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	return nil
}
