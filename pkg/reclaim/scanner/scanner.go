package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

// Result holds the outcome of a scan pass.
type Result struct {
	// Root is the resolved absolute path that was scanned.
	Root string

	// Entries is the list of filesystem objects found. Ordering is
	// deterministic for the sequential strategy only; parallel scans
	// make no ordering guarantee.
	Entries []types.FileEntry

	// Errors collects per-entry failures encountered during the scan.
	// An error here means the corresponding entry was omitted.
	Errors []types.ScanError

	// Elapsed is the wall-clock duration of the scan.
	Elapsed time.Duration
}

// Scanner walks directory trees and collects entry records.
type Scanner struct {
	opts Options

	errors   []types.ScanError
	errorsMu sync.Mutex
}

// New creates a Scanner with the given options.
// Options are validated and defaults are applied.
func New(opts Options) *Scanner {
	_ = opts.Validate()
	return &Scanner{opts: opts}
}

// Scan performs a single-threaded depth-first walk from root.
// It fails if the root does not exist; per-entry failures below the
// root are collected into the result's error list instead.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	resolved, rootInfo, err := s.validateRoot(root)
	if err != nil {
		return nil, err
	}

	s.resetErrors()

	var entries []types.FileEntry
	size := s.walkSequential(ctx, resolved, 0, &entries)

	// The root itself is always part of the result.
	rootEntry := types.FileEntry{
		Path:     resolved,
		Size:     size,
		Modified: rootInfo.ModTime(),
		Type:     types.TypeDirectory,
		FileID:   fileID(rootInfo),
	}
	entries = append([]types.FileEntry{rootEntry}, entries...)
	s.track()

	return &Result{
		Root:    resolved,
		Entries: entries,
		Errors:  s.collectedErrors(),
		Elapsed: time.Since(start),
	}, nil
}

// ScanParallel performs a two-phase scan: enumerate every reachable
// path first, then compute metadata and directory sizes across a
// worker pool. The entry set matches Scan for the same input; ordering
// does not.
func (s *Scanner) ScanParallel(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	resolved, _, err := s.validateRoot(root)
	if err != nil {
		return nil, err
	}

	s.resetErrors()

	paths := s.enumerate(ctx, resolved)

	entries := make([]types.FileEntry, 0, len(paths))
	var entriesMu sync.Mutex

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				entry, ok := s.processPath(path)
				if !ok {
					continue
				}
				entriesMu.Lock()
				entries = append(entries, entry)
				entriesMu.Unlock()
				s.track()
			}
		}()
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			// Drain: stop feeding, let in-flight work finish.
		case jobs <- path:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	return &Result{
		Root:    resolved,
		Entries: entries,
		Errors:  s.collectedErrors(),
		Elapsed: time.Since(start),
	}, nil
}

// validateRoot resolves the root path to absolute and verifies it is
// an existing directory.
func (s *Scanner) validateRoot(root string) (string, os.FileInfo, error) {
	resolved, err := filepath.Abs(root)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, err
	}
	if !info.IsDir() {
		return "", nil, os.ErrInvalid
	}

	return resolved, info, nil
}

// walkSequential descends into dir, appending result entries and
// returning the total byte size of the subtree. Sizes account for all
// regular files beneath dir, including entries excluded from results
// by depth or hidden filtering. Unreadable subentries are skipped.
func (s *Scanner) walkSequential(ctx context.Context, dir string, depth int, entries *[]types.FileEntry) int64 {
	if ctx.Err() != nil {
		return 0
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		s.addError(dir, err)
		return 0
	}

	// Deterministic child order for the sequential strategy.
	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

	var total int64
	for _, child := range children {
		path := filepath.Join(dir, child.Name())

		info, ok := s.statChild(path, child)
		if !ok {
			continue
		}

		hidden := isHidden(path, child.Name())
		emit := s.shouldEmit(depth+1, hidden)

		if info.IsDir() {
			// Hidden subtrees contribute to size but never to results.
			sub := entries
			if s.opts.SkipHidden && hidden {
				sub = &[]types.FileEntry{}
			}

			size := s.walkSequential(ctx, path, depth+1, sub)
			total += size

			if emit {
				*entries = append(*entries, types.FileEntry{
					Path:     path,
					Size:     size,
					Modified: info.ModTime(),
					Type:     types.TypeDirectory,
					FileID:   fileID(info),
				})
				s.track()
			}
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		total += info.Size()
		if emit {
			*entries = append(*entries, types.FileEntry{
				Path:     path,
				Size:     info.Size(),
				Modified: info.ModTime(),
				Type:     types.TypeFile,
				FileID:   fileID(info),
			})
			s.track()
		}
	}

	return total
}

// statChild resolves metadata for a directory child, honoring the
// symlink policy. Returns false when the entry should be skipped.
func (s *Scanner) statChild(path string, child fs.DirEntry) (os.FileInfo, bool) {
	if child.Type()&fs.ModeSymlink != 0 {
		if !s.opts.FollowSymlinks {
			return nil, false
		}
		info, err := os.Stat(path)
		if err != nil {
			s.addError(path, err)
			return nil, false
		}
		return info, true
	}

	info, err := child.Info()
	if err != nil {
		s.addError(path, err)
		return nil, false
	}
	return info, true
}

// shouldEmit reports whether an entry at the given depth passes the
// depth and hidden filters.
func (s *Scanner) shouldEmit(depth int, hidden bool) bool {
	if s.opts.MaxDepth > 0 && depth > s.opts.MaxDepth {
		return false
	}
	if s.opts.SkipHidden && hidden {
		return false
	}
	return true
}

// enumerate lists every path to include in a parallel scan, applying
// the depth and hidden filters. The root is always included.
func (s *Scanner) enumerate(ctx context.Context, root string) []string {
	paths := []string{root}
	var pathsMu sync.Mutex

	conf := fastwalk.Config{
		Follow: s.opts.FollowSymlinks,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			s.addError(path, err)
			return nil
		}
		if path == root {
			return nil
		}

		depth := pathDepth(root, path)
		hidden := isHidden(path, d.Name())

		if s.opts.SkipHidden && hidden {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if s.opts.MaxDepth > 0 && depth > s.opts.MaxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() && !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 && !s.opts.FollowSymlinks {
			return nil
		}

		pathsMu.Lock()
		paths = append(paths, path)
		pathsMu.Unlock()
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		s.addError(root, err)
	}

	return paths
}

// processPath builds the entry record for one enumerated path.
func (s *Scanner) processPath(path string) (types.FileEntry, bool) {
	info, err := os.Stat(path)
	if err != nil {
		s.addError(path, err)
		return types.FileEntry{}, false
	}

	entry := types.FileEntry{
		Path:     path,
		Modified: info.ModTime(),
		FileID:   fileID(info),
	}

	if info.IsDir() {
		entry.Type = types.TypeDirectory
		entry.Size = DirSize(path)
	} else {
		if !info.Mode().IsRegular() {
			return types.FileEntry{}, false
		}
		entry.Type = types.TypeFile
		entry.Size = info.Size()
	}

	return entry, true
}

// DirSize computes the recursive sum of regular-file sizes beneath
// dir. Unreadable subentries are skipped rather than aborting; the
// result is the size of everything that could be read. Symlinks are
// not followed.
func DirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// pathDepth returns how many levels below root the path sits.
func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// track records one processed item on the progress tracker, if set.
func (s *Scanner) track() {
	if s.opts.Tracker != nil {
		s.opts.Tracker.Increment()
	}
}

// addError appends a classified error to the error list thread-safely.
func (s *Scanner) addError(path string, err error) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, types.NewScanError(path, err))
	s.errorsMu.Unlock()
}

func (s *Scanner) resetErrors() {
	s.errorsMu.Lock()
	s.errors = nil
	s.errorsMu.Unlock()
}

func (s *Scanner) collectedErrors() []types.ScanError {
	s.errorsMu.Lock()
	defer s.errorsMu.Unlock()
	out := make([]types.ScanError, len(s.errors))
	copy(out, s.errors)
	return out
}
