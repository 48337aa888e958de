package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jamesainslie/reclaim/pkg/reclaim/progress"
	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

// writeFile creates a file with content of the given size.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

// buildTree creates a small fixture tree and returns its root:
//
//	root/
//	  a.txt        (100 bytes)
//	  sub/
//	    b.txt      (200 bytes)
//	    deep/
//	      c.txt    (300 bytes)
//	  .hidden/
//	    d.txt      (400 bytes)
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 100)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), 200)
	writeFile(t, filepath.Join(root, "sub", "deep", "c.txt"), 300)
	writeFile(t, filepath.Join(root, ".hidden", "d.txt"), 400)
	return root
}

// entryMap indexes entries by path for comparison.
func entryMap(entries []types.FileEntry) map[string]types.FileEntry {
	m := make(map[string]types.FileEntry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	return m
}

func TestScanRootMissing(t *testing.T) {
	s := New(DefaultOptions())
	if _, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Scan() of missing root succeeded, want error")
	}
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), 1)

	s := New(DefaultOptions())
	if _, err := s.Scan(context.Background(), filepath.Join(root, "f")); err == nil {
		t.Fatal("Scan() of a file root succeeded, want error")
	}
}

func TestScanEntries(t *testing.T) {
	root := buildTree(t)
	s := New(DefaultOptions())

	result, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	m := entryMap(result.Entries)

	tests := []struct {
		rel  string
		size int64
		typ  types.EntryType
	}{
		{".", 1000, types.TypeDirectory},
		{"a.txt", 100, types.TypeFile},
		{"sub", 500, types.TypeDirectory},
		{filepath.Join("sub", "b.txt"), 200, types.TypeFile},
		{filepath.Join("sub", "deep"), 300, types.TypeDirectory},
		{filepath.Join("sub", "deep", "c.txt"), 300, types.TypeFile},
		{".hidden", 400, types.TypeDirectory},
		{filepath.Join(".hidden", "d.txt"), 400, types.TypeFile},
	}

	if len(result.Entries) != len(tests) {
		t.Errorf("got %d entries, want %d", len(result.Entries), len(tests))
	}

	for _, tt := range tests {
		path := filepath.Join(root, tt.rel)
		e, ok := m[path]
		if !ok {
			t.Errorf("missing entry %s", tt.rel)
			continue
		}
		if e.Size != tt.size {
			t.Errorf("%s: size = %d, want %d", tt.rel, e.Size, tt.size)
		}
		if e.Type != tt.typ {
			t.Errorf("%s: type = %v, want %v", tt.rel, e.Type, tt.typ)
		}
	}
}

func TestScanSkipHidden(t *testing.T) {
	root := buildTree(t)
	opts := DefaultOptions()
	opts.SkipHidden = true
	s := New(opts)

	result, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	m := entryMap(result.Entries)
	if _, ok := m[filepath.Join(root, ".hidden")]; ok {
		t.Error("hidden directory present in results")
	}
	if _, ok := m[filepath.Join(root, ".hidden", "d.txt")]; ok {
		t.Error("file under hidden directory present in results")
	}

	// Root size still accounts for hidden content.
	if e := m[root]; e.Size != 1000 {
		t.Errorf("root size = %d, want 1000", e.Size)
	}
}

func TestScanMaxDepth(t *testing.T) {
	root := buildTree(t)
	opts := DefaultOptions()
	opts.MaxDepth = 1
	s := New(opts)

	result, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	m := entryMap(result.Entries)
	if _, ok := m[filepath.Join(root, "sub", "b.txt")]; ok {
		t.Error("depth-2 entry present with MaxDepth=1")
	}

	// Depth-limited directories still report their full recursive size.
	if e := m[filepath.Join(root, "sub")]; e.Size != 500 {
		t.Errorf("sub size = %d, want 500", e.Size)
	}
}

func TestScanParallelMatchesSequential(t *testing.T) {
	root := buildTree(t)

	opts := DefaultOptions()
	opts.Workers = 4

	seq, err := New(opts).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	par, err := New(opts).ScanParallel(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanParallel() error: %v", err)
	}

	seqPaths := make([]string, 0, len(seq.Entries))
	for _, e := range seq.Entries {
		seqPaths = append(seqPaths, e.Path)
	}
	parPaths := make([]string, 0, len(par.Entries))
	for _, e := range par.Entries {
		parPaths = append(parPaths, e.Path)
	}
	sort.Strings(seqPaths)
	sort.Strings(parPaths)

	if len(seqPaths) != len(parPaths) {
		t.Fatalf("entry counts differ: sequential %d, parallel %d", len(seqPaths), len(parPaths))
	}
	for i := range seqPaths {
		if seqPaths[i] != parPaths[i] {
			t.Errorf("entry set mismatch at %d: %s vs %s", i, seqPaths[i], parPaths[i])
		}
	}

	// Sizes agree path by path.
	pm := entryMap(par.Entries)
	for _, e := range seq.Entries {
		if pe, ok := pm[e.Path]; ok && pe.Size != e.Size {
			t.Errorf("%s: parallel size %d, sequential size %d", e.Path, pe.Size, e.Size)
		}
	}
}

func TestScanProgressTracker(t *testing.T) {
	root := buildTree(t)
	tracker := progress.NewTracker()

	opts := DefaultOptions()
	opts.Tracker = tracker

	result, err := New(opts).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if got := tracker.Processed(); got != int64(len(result.Entries)) {
		t.Errorf("tracker processed %d, want %d", got, len(result.Entries))
	}
}

func TestDirSize(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		rel  string
		want int64
	}{
		{".", 1000},
		{"sub", 500},
		{filepath.Join("sub", "deep"), 300},
		{".hidden", 400},
	}

	for _, tt := range tests {
		if got := DirSize(filepath.Join(root, tt.rel)); got != tt.want {
			t.Errorf("DirSize(%s) = %d, want %d", tt.rel, got, tt.want)
		}
	}
}
