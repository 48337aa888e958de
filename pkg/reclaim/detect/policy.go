package detect

import (
	"os"
	"path/filepath"

	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

// RootMarkers are the files and directories whose direct presence
// inside a directory marks it as a project root.
func RootMarkers() []string {
	return []string{
		".git",
		".hg",
		".svn",
		"package.json",
		"Cargo.toml",
		"pyproject.toml",
		"go.mod",
	}
}

// defaultSourceExtensions are file extensions recognized as source
// code. Entries with these extensions are never cleanup candidates.
func defaultSourceExtensions() []string {
	return []string{
		".go", ".rs", ".py", ".js", ".jsx", ".ts", ".tsx",
		".c", ".h", ".cpp", ".hpp", ".cc",
		".java", ".kt", ".swift", ".cs", ".rb", ".php",
		".sh", ".sql", ".proto",
	}
}

// defaultSourceDirNames are directory base names conventionally holding
// source or configuration rather than generated output.
func defaultSourceDirNames() []string {
	return []string{
		"src", "source", "lib", "include",
		"test", "tests", "docs", "examples",
	}
}

// Policy excludes entries from rule consideration entirely. It is not
// a disposition downgrade: excluded entries never reach the rules.
type Policy struct {
	// SourceExtensions marks files as source code by extension.
	SourceExtensions []string

	// SourceDirNames marks directories as source trees by base name.
	SourceDirNames []string

	// RootMarkers mark a directory as a project root when present
	// directly inside it. Protection is not inherited: a generated-
	// output directory beneath a project root carries no markers of
	// its own and stays eligible.
	RootMarkers []string
}

// DefaultPolicy returns the built-in protection policy.
func DefaultPolicy() *Policy {
	return &Policy{
		SourceExtensions: defaultSourceExtensions(),
		SourceDirNames:   defaultSourceDirNames(),
		RootMarkers:      RootMarkers(),
	}
}

// Excluded reports whether the entry is removed from consideration
// before any rule runs.
func (p *Policy) Excluded(entry types.FileEntry) bool {
	base := filepath.Base(entry.Path)

	if !entry.IsDir() {
		ext := filepath.Ext(entry.Path)
		for _, s := range p.SourceExtensions {
			if ext == s {
				return true
			}
		}
		return false
	}

	for _, name := range p.SourceDirNames {
		if base == name {
			return true
		}
	}

	return p.IsProjectRoot(entry.Path)
}

// IsProjectRoot reports whether a marker file or directory exists
// directly inside dir.
func (p *Policy) IsProjectRoot(dir string) bool {
	for _, marker := range p.RootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
