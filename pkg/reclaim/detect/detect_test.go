package detect

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

func fileEntry(path string, size int64) types.FileEntry {
	return types.FileEntry{
		Path:     path,
		Size:     size,
		Modified: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Type:     types.TypeFile,
	}
}

func dirEntry(path string, size int64) types.FileEntry {
	e := fileEntry(path, size)
	e.Type = types.TypeDirectory
	return e
}

// mkdirs creates a directory and any marker files inside it.
func mkdirs(t *testing.T, dir string, markers ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, m := range markers {
		if err := os.WriteFile(filepath.Join(dir, m), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSizeThresholdRule(t *testing.T) {
	rule := SizeThresholdRule{Threshold: 100}

	tests := []struct {
		name  string
		entry types.FileEntry
		want  bool
	}{
		{"below threshold", fileEntry("/tmp/a.bin", 99), false},
		{"at threshold", fileEntry("/tmp/a.bin", 100), true},
		{"above threshold", fileEntry("/tmp/a.bin", 5000), true},
		{"directory above threshold", dirEntry("/tmp/d", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.Matches(tt.entry, Context{}); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildArtifactRule(t *testing.T) {
	rule := NewBuildArtifactRule()

	tests := []struct {
		name  string
		entry types.FileEntry
		want  bool
	}{
		{"node_modules directory", dirEntry("/p/node_modules", 0), true},
		{"target directory", dirEntry("/p/target", 0), true},
		{"pycache directory", dirEntry("/p/__pycache__", 0), true},
		{"file named node_modules", fileEntry("/p/node_modules", 0), false},
		{"case mismatch", dirEntry("/p/Build", 0), false},
		{"unrelated directory", dirEntry("/p/photos", 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.Matches(tt.entry, Context{}); got != tt.want {
				t.Errorf("Matches(%s) = %v, want %v", tt.entry.Path, got, tt.want)
			}
		})
	}
}

func TestCustomRule(t *testing.T) {
	scanTime := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := Context{ScanTime: scanTime}

	old := fileEntry("/p/core.log", 2048)
	old.Modified = scanTime.Add(-60 * 24 * time.Hour)

	fresh := fileEntry("/p/fresh.log", 2048)
	fresh.Modified = scanTime.Add(-1 * time.Hour)

	tests := []struct {
		name  string
		rule  CustomRule
		entry types.FileEntry
		want  bool
	}{
		{"glob match", CustomRule{RuleName: "logs", Pattern: "*.log"}, old, true},
		{"glob miss", CustomRule{RuleName: "logs", Pattern: "*.tmp"}, old, false},
		{"extension match", CustomRule{RuleName: "logs", Extensions: []string{".log"}}, old, true},
		{"extension on directory", CustomRule{RuleName: "logs", Extensions: []string{".log"}}, dirEntry("/p/x.log", 0), false},
		{"min size met", CustomRule{RuleName: "big", Pattern: "*", MinSize: 1024}, old, true},
		{"min size unmet", CustomRule{RuleName: "big", Pattern: "*", MinSize: 4096}, old, false},
		{"min age met", CustomRule{RuleName: "stale", Pattern: "*.log", MinAge: 30 * 24 * time.Hour}, old, true},
		{"min age unmet", CustomRule{RuleName: "stale", Pattern: "*.log", MinAge: 30 * 24 * time.Hour}, fresh, false},
		{"no criteria never matches", CustomRule{RuleName: "empty"}, old, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Matches(tt.entry, ctx); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineFirstMatchWins(t *testing.T) {
	// One directory that both built-in rules would flag.
	entry := dirEntry(filepath.Join(t.TempDir(), "node_modules"), 500*types.MiB)

	sizeFirst := Empty()
	sizeFirst.AddRule(SizeThresholdRule{Threshold: 100 * types.MiB})
	sizeFirst.AddRule(NewBuildArtifactRule())

	artifactFirst := Empty()
	artifactFirst.AddRule(NewBuildArtifactRule())
	artifactFirst.AddRule(SizeThresholdRule{Threshold: 100 * types.MiB})

	got := sizeFirst.Analyze([]types.FileEntry{entry}, Context{})
	if len(got) != 1 || got[0].RuleName != RuleSizeThreshold {
		t.Errorf("size-first order: got %+v, want one %s detection", got, RuleSizeThreshold)
	}

	got = artifactFirst.Analyze([]types.FileEntry{entry}, Context{})
	if len(got) != 1 || got[0].RuleName != RuleBuildArtifact {
		t.Errorf("artifact-first order: got %+v, want one %s detection", got, RuleBuildArtifact)
	}
}

func TestEngineDeterministic(t *testing.T) {
	root := t.TempDir()
	entries := []types.FileEntry{
		dirEntry(filepath.Join(root, "target"), 10),
		fileEntry(filepath.Join(root, "huge.bin"), 500*types.MiB),
		fileEntry(filepath.Join(root, "small.txt"), 10),
	}

	engine := NewEngine()
	ctx := Context{BasePath: root}

	first := engine.Analyze(entries, ctx)
	second := engine.Analyze(entries, ctx)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("got %d detections, want 2", len(first))
	}
}

func TestEngineDefaultRuleOrder(t *testing.T) {
	// The default engine checks the size rule before the artifact rule.
	engine := NewEngine()
	entry := dirEntry(filepath.Join(t.TempDir(), "dist"), 500*types.MiB)

	got := engine.Analyze([]types.FileEntry{entry}, Context{})
	if len(got) != 1 || got[0].RuleName != RuleSizeThreshold {
		t.Fatalf("got %+v, want one %s detection", got, RuleSizeThreshold)
	}
}

func TestPolicySourceExclusions(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name  string
		entry types.FileEntry
		want  bool
	}{
		{"go source file", fileEntry("/p/main.go", 500 * types.MiB), true},
		{"rust source file", fileEntry("/p/lib.rs", 1), true},
		{"binary file", fileEntry("/p/data.bin", 1), false},
		{"src directory", dirEntry("/p/src", 1), true},
		{"tests directory", dirEntry("/p/tests", 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Excluded(tt.entry); got != tt.want {
				t.Errorf("Excluded(%s) = %v, want %v", tt.entry.Path, got, tt.want)
			}
		})
	}
}

func TestPolicyProjectRoot(t *testing.T) {
	root := t.TempDir()

	// proj/ is a project root; proj/build/ is generated output.
	proj := filepath.Join(root, "proj")
	buildDir := filepath.Join(proj, "build")
	mkdirs(t, proj, "package.json")
	mkdirs(t, buildDir)

	policy := DefaultPolicy()

	if !policy.Excluded(dirEntry(proj, 0)) {
		t.Error("project root not excluded")
	}
	if policy.Excluded(dirEntry(buildDir, 0)) {
		t.Error("build directory beneath project root excluded; protection must not be inherited")
	}
}

func TestPolicyArtifactNamedRoot(t *testing.T) {
	// A directory with an artifact name that directly contains a
	// manifest is still a project root and stays protected.
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	mkdirs(t, dist, "package.json")

	if !DefaultPolicy().Excluded(dirEntry(dist, 0)) {
		t.Error("artifact-named project root not excluded")
	}
}

func TestEngineProjectRootScenario(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "proj")
	buildDir := filepath.Join(proj, "build")
	mkdirs(t, proj, "package.json")
	mkdirs(t, buildDir)

	engine := Empty()
	engine.AddRule(NewBuildArtifactRule())

	got := engine.Analyze([]types.FileEntry{
		dirEntry(proj, 100),
		dirEntry(buildDir, 50),
	}, Context{BasePath: root})

	if len(got) != 1 {
		t.Fatalf("got %d detections, want 1", len(got))
	}
	if got[0].Entry.Path != buildDir || got[0].RuleName != RuleBuildArtifact {
		t.Errorf("got %+v, want build dir flagged by %s", got[0], RuleBuildArtifact)
	}
}
