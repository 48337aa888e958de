package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/reclaim/pkg/reclaim/detect"
	"github.com/jamesainslie/reclaim/pkg/reclaim/types"
)

func testDetection(path string, size int64, rule string, dir bool) detect.Detection {
	typ := types.TypeFile
	if dir {
		typ = types.TypeDirectory
	}
	return detect.Detection{
		Entry: types.FileEntry{
			Path:     path,
			Size:     size,
			Modified: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
			Type:     typ,
		},
		RuleName: rule,
		Reason:   "test detection",
	}
}

func TestGenerateDefaultActions(t *testing.T) {
	base := t.TempDir()
	g := NewGenerator(base)

	p := g.Generate([]detect.Detection{
		testDetection(filepath.Join(base, "node_modules"), 100, detect.RuleBuildArtifact, true),
		testDetection(filepath.Join(base, "huge.bin"), 200, detect.RuleSizeThreshold, false),
		testDetection(filepath.Join(base, "custom.dat"), 300, "my_custom_rule", false),
	})

	require.Len(t, p.Entries, 3)

	byPath := make(map[string]Entry)
	for _, e := range p.Entries {
		byPath[e.Path] = e
	}

	assert.Equal(t, ActionDelete, byPath["node_modules"].Action)
	assert.Equal(t, ActionReview, byPath["huge.bin"].Action)
	assert.Equal(t, ActionReview, byPath["custom.dat"].Action)
}

func TestGenerateDropsDescendantsOfDeletedDirs(t *testing.T) {
	base := t.TempDir()
	g := NewGenerator(base)

	parent := filepath.Join(base, "node_modules")
	child := filepath.Join(parent, "left-pad", "dist")

	p := g.Generate([]detect.Detection{
		testDetection(child, 10, detect.RuleBuildArtifact, true),
		testDetection(parent, 100, detect.RuleBuildArtifact, true),
	})

	require.Len(t, p.Entries, 1)
	assert.Equal(t, "node_modules", p.Entries[0].Path)

	// No descendant of a deleted directory may appear anywhere.
	for _, e := range p.Entries {
		assert.False(t, strings.HasPrefix(e.Path, "node_modules"+string(filepath.Separator)))
	}
}

func TestGenerateKeepsDescendantsOfReviewDirs(t *testing.T) {
	base := t.TempDir()
	g := NewGenerator(base)

	parent := filepath.Join(base, "assets")
	child := filepath.Join(parent, "video.mkv")

	// Both flagged by the size rule: parent defaults to Review, so the
	// child is not pruned.
	p := g.Generate([]detect.Detection{
		testDetection(parent, 5000, detect.RuleSizeThreshold, true),
		testDetection(child, 4000, detect.RuleSizeThreshold, false),
	})

	assert.Len(t, p.Entries, 2)
}

func TestGenerateSentinelForBasePath(t *testing.T) {
	base := t.TempDir()
	g := NewGenerator(base)

	p := g.Generate([]detect.Detection{
		testDetection(base, 100, detect.RuleSizeThreshold, true),
	})

	require.Len(t, p.Entries, 1)
	assert.Equal(t, Sentinel, p.Entries[0].Path)
}

func TestGenerateProtectedRootForcedToReview(t *testing.T) {
	base := t.TempDir()
	proj := filepath.Join(base, "proj")
	require.NoError(t, os.MkdirAll(proj, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(proj, "Cargo.toml"), []byte("[package]"), 0o644))

	g := NewGenerator(base)

	// Even a build-artifact detection is downgraded when the path is a
	// project root on disk.
	p := g.Generate([]detect.Detection{
		testDetection(proj, 100, detect.RuleBuildArtifact, true),
	})

	require.Len(t, p.Entries, 1)
	assert.Equal(t, ActionReview, p.Entries[0].Action)
}

func TestGenerateParentBeforeChildOrdering(t *testing.T) {
	base := t.TempDir()
	g := NewGenerator(base)

	deep := filepath.Join(base, "a", "b", "c", "dist")
	shallow := filepath.Join(base, "dist")

	p := g.Generate([]detect.Detection{
		testDetection(deep, 10, detect.RuleBuildArtifact, true),
		testDetection(shallow, 10, detect.RuleBuildArtifact, true),
	})

	require.Len(t, p.Entries, 2)
	assert.Equal(t, "dist", p.Entries[0].Path)
}

func TestPlanCounts(t *testing.T) {
	p := &Plan{
		Version:  Version,
		BasePath: "/base",
		Entries: []Entry{
			{Path: "a", Size: 10, Action: ActionDelete},
			{Path: "b", Size: 20, Action: ActionDelete},
			{Path: "c", Size: 30, Action: ActionReview},
			{Path: "d", Size: 40, Action: ActionKeep},
		},
	}

	assert.Equal(t, int64(100), p.TotalSize())
	assert.Equal(t, int64(30), p.DeleteSize())
	assert.Equal(t, 2, p.CountByAction(ActionDelete))
	assert.Equal(t, 1, p.CountByAction(ActionReview))
	assert.Equal(t, 1, p.CountByAction(ActionKeep))
}

func TestValidate(t *testing.T) {
	valid := &Plan{Version: Version, BasePath: "/base", Entries: []Entry{{Path: "a"}}}
	assert.NoError(t, valid.Validate())

	noBase := &Plan{Version: Version, Entries: []Entry{{Path: "a"}}}
	assert.ErrorIs(t, noBase.Validate(), ErrEmptyBasePath)

	emptyEntry := &Plan{Version: Version, BasePath: "/base", Entries: []Entry{{Path: ""}}}
	assert.ErrorIs(t, emptyEntry.Validate(), ErrEmptyEntryPath)
}

func TestWriteValidatesBeforeIO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")

	err := Write(&Plan{Version: Version}, path)
	require.ErrorIs(t, err, ErrEmptyBasePath)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file may exist after failed validation")
}

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plans", "plan.yaml")

	original := &Plan{
		Version:   Version,
		CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		BasePath:  "/home/user/code",
		Entries: []Entry{
			{
				Path:     "proj/node_modules",
				Size:     123456,
				Modified: "2025-05-01T12:00:00Z",
				Action:   ActionDelete,
				RuleName: detect.RuleBuildArtifact,
				Reason:   "common build artifact directory",
			},
			{
				Path:     Sentinel,
				Size:     7,
				Modified: "2025-05-02T08:00:00Z",
				Action:   ActionReview,
				RuleName: detect.RuleSizeThreshold,
				Reason:   "exceeds size threshold of 100 MiB",
			},
		},
	}

	require.NoError(t, Write(original, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Version, loaded.Version)
	assert.True(t, original.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, original.BasePath, loaded.BasePath)
	assert.Equal(t, original.Entries, loaded.Entries)
}

func TestWriteAtomicNoTempResidue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")

	p := New("/base")
	p.Entries = []Entry{{Path: "a", Action: ActionDelete, Modified: "2025-05-01T12:00:00Z"}}
	require.NoError(t, Write(p, path))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "plan.yaml", files[0].Name())
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")

	first := New("/base")
	first.Entries = []Entry{{Path: "old", Action: ActionKeep, Modified: "2025-05-01T12:00:00Z"}}
	require.NoError(t, Write(first, path))

	second := New("/base")
	second.Entries = []Entry{{Path: "new", Action: ActionDelete, Modified: "2025-05-01T12:00:00Z"}}
	require.NoError(t, Write(second, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "new", loaded.Entries[0].Path)
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEntryModifiedTime(t *testing.T) {
	e := Entry{Path: "a", Modified: "2025-05-01T12:00:00Z"}
	ts, err := e.ModifiedTime()
	require.NoError(t, err)
	assert.Equal(t, 2025, ts.Year())

	bad := Entry{Path: "b", Modified: "yesterday"}
	_, err = bad.ModifiedTime()
	assert.Error(t, err)
}
