package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func initTest(t *testing.T, cfg Config) string {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "reclaim.log")
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if err := Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
	return cfg.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"verbose", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	// Must not panic or write anywhere.
	logger := Get("preinit")
	logger.Info("dropped message")
	logger.Error("also dropped")
}

func TestInitWritesToFile(t *testing.T) {
	path := initTest(t, Config{})

	logger := Get("scanner")
	logger.Info("scan started", "path", "/projects")

	content := readLog(t, path)
	if !strings.Contains(content, "scan started") {
		t.Errorf("log file missing message: %q", content)
	}
	if !strings.Contains(content, "scanner") {
		t.Errorf("log file missing component prefix: %q", content)
	}
	if !strings.Contains(content, "/projects") {
		t.Errorf("log file missing structured field: %q", content)
	}
}

func TestDefaultLevelFiltersDebug(t *testing.T) {
	path := initTest(t, Config{Level: "info"})

	logger := Get("exec")
	logger.Debug("hidden detail")
	logger.Info("visible")

	content := readLog(t, path)
	if strings.Contains(content, "hidden detail") {
		t.Errorf("debug message leaked at info level: %q", content)
	}
	if !strings.Contains(content, "visible") {
		t.Errorf("info message missing: %q", content)
	}
}

func TestComponentLevelOverride(t *testing.T) {
	path := initTest(t, Config{
		Level:      "info",
		Components: map[string]string{"detect": "debug"},
	})

	Get("detect").Debug("rule evaluation")
	Get("plan").Debug("suppressed")

	content := readLog(t, path)
	if !strings.Contains(content, "rule evaluation") {
		t.Errorf("overridden component lost debug message: %q", content)
	}
	if strings.Contains(content, "suppressed") {
		t.Errorf("default component leaked debug message: %q", content)
	}
}

func TestInvalidLevelRejected(t *testing.T) {
	err := Init(Config{Level: "chatty", Path: filepath.Join(t.TempDir(), "x.log")})
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestWithAddsContext(t *testing.T) {
	path := initTest(t, Config{})

	Get("exec").With("execution_id", "abc-123").Info("operation complete")

	content := readLog(t, path)
	if !strings.Contains(content, "abc-123") {
		t.Errorf("bound field missing: %q", content)
	}
}

func TestRotationBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reclaim.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 64})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer w.Close()

	line := []byte(strings.Repeat("x", 48) + "\n")
	if _, err := w.Write(line); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := w.Write(line); err != nil {
		t.Fatalf("second write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}

	var logs int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".log") {
			logs++
		}
	}
	if logs < 2 {
		t.Errorf("expected rotated file alongside current log, found %d log files", logs)
	}
}
