// Package config loads and persists reclaim configuration following the
// XDG base directory specification.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "reclaim"

// Config is the root configuration.
type Config struct {
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	Detector DetectorConfig `mapstructure:"detector"`
	Verifier VerifierConfig `mapstructure:"verifier"`
	Executor ExecutorConfig `mapstructure:"executor"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ScannerConfig controls filesystem enumeration.
type ScannerConfig struct {
	MaxDepth       int  `mapstructure:"max_depth"`
	FollowSymlinks bool `mapstructure:"follow_symlinks"`
	SkipHidden     bool `mapstructure:"skip_hidden"`
	Parallel       bool `mapstructure:"parallel"`
	Workers        int  `mapstructure:"workers"`
}

// DetectorConfig controls which rules run and how they are tuned.
type DetectorConfig struct {
	SizeThreshold  SizeRuleConfig     `mapstructure:"size_threshold"`
	BuildArtifacts ArtifactRuleConfig `mapstructure:"build_artifacts"`
	CustomRules    []CustomRuleConfig `mapstructure:"custom_rules"`
}

// SizeRuleConfig tunes the large-file rule.
type SizeRuleConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Threshold string `mapstructure:"threshold"`
}

// ArtifactRuleConfig tunes the build-artifact rule. CustomPatterns, when
// set, replaces the built-in pattern list entirely.
type ArtifactRuleConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	CustomPatterns []string `mapstructure:"custom_patterns"`
}

// CustomRuleConfig declares a user-defined rule. Empty criteria are not
// evaluated; a rule with no criteria never matches.
type CustomRuleConfig struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Pattern     string   `mapstructure:"pattern"`
	Extensions  []string `mapstructure:"extensions"`
	MinSize     string   `mapstructure:"min_size"`
	MinAgeDays  int      `mapstructure:"min_age_days"`
}

// VerifierConfig controls pre-execution drift checking.
type VerifierConfig struct {
	CheckSize  bool `mapstructure:"check_size"`
	CheckMtime bool `mapstructure:"check_mtime"`
	FailFast   bool `mapstructure:"fail_fast"`
}

// ExecutorConfig controls plan execution.
type ExecutorConfig struct {
	Parallel      bool   `mapstructure:"parallel"`
	BatchSize     int    `mapstructure:"batch_size"`
	FailFast      bool   `mapstructure:"fail_fast"`
	UseRecycleBin bool   `mapstructure:"use_recycle_bin"`
	BackupDir     string `mapstructure:"backup_dir"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	File       string            `mapstructure:"file"`
	Components map[string]string `mapstructure:"components"`
}

// Load reads configuration from the XDG config directory, environment
// variables (RECLAIM_ prefix), and built-in defaults, in ascending
// priority. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", appName))
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scanner.max_depth", 0)
	v.SetDefault("scanner.follow_symlinks", false)
	v.SetDefault("scanner.skip_hidden", false)
	v.SetDefault("scanner.parallel", true)
	v.SetDefault("scanner.workers", DefaultWorkers())

	v.SetDefault("detector.size_threshold.enabled", true)
	v.SetDefault("detector.size_threshold.threshold", DefaultSizeThreshold)
	v.SetDefault("detector.build_artifacts.enabled", true)
	v.SetDefault("detector.build_artifacts.custom_patterns", []string{})

	v.SetDefault("verifier.check_size", true)
	v.SetDefault("verifier.check_mtime", true)
	v.SetDefault("verifier.fail_fast", false)

	v.SetDefault("executor.parallel", false)
	v.SetDefault("executor.batch_size", DefaultBatchSize)
	v.SetDefault("executor.fail_fast", false)
	v.SetDefault("executor.use_recycle_bin", false)
	v.SetDefault("executor.backup_dir", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

// ConfigDir returns the reclaim configuration directory.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// DataDir returns the reclaim data directory (history store).
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns the reclaim state directory (logs, transaction logs).
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// EnsureConfigDir creates the config directory if needed.
func EnsureConfigDir() (string, error) {
	return ensureDir(ConfigDir())
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() (string, error) {
	return ensureDir(DataDir())
}

// EnsureStateDir creates the state directory if needed.
func EnsureStateDir() (string, error) {
	return ensureDir(StateDir())
}

func ensureDir(dir string) (string, error) {
	return dir, os.MkdirAll(dir, 0o755)
}

// HistoryPath resolves the history store location, honoring an explicit
// override in the configuration.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return ExpandPath(c.History.Path)
	}
	return filepath.Join(DataDir(), "history")
}

// LogPath resolves the log file location, honoring an explicit override.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return ExpandPath(c.Logging.File)
	}
	return filepath.Join(StateDir(), appName+".log")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// WriteDefault writes a commented default configuration file, refusing
// to overwrite an existing one.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	content := fmt.Sprintf(`# reclaim configuration
#
# All settings are optional; values shown are the defaults.
# Environment variables override file values (RECLAIM_ prefix,
# e.g. RECLAIM_SCANNER_MAX_DEPTH=4).

scanner:
  # Maximum directory depth to report. 0 means unlimited.
  max_depth: 0
  # Follow symbolic links while scanning.
  follow_symlinks: false
  # Skip hidden files and directories.
  skip_hidden: false
  # Use the parallel scanning strategy.
  parallel: true
  # Worker pool size for parallel scanning. Defaults to the CPU count.
  workers: %d

detector:
  size_threshold:
    enabled: true
    # Files and directories at or above this size are flagged.
    threshold: %s
  build_artifacts:
    enabled: true
    # Replaces the built-in pattern list when non-empty.
    custom_patterns: []
  # User-defined rules. Every non-empty criterion must match.
  # custom_rules:
  #   - name: stale_archives
  #     description: archives untouched for a year
  #     extensions: [".zip", ".tar.gz"]
  #     min_size: 10MiB
  #     min_age_days: 365

verifier:
  check_size: true
  check_mtime: true
  fail_fast: false

executor:
  parallel: false
  batch_size: %d
  fail_fast: false
  use_recycle_bin: false
  # Move entries under this directory instead of deleting.
  backup_dir: ""

history:
  enabled: true
  # Defaults to the XDG data directory.
  path: ""
  retention_days: %d

logging:
  # debug, info, warn, or error.
  level: info
  # Defaults to the XDG state directory.
  file: ""
`, DefaultWorkers(), DefaultSizeThreshold, DefaultBatchSize, DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
