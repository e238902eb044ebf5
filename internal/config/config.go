package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy selects how repository sync integrates remote changes.
// "pull" preserves local commits (fast-forward only); "reset" discards
// divergent local state with a hard reset to the upstream branch. The
// destructive variant is never the default and must be chosen explicitly.
type Strategy string

const (
	StrategyPull  Strategy = "pull"
	StrategyReset Strategy = "reset"
)

// Sync configures the repository synchronization task.
type Sync struct {
	// Repos is the ordered list of checkout paths to synchronize.
	// Entries may start with "~/" which expands to the home directory.
	Repos []string `yaml:"repos"`

	// Strategy is "pull" (default) or "reset".
	Strategy Strategy `yaml:"strategy"`

	// FetchRetries is how many times a failed git fetch is retried with
	// exponential backoff before the path is recorded as Failure.
	FetchRetries uint `yaml:"fetch_retries"`
}

// Cleanup toggles and tunes the cleanup sub-tasks. Every destructive
// filter (retention days, age thresholds, cache versions to keep) lives
// here so operators adjust aggressiveness without touching logic.
type Cleanup struct {
	PackageCache      bool `yaml:"package_cache"`
	KeepCacheVersions int  `yaml:"keep_cache_versions"`

	LanguageCaches bool `yaml:"language_caches"`

	Docker        bool `yaml:"docker"`
	DockerVolumes bool `yaml:"docker_volumes"`

	Journal              bool `yaml:"journal"`
	JournalRetentionDays int  `yaml:"journal_retention_days"`

	TmpFiles      bool     `yaml:"tmp_files"`
	TmpDirs       []string `yaml:"tmp_dirs"`
	TmpMaxAgeDays int      `yaml:"tmp_max_age_days"`

	Orphans bool `yaml:"orphans"`
}

// Config is the immutable top-level configuration, loaded once at driver
// start and passed explicitly to every component. There is no global
// lookup: components only see the value they were handed.
type Config struct {
	// LogLevel is the minimum severity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	// CommandTimeoutMinutes bounds every external invocation; zero
	// disables the timeout (a hung tool then blocks the run).
	CommandTimeoutMinutes int `yaml:"command_timeout_minutes"`

	Sync    Sync    `yaml:"sync"`
	Cleanup Cleanup `yaml:"cleanup"`
}

// Default returns the built-in configuration used when no config file is
// present: conservative cleanup (nothing destructive enabled), pull-based
// sync with a couple of fetch retries, INFO logging.
func Default() Config {
	return Config{
		LogLevel:              "info",
		CommandTimeoutMinutes: 30,
		Sync: Sync{
			Strategy:     StrategyPull,
			FetchRetries: 2,
		},
		Cleanup: Cleanup{
			PackageCache:         true,
			KeepCacheVersions:    2,
			LanguageCaches:       true,
			Journal:              true,
			JournalRetentionDays: 14,
			TmpDirs:              []string{"/tmp"},
			TmpMaxAgeDays:        7,
		},
	}
}

// Load reads the YAML config file at path and merges it over the
// defaults. A missing file is not an error (defaults apply); a file that
// exists but does not parse is, since silently ignoring an operator's
// config would be worse than stopping.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// An unknown strategy silently falling back to the destructive
	// variant would be dangerous; fall back to pull instead.
	if cfg.Sync.Strategy != StrategyPull && cfg.Sync.Strategy != StrategyReset {
		cfg.Sync.Strategy = StrategyPull
	}

	for i, p := range cfg.Sync.Repos {
		cfg.Sync.Repos[i] = ExpandHome(p)
	}
	for i, p := range cfg.Cleanup.TmpDirs {
		cfg.Cleanup.TmpDirs[i] = ExpandHome(p)
	}
	return cfg, nil
}

// CommandTimeout returns the per-invocation timeout as a duration.
func (c Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMinutes) * time.Minute
}

// ExpandHome expands a leading "~" or "~/" to the user's home directory.
func ExpandHome(p string) string {
	if p == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}
