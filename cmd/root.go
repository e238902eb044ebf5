package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"upkeep/internal/config"
	"upkeep/internal/logger"
	"upkeep/internal/runner"
)

// Persistent flags shared by every subcommand.
var (
	configPath string // --config: path to the YAML configuration file
	debug      bool   // --debug: force DEBUG-level logging
	dryRun     bool   // --dry-run: log intended commands without executing them
	assumeYes  bool   // --yes: skip interactive confirmations
)

// rootCmd is the base command for the upkeep CLI. A bare invocation runs
// the full maintenance sequence, same as `upkeep run`.
var rootCmd = &cobra.Command{
	Use:   "upkeep",
	Short: "Workstation and server maintenance: update everything, then clean up",

	// PersistentPreRun runs before any subcommand. The logger gets a
	// provisional level from the flags here; loadConfig refines it once
	// the configured level is known.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logger.Init(logger.LevelDebug)
		}
	},
}

// Execute initializes flags, registers subcommands, and starts the
// command execution. It's the entry point for the CLI.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.ExpandHome("~/.config/upkeep/config.yaml"), "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log intended actions without executing them")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Assume yes for all confirmations")

	// Bare `upkeep` runs the full sequence.
	rootCmd.Run = runCmd.Run

	_ = rootCmd.Execute()
}

// loadConfig loads the configuration once and finishes logger setup. The
// minimum severity comes from, in order of precedence: --debug, the
// UPKEEP_LOG environment variable, then the configured level. A config
// file that exists but cannot be parsed is the one startup condition
// treated as fatal: silently running with defaults against the operator's
// intent would be worse than stopping.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if env := os.Getenv("UPKEEP_LOG"); env != "" {
		level = env
	}
	if debug {
		level = "debug"
	}
	logger.Init(logger.ParseLevel(level))
	return cfg
}

// newRunner returns the production runner, or the logging-only decorator
// when --dry-run is set.
func newRunner() runner.Runner {
	if dryRun {
		return runner.DryRunner{Real: runner.ExecRunner{}}
	}
	return runner.ExecRunner{}
}
