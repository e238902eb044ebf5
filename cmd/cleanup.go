package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"upkeep/internal/cleanup"
	"upkeep/internal/task"
)

// cleanupCmd runs only the cleanup task group, skipping every update step.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run only the cache, log, and orphan cleanup tasks",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		cleaner := &cleanup.Group{
			Runner:    newRunner(),
			Cfg:       cfg.Cleanup,
			Timeout:   cfg.CommandTimeout(),
			AssumeYes: assumeYes,
		}

		driver := &task.Driver{Tasks: []task.Task{cleaner.Task()}}
		summary := driver.Run(interruptContext())
		os.Exit(summary.ExitCode())
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
