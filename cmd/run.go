package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"upkeep/internal/cleanup"
	"upkeep/internal/gitsync"
	"upkeep/internal/snapshot"
	"upkeep/internal/task"
	"upkeep/internal/update"
)

// runCmd executes the full maintenance sequence. Registry order is fixed
// and documented: snapshot first (so the listings reflect the pre-update
// state), package updates before language-tool updates, then repository
// sync, then cleanup last so it reflects the post-update state.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full update and cleanup sequence",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		r := newRunner()
		home, _ := os.UserHomeDir()
		timeout := cfg.CommandTimeout()

		updates := &update.Tasks{Runner: r, Timeout: timeout, Home: home}
		syncer := &gitsync.Syncer{
			Runner:       r,
			Strategy:     cfg.Sync.Strategy,
			FetchRetries: cfg.Sync.FetchRetries,
			Timeout:      timeout,
		}
		cleaner := &cleanup.Group{Runner: r, Cfg: cfg.Cleanup, Timeout: timeout, AssumeYes: assumeYes}
		snap := &snapshot.Writer{Runner: r, Timeout: timeout}

		driver := &task.Driver{Tasks: []task.Task{
			snap.Task(),
			updates.SystemPackages(),
			updates.LanguageToolchains(),
			updates.ShellFramework(),
			updates.TmuxPlugins(),
			syncer.Task(cfg.Sync.Repos),
			cleaner.Task(),
		}}

		summary := driver.Run(interruptContext())
		os.Exit(summary.ExitCode())
	},
}

// interruptContext returns a context cancelled by SIGINT/SIGTERM. The
// runner's child process is killed on cancellation and the driver stops
// before starting the next task; every task is idempotent, so a partial
// run is safe to repeat.
func interruptContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

func init() {
	rootCmd.AddCommand(runCmd)
}
