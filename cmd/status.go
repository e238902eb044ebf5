package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"upkeep/internal/runner"
)

// statusCmd reports disk, memory, and cache usage without mutating
// anything. It exists so the operator can judge whether a cleanup run is
// worth it before actually pruning.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report disk, memory, and cache usage without changing anything",
	Run: func(cmd *cobra.Command, args []string) {
		loadConfig()

		// Read-only reporting always uses the real runner, even under
		// --dry-run: nothing here mutates.
		r := runner.ExecRunner{}
		ctx := interruptContext()
		home, _ := os.UserHomeDir()

		sections := []struct {
			title string
			tool  string
			args  []string
		}{
			{"disk usage", "df", []string{"-h", "/"}},
			{"memory", "free", []string{"-h"}},
			{"user cache", "du", []string{"-sh", filepath.Join(home, ".cache")}},
			{"docker usage", "docker", []string{"system", "df"}},
		}

		for _, s := range sections {
			out := r.Run(ctx, s.tool, s.args, runner.Options{})
			if !out.Found {
				continue
			}
			fmt.Printf("--- %s ---\n%s", s.title, out.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
