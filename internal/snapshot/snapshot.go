package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"upkeep/internal/logger"
	"upkeep/internal/runner"
	"upkeep/internal/task"
)

// Writer records the installed package set before a run as two flat text
// listings: every installed package, and the explicitly (manually)
// installed subset. The files are write-only from this tool's point of
// view; they exist so the operator can diff what a run changed.
type Writer struct {
	Runner  runner.Runner
	Timeout time.Duration

	// Dir is the target directory. Empty means DataDir().
	Dir string
}

// DataDir returns the snapshot location under the user's data directory:
// $XDG_DATA_HOME/upkeep, falling back to ~/.local/share/upkeep.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "upkeep")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "upkeep")
}

// Task wraps the writer as a registry entry.
func (w *Writer) Task() task.Task {
	return task.Task{Name: "package snapshot", Run: w.Run}
}

// Run queries the package manager for the two listings and writes them.
// No supported manager on the host means Skipped; a listing or write
// failure is that task's Failure and nothing more.
func (w *Writer) Run(ctx context.Context) []task.Result {
	const name = "package snapshot"

	var all, explicit runner.Outcome
	switch {
	case w.Runner.LookPath("pacman"):
		all = w.list(ctx, "pacman", "-Qq")
		explicit = w.list(ctx, "pacman", "-Qqe")
	case w.Runner.LookPath("dpkg-query"):
		all = w.list(ctx, "dpkg-query", "-f", "${binary:Package}\n", "-W")
		explicit = w.list(ctx, "apt-mark", "showmanual")
	case w.Runner.LookPath("rpm"):
		all = w.list(ctx, "rpm", "-qa", "--qf", "%{NAME}\n")
		explicit = w.list(ctx, "dnf", "repoquery", "--userinstalled", "--qf", "%{name}")
	case w.Runner.LookPath("brew"):
		all = w.list(ctx, "brew", "list", "--formula")
		explicit = w.list(ctx, "brew", "leaves")
	default:
		return []task.Result{task.Skipped(name, "no supported package manager found")}
	}

	if !all.OK() {
		return []task.Result{task.Failure(name, "listing packages failed: "+all.Diagnostic())}
	}

	dir := w.Dir
	if dir == "" {
		dir = DataDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return []task.Result{task.Failure(name, fmt.Sprintf("cannot create %s: %v", dir, err))}
	}

	if err := os.WriteFile(filepath.Join(dir, "packages.txt"), []byte(all.Stdout), 0644); err != nil {
		return []task.Result{task.Failure(name, err.Error())}
	}

	// The explicit listing is best-effort: some hosts lack the query tool
	// (apt-mark, dnf) even when the main listing works.
	if explicit.OK() {
		if err := os.WriteFile(filepath.Join(dir, "packages-explicit.txt"), []byte(explicit.Stdout), 0644); err != nil {
			return []task.Result{task.Failure(name, err.Error())}
		}
	} else {
		logger.Debug("explicit package listing unavailable: %s", explicit.Diagnostic())
	}

	logger.Debug("wrote package snapshot to %s", dir)
	return []task.Result{task.Success(name, "")}
}

func (w *Writer) list(ctx context.Context, tool string, args ...string) runner.Outcome {
	return w.Runner.Run(ctx, tool, args, runner.Options{Timeout: w.Timeout})
}
