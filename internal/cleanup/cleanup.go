package cleanup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Songmu/prompter"

	"upkeep/internal/config"
	"upkeep/internal/logger"
	"upkeep/internal/runner"
	"upkeep/internal/task"
)

// Group runs the cleanup sub-tasks: package cache, language caches,
// docker resources, journal retention, temp files, and orphaned packages.
// Every sub-task follows the same shape: disabled in config means Skipped
// without ever touching the command runner; a missing backing tool means
// Skipped, not Failure, since absence of an optional tool is not an
// operator error.
type Group struct {
	Runner  runner.Runner
	Cfg     config.Cleanup
	Timeout time.Duration

	// AssumeYes bypasses the interactive confirmation before removing
	// orphaned packages (the --yes flag).
	AssumeYes bool

	// Confirm asks the operator a yes/no question. Defaults to a terminal
	// prompt; injectable for tests.
	Confirm func(question string) bool
}

// Task wraps the group as a single registry entry; the driver receives
// one result per sub-task.
func (g *Group) Task() task.Task {
	return task.Task{Name: "cleanup", Run: g.Run}
}

// Run executes every sub-task in a fixed order and returns one result
// each. Sub-tasks are independent: one failing never stops the others.
func (g *Group) Run(ctx context.Context) []task.Result {
	return []task.Result{
		g.packageCache(ctx),
		g.languageCaches(ctx),
		g.docker(ctx),
		g.journal(ctx),
		g.tmpFiles(),
		g.orphans(ctx),
	}
}

// packageCache prunes the system package manager's download cache, keeping
// the configured number of versions where the manager supports it.
func (g *Group) packageCache(ctx context.Context) task.Result {
	const name = "package cache"
	if !g.Cfg.PackageCache {
		return task.Skipped(name, "disabled in config")
	}

	switch {
	case g.Runner.LookPath("paccache"):
		keep := fmt.Sprintf("-rk%d", g.Cfg.KeepCacheVersions)
		return g.outcome(name, g.run(ctx, "paccache", []string{keep}, true))
	case g.Runner.LookPath("pacman"):
		return g.outcome(name, g.run(ctx, "pacman", []string{"-Sc", "--noconfirm"}, true))
	case g.Runner.LookPath("apt-get"):
		return g.outcome(name, g.run(ctx, "apt-get", []string{"clean"}, true))
	case g.Runner.LookPath("dnf"):
		return g.outcome(name, g.run(ctx, "dnf", []string{"clean", "all"}, true))
	case g.Runner.LookPath("brew"):
		return g.outcome(name, g.run(ctx, "brew", []string{"cleanup", "--prune=all"}, false))
	}
	return task.Skipped(name, "no supported package manager found")
}

// languageCaches prunes the per-language package manager caches. Each
// manager is optional; the result aggregates whichever were present.
func (g *Group) languageCaches(ctx context.Context) task.Result {
	const name = "language caches"
	if !g.Cfg.LanguageCaches {
		return task.Skipped(name, "disabled in config")
	}

	managers := []struct {
		tool string
		args []string
	}{
		{"npm", []string{"cache", "clean", "--force"}},
		{"pip3", []string{"cache", "purge"}},
		{"gem", []string{"cleanup"}},
	}

	var cleaned, failed []string
	for _, m := range managers {
		out := g.run(ctx, m.tool, m.args, false)
		if !out.Found {
			continue
		}
		if out.OK() {
			cleaned = append(cleaned, m.tool)
		} else {
			failed = append(failed, fmt.Sprintf("%s: %s", m.tool, out.Diagnostic()))
		}
	}

	if len(failed) > 0 {
		return task.Failure(name, strings.Join(failed, "; "))
	}
	if len(cleaned) == 0 {
		return task.Skipped(name, "no language package managers found")
	}
	return task.Success(name, "cleaned: "+strings.Join(cleaned, ", "))
}

// docker prunes unreferenced containers, images, and networks; volumes
// are pruned only when enabled separately since they hold data.
func (g *Group) docker(ctx context.Context) task.Result {
	const name = "docker prune"
	if !g.Cfg.Docker {
		return task.Skipped(name, "disabled in config")
	}
	if !g.Runner.LookPath("docker") {
		return task.Skipped(name, "docker not installed")
	}

	args := []string{"system", "prune", "-f"}
	if g.Cfg.DockerVolumes {
		args = append(args, "--volumes")
	}
	return g.outcome(name, g.run(ctx, "docker", args, false))
}

// journal enforces time-based log retention via journalctl.
func (g *Group) journal(ctx context.Context) task.Result {
	const name = "journal vacuum"
	if !g.Cfg.Journal {
		return task.Skipped(name, "disabled in config")
	}
	if !g.Runner.LookPath("journalctl") {
		return task.Skipped(name, "journalctl not installed")
	}

	retain := fmt.Sprintf("--vacuum-time=%dd", g.Cfg.JournalRetentionDays)
	return g.outcome(name, g.run(ctx, "journalctl", []string{retain}, true))
}

// tmpFiles removes regular files older than the configured age from the
// configured directories. This is plain filesystem work, no external tool.
func (g *Group) tmpFiles() task.Result {
	const name = "tmp files"
	if !g.Cfg.TmpFiles {
		return task.Skipped(name, "disabled in config")
	}

	cutoff := time.Now().AddDate(0, 0, -g.Cfg.TmpMaxAgeDays)
	removed := 0

	for _, dir := range g.Cfg.TmpDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Debug("cannot read %s: %v", dir, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if err := os.Remove(path); err != nil {
				// Files owned by other users are expected in /tmp.
				logger.Debug("cannot remove %s: %v", path, err)
				continue
			}
			removed++
		}
	}
	return task.Success(name, fmt.Sprintf("removed %d files", removed))
}

// orphans removes dependency-only packages no longer required by anything
// manually installed. This is destructive, so it is gated behind an
// operator confirmation unless --yes was given.
func (g *Group) orphans(ctx context.Context) task.Result {
	const name = "orphaned packages"
	if !g.Cfg.Orphans {
		return task.Skipped(name, "disabled in config")
	}

	switch {
	case g.Runner.LookPath("pacman"):
		list := g.run(ctx, "pacman", []string{"-Qtdq"}, false)
		pkgs := strings.Fields(list.Stdout)
		// pacman -Qtdq exits 1 when there is nothing to list.
		if len(pkgs) == 0 {
			return task.Success(name, "no orphaned packages")
		}
		if !g.confirm(fmt.Sprintf("Remove %d orphaned packages?", len(pkgs))) {
			return task.Skipped(name, "declined by operator")
		}
		args := append([]string{"-Rns", "--noconfirm"}, pkgs...)
		return g.outcome(name, g.run(ctx, "pacman", args, true))

	case g.Runner.LookPath("apt-get"):
		if !g.confirm("Remove packages installed as no-longer-needed dependencies?") {
			return task.Skipped(name, "declined by operator")
		}
		return g.outcome(name, g.run(ctx, "apt-get", []string{"autoremove", "-y"}, true))
	}
	return task.Skipped(name, "no supported package manager found")
}

func (g *Group) confirm(question string) bool {
	if g.AssumeYes {
		return true
	}
	if g.Confirm != nil {
		return g.Confirm(question)
	}
	return prompter.YN(question, false)
}

func (g *Group) run(ctx context.Context, tool string, args []string, sudo bool) runner.Outcome {
	return g.Runner.Run(ctx, tool, args, runner.Options{Sudo: sudo, Timeout: g.Timeout})
}

// outcome maps a command outcome onto the sub-task result shape shared by
// the whole group.
func (g *Group) outcome(name string, out runner.Outcome) task.Result {
	if !out.Found {
		return task.Skipped(name, "tool not installed")
	}
	if !out.OK() {
		return task.Failure(name, out.Diagnostic())
	}
	return task.Success(name, "")
}
