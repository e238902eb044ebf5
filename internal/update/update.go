package update

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"upkeep/internal/runner"
	"upkeep/internal/task"
)

// Tasks builds the update half of the registry: system packages, language
// toolchains, the shell framework checkout, and tmux plugins. Every task
// adapts to what is installed on the host; absent tools are Skipped.
type Tasks struct {
	Runner  runner.Runner
	Timeout time.Duration

	// Home is the user's home directory, used to locate the oh-my-zsh
	// checkout and the tmux plugin manager.
	Home string
}

// SystemPackages upgrades OS packages through the first supported package
// manager found on the host.
func (t *Tasks) SystemPackages() task.Task {
	const name = "system packages"
	return task.Task{Name: name, Run: func(ctx context.Context) []task.Result {
		switch {
		case t.Runner.LookPath("pacman"):
			return one(t.outcome(name, t.run(ctx, "pacman", []string{"-Syu", "--noconfirm"}, true)))

		case t.Runner.LookPath("apt-get"):
			// Refresh the index first; either step failing fails the task.
			if out := t.run(ctx, "apt-get", []string{"update"}, true); !out.OK() {
				return one(t.outcome(name, out))
			}
			return one(t.outcome(name, t.run(ctx, "apt-get", []string{"-y", "upgrade"}, true)))

		case t.Runner.LookPath("dnf"):
			return one(t.outcome(name, t.run(ctx, "dnf", []string{"-y", "upgrade"}, true)))

		case t.Runner.LookPath("brew"):
			if out := t.run(ctx, "brew", []string{"update"}, false); !out.OK() {
				return one(t.outcome(name, out))
			}
			return one(t.outcome(name, t.run(ctx, "brew", []string{"upgrade"}, false)))
		}
		return one(task.Skipped(name, "no supported package manager found"))
	}}
}

// LanguageToolchains updates language-ecosystem package managers, one
// result per manager so the summary shows exactly which were touched.
func (t *Tasks) LanguageToolchains() task.Task {
	return task.Task{Name: "language toolchains", Run: func(ctx context.Context) []task.Result {
		managers := []struct {
			tool string
			args []string
		}{
			{"rustup", []string{"update"}},
			{"npm", []string{"update", "-g"}},
			{"pip3", []string{"install", "--user", "--upgrade", "pip"}},
			{"gem", []string{"update", "--user-install"}},
		}

		results := make([]task.Result, 0, len(managers))
		for _, m := range managers {
			results = append(results, t.outcome(m.tool, t.run(ctx, m.tool, m.args, false)))
		}
		return results
	}}
}

// ShellFramework fast-forwards the oh-my-zsh checkout in the user's home
// directory. The checkout path is passed to git as the child's working
// directory; the process never chdirs.
func (t *Tasks) ShellFramework() task.Task {
	const name = "shell framework"
	return task.Task{Name: name, Run: func(ctx context.Context) []task.Result {
		dir := filepath.Join(t.Home, ".oh-my-zsh")
		if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
			return one(task.Skipped(name, "oh-my-zsh not installed"))
		}
		out := t.Runner.Run(ctx, "git", []string{"pull", "--ff-only"},
			runner.Options{Dir: dir, Timeout: t.Timeout})
		return one(t.outcome(name, out))
	}}
}

// TmuxPlugins updates plugins through the tmux plugin manager's own
// update script, when tpm is installed.
func (t *Tasks) TmuxPlugins() task.Task {
	const name = "tmux plugins"
	return task.Task{Name: name, Run: func(ctx context.Context) []task.Result {
		script := filepath.Join(t.Home, ".tmux", "plugins", "tpm", "bin", "update_plugins")
		if _, err := os.Stat(script); err != nil {
			return one(task.Skipped(name, "tpm not installed"))
		}
		out := t.run(ctx, script, []string{"all"}, false)
		return one(t.outcome(name, out))
	}}
}

func (t *Tasks) run(ctx context.Context, tool string, args []string, sudo bool) runner.Outcome {
	return t.Runner.Run(ctx, tool, args, runner.Options{Sudo: sudo, Timeout: t.Timeout})
}

func (t *Tasks) outcome(name string, out runner.Outcome) task.Result {
	if !out.Found {
		return task.Skipped(name, "tool not installed")
	}
	if !out.OK() {
		return task.Failure(name, out.Diagnostic())
	}
	return task.Success(name, "")
}

func one(r task.Result) []task.Result {
	return []task.Result{r}
}
