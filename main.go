package main

import (
	"upkeep/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// The upkeep project is a personal workstation/server maintenance utility that:
//   - Snapshots the installed package set to flat text listings before touching anything,
//     so the operator can later diff what a run changed
//   - Updates OS packages through whichever system package manager is present
//     (pacman, apt-get, dnf, or brew), then language toolchains (rustup, npm, pip, gem)
//   - Synchronizes a configured list of git checkouts with their remotes, either by
//     fast-forward pull or by an explicitly opted-in hard reset to the upstream branch
//   - Refreshes the oh-my-zsh checkout and tmux plugins when those are installed
//   - Finishes with cleanup: package and language caches, docker resources, journal
//     retention, and age-based temp file pruning, each independently toggled in config
//
// Error handling strategy:
//   - Every task is a self-contained unit producing Success, Failure, or Skipped;
//     the driver isolates failures so one broken step never aborts the rest of the run
//   - Absent external tools are Skipped, not failures; this utility adapts to
//     whatever is installed rather than demanding a particular host setup
//   - The process exits non-zero only if at least one task recorded a Failure
//
// Integration points:
//   - All external tools (package managers, git, docker, journalctl) are invoked as
//     opaque commands; only exit codes and captured output are interpreted
//   - SSH agent environment is inherited by child processes so authenticated git
//     fetches work non-interactively
func main() {
	cmd.Execute()
}
