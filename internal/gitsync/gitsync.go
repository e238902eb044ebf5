package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"upkeep/internal/config"
	"upkeep/internal/logger"
	"upkeep/internal/runner"
	"upkeep/internal/task"
)

// Syncer synchronizes a list of git checkouts with their remotes. One
// path's failure (missing directory, merge conflict, network error) never
// aborts processing of the remaining paths; each path gets its own
// recorded result.
//
// All git invocations pass the checkout path as the child's working
// directory, so the process working directory is never touched on any
// exit path.
type Syncer struct {
	Runner runner.Runner

	// Strategy selects pull (fast-forward, default) or reset (hard reset
	// to the upstream branch, destructive).
	Strategy config.Strategy

	// FetchRetries retries a failed fetch with exponential backoff.
	// Network blips and transient remote errors are the common case.
	FetchRetries uint

	// Timeout bounds each git invocation; zero disables it.
	Timeout time.Duration
}

// Task wraps the syncer as a registry entry over the configured paths.
func (s *Syncer) Task(paths []string) task.Task {
	return task.Task{
		Name: "repository sync",
		Run: func(ctx context.Context) []task.Result {
			return s.Sync(ctx, paths)
		},
	}
}

// Sync processes every path in order and reports one result per path.
func (s *Syncer) Sync(ctx context.Context, paths []string) []task.Result {
	results := make([]task.Result, 0, len(paths))
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		results = append(results, s.syncOne(ctx, p))
	}
	return results
}

// syncOne synchronizes a single checkout: existence check, repository
// check, fetch (retried), then integrate per the configured strategy.
func (s *Syncer) syncOne(ctx context.Context, path string) task.Result {
	name := fmt.Sprintf("sync %s", path)

	info, err := os.Stat(path)
	if err != nil {
		return task.Skipped(name, "path does not exist")
	}
	if !info.IsDir() {
		return task.Skipped(name, "not a repository")
	}
	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		return task.Skipped(name, "not a repository")
	}
	if !s.Runner.LookPath("git") {
		return task.Skipped(name, "git not installed")
	}

	if out, ok := s.fetch(ctx, path); !ok {
		if !out.Found {
			return task.Skipped(name, "git not installed")
		}
		return task.Failure(name, "fetch failed: "+out.Diagnostic())
	}

	switch s.Strategy {
	case config.StrategyReset:
		// Irreversible: uncommitted local changes are discarded. The
		// operator is warned before the reset runs, not after.
		logger.Warn("discarding local changes in %s (hard reset to upstream)", path)
		out := s.git(ctx, path, "reset", "--hard", "@{upstream}")
		if !out.OK() {
			return task.Failure(name, "reset failed: "+out.Diagnostic())
		}
	default:
		out := s.git(ctx, path, "pull", "--ff-only")
		if !out.OK() {
			return task.Failure(name, "pull failed: "+out.Diagnostic())
		}
	}
	return task.Success(name, "")
}

// fetch runs git fetch, retrying transient failures with exponential
// backoff. The last outcome is returned either way so the caller can
// surface the captured stderr.
func (s *Syncer) fetch(ctx context.Context, path string) (runner.Outcome, bool) {
	var last runner.Outcome

	operation := func() error {
		last = s.git(ctx, path, "fetch", "--prune")
		if !last.Found {
			// Tool vanished mid-run; retrying cannot help.
			return backoff.Permanent(errors.New("git not found"))
		}
		if !last.OK() {
			return errors.New(last.Diagnostic())
		}
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.FetchRetries))
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return last, false
	}
	return last, true
}

func (s *Syncer) git(ctx context.Context, dir string, args ...string) runner.Outcome {
	return s.Runner.Run(ctx, "git", args, runner.Options{Dir: dir, Timeout: s.Timeout})
}
