package task

import (
	"context"
	"fmt"

	"upkeep/internal/logger"
)

// Task is one named maintenance step. Run reports one result, or one per
// item for tasks that iterate (repository paths, cleanup sub-tasks); the
// driver aggregates. Run must contain its own error handling and never
// panic by contract, but the driver does not rely on that (see boundary
// in Driver.Run).
type Task struct {
	Name string
	Run  func(ctx context.Context) []Result
}

// Driver executes an ordered task registry, strictly sequentially, and
// aggregates every result into a Summary. The single most important
// property here is failure isolation: no task's fault propagates past the
// driver, so one broken step never aborts the rest of the run.
type Driver struct {
	Tasks []Task
}

// Run executes the registry in order. Each task runs inside a failure
// boundary that converts an unexpected panic into a Failure result, so
// every task contributes at least one recorded result. The only early
// exit is context cancellation (operator interrupt): remaining tasks are
// not started, and what already ran is safe to repeat since every task is
// idempotent.
func (d *Driver) Run(ctx context.Context) Summary {
	var summary Summary

	for _, t := range d.Tasks {
		if ctx.Err() != nil {
			logger.Warn("interrupted, skipping remaining tasks")
			break
		}

		logger.Info("task: %s", t.Name)
		results := d.runOne(ctx, t)

		// Invariant: every task yields at least one recorded result.
		if len(results) == 0 {
			results = []Result{Skipped(t.Name, "nothing to do")}
		}

		for _, r := range results {
			switch r.Status {
			case StatusFailure:
				logger.Error("%s failed: %s", r.Task, r.Detail)
			case StatusSkipped:
				logger.Info("%s skipped: %s", r.Task, r.Detail)
			default:
				logger.Info("%s done", r.Task)
			}
		}
		summary.Results = append(summary.Results, results...)
	}

	logger.Info("summary: %d succeeded, %d failed, %d skipped",
		summary.Succeeded(), summary.Failed(), summary.Skipped())
	return summary
}

// runOne invokes a task inside the failure boundary. A panic inside the
// task body is recovered and recorded as a Failure result for that task
// instead of unwinding past the driver.
func (d *Driver) runOne(ctx context.Context, t Task) (results []Result) {
	defer func() {
		if r := recover(); r != nil {
			results = append(results, Failure(t.Name, fmt.Sprintf("internal fault: %v", r)))
		}
	}()
	return t.Run(ctx)
}
