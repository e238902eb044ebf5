package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"upkeep/internal/logger"
)

// waitDelay is how long Wait keeps reading the output pipes after the
// child is killed, in case orphaned descendants still hold them open.
const waitDelay = 3 * time.Second

// Outcome is the structured result of one external command invocation.
// It is produced for every invocation and never raised as an error:
// callers inspect it to decide Success, Failure, or Skipped.
type Outcome struct {
	ExitCode int    // Exit status of the process; -1 if it never ran
	Stdout   string // Captured standard output
	Stderr   string // Captured standard error
	Found    bool   // False if the executable is not on the host at all
	TimedOut bool   // True if the configured timeout expired
}

// OK reports whether the command ran and exited zero.
func (o Outcome) OK() bool {
	return o.Found && !o.TimedOut && o.ExitCode == 0
}

// Diagnostic returns the most useful human-readable text for a failed
// invocation: stderr if any, otherwise stdout, otherwise the exit code.
func (o Outcome) Diagnostic() string {
	if o.TimedOut {
		return "timed out"
	}
	if s := strings.TrimSpace(o.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(o.Stdout); s != "" {
		return s
	}
	return fmt.Sprintf("exit code %d", o.ExitCode)
}

// Options controls how a command is spawned.
type Options struct {
	// Dir is the working directory for the child process. The parent
	// process never changes its own directory; passing the directory to
	// the child is what keeps the caller's working directory untouched
	// on every exit path.
	Dir string

	// Env entries ("KEY=value") are overlaid on the inherited environment.
	Env []string

	// Sudo prepends privilege elevation to the invocation.
	Sudo bool

	// Timeout bounds the invocation; zero means no timeout. Expiry is
	// reported as TimedOut, which callers treat as Failure.
	Timeout time.Duration
}

// Runner executes external commands. Tasks depend on this interface so
// tests can inject a fake and assert on the exact invocations made.
type Runner interface {
	Run(ctx context.Context, name string, args []string, opts Options) Outcome
	LookPath(name string) bool
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// LookPath reports whether an executable is available on the search path.
func (ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run spawns the command and captures its outcome. An absent executable is
// reported via Found=false, not as an error, so callers can treat a
// missing optional tool as Skip rather than Failure. A non-zero exit is
// reported in ExitCode; only an OS-level inability to spawn is collapsed
// into ExitCode -1 with the spawn error text in Stderr.
func (r ExecRunner) Run(ctx context.Context, name string, args []string, opts Options) Outcome {
	if !r.LookPath(name) {
		logger.Debug("%s not found on PATH, skipping invocation", name)
		return Outcome{Found: false, ExitCode: -1}
	}

	argv := append([]string{name}, args...)
	if opts.Sudo {
		if !r.LookPath("sudo") {
			return Outcome{Found: false, ExitCode: -1}
		}
		argv = append([]string{"sudo"}, argv...)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// On cancellation only the direct child is killed; its descendants can
	// keep the stdout/stderr pipes open (package managers fork constantly),
	// which would block Wait past the deadline. WaitDelay makes Wait give
	// up on the pipes after a grace period so the timeout actually bounds
	// the invocation.
	cmd.WaitDelay = waitDelay
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		// Overlay on the inherited environment so PATH, HOME, and the
		// SSH agent variables keep flowing to children.
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running: %s", strings.Join(argv, " "))
	err := cmd.Run()

	out := Outcome{
		Found:  true,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		out.TimedOut = true
		out.ExitCode = -1
		return out
	}

	switch {
	case err == nil:
		out.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Ran but failed: the exit code carries the verdict.
			out.ExitCode = exitErr.ExitCode()
		} else {
			// Could not spawn at all (permissions, OS failure).
			out.ExitCode = -1
			if out.Stderr == "" {
				out.Stderr = err.Error()
			}
		}
	}
	return out
}

// DryRunner wraps another Runner and logs the command line instead of
// executing it. Tool presence checks still hit the real host so the log
// reflects what a real run would actually invoke.
type DryRunner struct {
	Real Runner
}

func (d DryRunner) LookPath(name string) bool {
	return d.Real.LookPath(name)
}

func (d DryRunner) Run(ctx context.Context, name string, args []string, opts Options) Outcome {
	if !d.Real.LookPath(name) {
		return Outcome{Found: false, ExitCode: -1}
	}
	argv := append([]string{name}, args...)
	if opts.Sudo {
		argv = append([]string{"sudo"}, argv...)
	}
	logger.Info("dry-run: would execute: %s", strings.Join(argv, " "))
	return Outcome{Found: true, ExitCode: 0}
}
