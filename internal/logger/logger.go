package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Level is the severity of a log line. Levels are ordered ascending:
// DEBUG < INFO < WARN < ERROR. Messages below the configured minimum are
// silently dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the bracketed tag printed at the start of every log line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "?"
}

// ParseLevel converts a config or environment string ("debug", "info",
// "warn", "error") into a Level. Unknown strings fall back to INFO so a
// typo in the config never silences the log entirely.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// Colorized sprint functions per level using fatih/color.
// Green for info, bright magenta for warnings, red for errors, cyan for debug.
var (
	debugColor = color.New(color.FgCyan).SprintFunc()
	infoColor  = color.New(color.FgGreen).SprintFunc()
	warnColor  = color.New(color.FgHiMagenta).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

// The logger is process-wide state configured once at driver start.
// The mutex guarantees lines from different call sites never interleave.
var (
	mu  sync.Mutex
	min = LevelInfo

	// out receives DEBUG/INFO/WARN lines; errOut receives ERROR lines so
	// they can be redirected and filtered independently of normal output.
	// Both are swappable for tests.
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

// Init sets the minimum severity. Messages below it are dropped.
func Init(minLevel Level) {
	mu.Lock()
	defer mu.Unlock()
	min = minLevel
}

// SetOutput redirects the normal and error streams. Used by tests to
// capture output; production code leaves the defaults (stdout/stderr).
func SetOutput(normal, errors io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = normal
	errOut = errors
}

// logf formats and emits one line: severity tag, wall-clock timestamp with
// second resolution, then the message. Held under the mutex end to end so
// concurrent callers cannot interleave mid-line.
func logf(level Level, colorize func(...any) string, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < min {
		return
	}
	w := out
	if level == LevelError {
		w = errOut
	}
	line := fmt.Sprintf("[%s] %s %s", level, time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, a...))
	fmt.Fprintln(w, colorize(line))
}

// Debug logs debug messages in cyan color.
func Debug(format string, a ...any) { logf(LevelDebug, debugColor, format, a...) }

// Info logs informational messages in green color.
func Info(format string, a ...any) { logf(LevelInfo, infoColor, format, a...) }

// Warn logs warning messages in bright magenta color.
func Warn(format string, a ...any) { logf(LevelWarn, warnColor, format, a...) }

// Error logs error messages in red color on the error stream.
func Error(format string, a ...any) { logf(LevelError, errorColor, format, a...) }
