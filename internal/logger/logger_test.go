package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// capture redirects the logger into buffers for one test and restores the
// defaults afterwards.
func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() {
		SetOutput(os.Stdout, os.Stderr)
		// Restore defaults for other tests in the package.
		Init(LevelInfo)
	})
	return &out, &errOut
}

func TestBelowThresholdDropped(t *testing.T) {
	out, _ := capture(t)
	Init(LevelWarn)

	Debug("debug line")
	Info("info line")
	Warn("warn line")

	got := out.String()
	if strings.Contains(got, "debug line") || strings.Contains(got, "info line") {
		t.Errorf("below-threshold messages leaked: %q", got)
	}
	if !strings.Contains(got, "warn line") {
		t.Errorf("expected warn line, got %q", got)
	}
}

func TestErrorGoesToErrorStream(t *testing.T) {
	out, errOut := capture(t)
	Init(LevelDebug)

	Info("normal")
	Error("broken: %d", 7)

	if strings.Contains(out.String(), "broken") {
		t.Errorf("error line on normal stream: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "broken: 7") {
		t.Errorf("error line missing from error stream: %q", errOut.String())
	}
}

func TestLineCarriesTagAndTimestamp(t *testing.T) {
	out, _ := capture(t)
	Init(LevelInfo)

	Info("hello")

	line := strings.TrimSpace(out.String())
	if !strings.HasPrefix(line, "[INFO] ") {
		t.Fatalf("missing severity tag: %q", line)
	}
	// Tag, then "2006-01-02 15:04:05", then the message.
	fields := strings.SplitN(line, " ", 4)
	if len(fields) != 4 || len(fields[1]) != 10 || len(fields[2]) != 8 {
		t.Fatalf("unexpected line shape: %q", line)
	}
	if fields[3] != "hello" {
		t.Errorf("message mangled: %q", fields[3])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":    LevelDebug,
		"Info":     LevelInfo,
		"WARN":     LevelWarn,
		"warning":  LevelWarn,
		"error":    LevelError,
		"":         LevelInfo,
		"nonsense": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
