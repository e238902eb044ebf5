package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"upkeep/internal/config"
	"upkeep/internal/runner"
	"upkeep/internal/task"
)

type call struct {
	name string
	args string
	sudo bool
}

// fakeRunner records invocations; presence and outcomes are programmable
// per tool name.
type fakeRunner struct {
	calls    []call
	present  map[string]bool
	outcomes map[string]runner.Outcome // keyed by tool name
}

func (f *fakeRunner) LookPath(name string) bool {
	return f.present[name]
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, opts runner.Options) runner.Outcome {
	f.calls = append(f.calls, call{name: name, args: strings.Join(args, " "), sudo: opts.Sudo})
	if !f.present[name] {
		return runner.Outcome{Found: false, ExitCode: -1}
	}
	if out, ok := f.outcomes[name]; ok {
		return out
	}
	return runner.Outcome{Found: true, ExitCode: 0}
}

func group(f *fakeRunner, cfg config.Cleanup) *Group {
	return &Group{Runner: f, Cfg: cfg}
}

func resultFor(t *testing.T, results []task.Result, name string) task.Result {
	t.Helper()
	for _, r := range results {
		if r.Task == name {
			return r
		}
	}
	t.Fatalf("no result named %q in %+v", name, results)
	return task.Result{}
}

func TestDisabledSubTasksNeverInvokeTheRunner(t *testing.T) {
	f := &fakeRunner{present: map[string]bool{"pacman": true, "docker": true, "journalctl": true}}
	g := group(f, config.Cleanup{}) // everything disabled

	results := g.Run(context.Background())

	if len(f.calls) != 0 {
		t.Fatalf("disabled sub-tasks invoked the runner: %+v", f.calls)
	}
	if len(results) != 6 {
		t.Fatalf("expected one result per sub-task, got %d", len(results))
	}
	for _, r := range results {
		if r.Status != task.StatusSkipped {
			t.Errorf("%s should be Skipped, got %v", r.Task, r.Status)
		}
		if !strings.Contains(r.Detail, "disabled") {
			t.Errorf("%s diagnostic = %q", r.Task, r.Detail)
		}
	}
}

func TestAbsentToolIsSkippedNotFailure(t *testing.T) {
	f := &fakeRunner{present: map[string]bool{}}
	g := group(f, config.Cleanup{Docker: true, Journal: true, JournalRetentionDays: 7})

	results := g.Run(context.Background())

	for _, name := range []string{"docker prune", "journal vacuum"} {
		r := resultFor(t, results, name)
		if r.Status != task.StatusSkipped {
			t.Errorf("%s with absent tool should be Skipped, got %+v", name, r)
		}
	}
}

func TestJournalVacuumUsesConfiguredRetention(t *testing.T) {
	f := &fakeRunner{present: map[string]bool{"journalctl": true}}
	g := group(f, config.Cleanup{Journal: true, JournalRetentionDays: 21})

	g.Run(context.Background())

	if len(f.calls) != 1 {
		t.Fatalf("calls = %+v", f.calls)
	}
	if f.calls[0].args != "--vacuum-time=21d" {
		t.Errorf("args = %q", f.calls[0].args)
	}
	if !f.calls[0].sudo {
		t.Error("journal vacuum requires elevation")
	}
}

func TestPackageCacheFallsBackFromPaccacheToPacman(t *testing.T) {
	f := &fakeRunner{present: map[string]bool{"pacman": true}}
	g := group(f, config.Cleanup{PackageCache: true, KeepCacheVersions: 2})

	results := g.Run(context.Background())

	r := resultFor(t, results, "package cache")
	if r.Status != task.StatusSuccess {
		t.Fatalf("got %+v", r)
	}
	if f.calls[0].name != "pacman" || f.calls[0].args != "-Sc --noconfirm" {
		t.Errorf("unexpected invocation %+v", f.calls[0])
	}
}

func TestDockerVolumesOnlyWhenEnabled(t *testing.T) {
	f := &fakeRunner{present: map[string]bool{"docker": true}}
	g := group(f, config.Cleanup{Docker: true})

	g.Run(context.Background())
	if f.calls[0].args != "system prune -f" {
		t.Errorf("args = %q", f.calls[0].args)
	}

	f2 := &fakeRunner{present: map[string]bool{"docker": true}}
	g2 := group(f2, config.Cleanup{Docker: true, DockerVolumes: true})

	g2.Run(context.Background())
	if f2.calls[0].args != "system prune -f --volumes" {
		t.Errorf("args = %q", f2.calls[0].args)
	}
}

func TestLanguageCachesAggregateFailures(t *testing.T) {
	f := &fakeRunner{
		present: map[string]bool{"npm": true, "pip3": true},
		outcomes: map[string]runner.Outcome{
			"pip3": {Found: true, ExitCode: 1, Stderr: "cache purge exploded"},
		},
	}
	g := group(f, config.Cleanup{LanguageCaches: true})

	results := g.Run(context.Background())

	r := resultFor(t, results, "language caches")
	if r.Status != task.StatusFailure {
		t.Fatalf("got %+v", r)
	}
	if !strings.Contains(r.Detail, "pip3") || !strings.Contains(r.Detail, "cache purge exploded") {
		t.Errorf("diagnostic = %q", r.Detail)
	}
}

func TestTmpFilesPrunesByAge(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "stale")
	if err := os.WriteFile(old, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "fresh")
	if err := os.WriteFile(fresh, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "subdir")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(sub, stale, stale); err != nil {
		t.Fatal(err)
	}

	f := &fakeRunner{}
	g := group(f, config.Cleanup{TmpFiles: true, TmpDirs: []string{dir}, TmpMaxAgeDays: 7})

	results := g.Run(context.Background())

	r := resultFor(t, results, "tmp files")
	if r.Status != task.StatusSuccess || !strings.Contains(r.Detail, "removed 1 files") {
		t.Fatalf("got %+v", r)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale file survived")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file was removed")
	}
	if _, err := os.Stat(sub); err != nil {
		t.Error("directories must not be pruned")
	}
}

func TestOrphanRemovalDeclined(t *testing.T) {
	f := &fakeRunner{
		present:  map[string]bool{"pacman": true},
		outcomes: map[string]runner.Outcome{"pacman": {Found: true, Stdout: "liborphan\noldlib\n"}},
	}
	g := group(f, config.Cleanup{Orphans: true})
	g.Confirm = func(string) bool { return false }

	results := g.Run(context.Background())

	r := resultFor(t, results, "orphaned packages")
	if r.Status != task.StatusSkipped || !strings.Contains(r.Detail, "declined") {
		t.Fatalf("got %+v", r)
	}
	// Only the listing ran, never the removal.
	for _, c := range f.calls {
		if strings.Contains(c.args, "-Rns") {
			t.Errorf("removal ran despite declined confirmation: %+v", c)
		}
	}
}

func TestOrphanRemovalConfirmed(t *testing.T) {
	f := &fakeRunner{
		present:  map[string]bool{"pacman": true},
		outcomes: map[string]runner.Outcome{"pacman": {Found: true, Stdout: "liborphan\n"}},
	}
	g := group(f, config.Cleanup{Orphans: true})
	g.Confirm = func(string) bool { return true }

	results := g.Run(context.Background())

	r := resultFor(t, results, "orphaned packages")
	if r.Status != task.StatusSuccess {
		t.Fatalf("got %+v", r)
	}
	last := f.calls[len(f.calls)-1]
	if !strings.HasPrefix(last.args, "-Rns --noconfirm liborphan") {
		t.Errorf("removal args = %q", last.args)
	}
	if !last.sudo {
		t.Error("orphan removal requires elevation")
	}
}

func TestNoOrphansIsSuccess(t *testing.T) {
	f := &fakeRunner{
		present:  map[string]bool{"pacman": true},
		outcomes: map[string]runner.Outcome{"pacman": {Found: true, ExitCode: 1, Stdout: ""}},
	}
	g := group(f, config.Cleanup{Orphans: true})
	g.Confirm = func(string) bool { t.Fatal("no confirmation needed when nothing to remove"); return false }

	results := g.Run(context.Background())

	r := resultFor(t, results, "orphaned packages")
	if r.Status != task.StatusSuccess || !strings.Contains(r.Detail, "no orphaned packages") {
		t.Fatalf("got %+v", r)
	}
}
