package task

import (
	"context"
	"strings"
	"testing"
)

func staticTask(name string, results ...Result) Task {
	return Task{Name: name, Run: func(ctx context.Context) []Result {
		return results
	}}
}

func TestDriverRecordsEveryResultInOrder(t *testing.T) {
	d := &Driver{Tasks: []Task{
		staticTask("a", Success("a", "")),
		staticTask("b", Skipped("b", "disabled"), Failure("b2", "boom")),
		staticTask("c", Success("c", "")),
	}}

	s := d.Run(context.Background())

	if len(s.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(s.Results))
	}
	wantOrder := []string{"a", "b", "b2", "c"}
	for i, w := range wantOrder {
		if s.Results[i].Task != w {
			t.Errorf("result %d = %q, want %q", i, s.Results[i].Task, w)
		}
	}
	if s.Succeeded() != 2 || s.Failed() != 1 || s.Skipped() != 1 {
		t.Errorf("counts = %d/%d/%d", s.Succeeded(), s.Failed(), s.Skipped())
	}
}

func TestPanicBecomesFailureAndRunContinues(t *testing.T) {
	ran := false
	d := &Driver{Tasks: []Task{
		{Name: "exploder", Run: func(ctx context.Context) []Result {
			panic("unexpected internal fault")
		}},
		{Name: "after", Run: func(ctx context.Context) []Result {
			ran = true
			return []Result{Success("after", "")}
		}},
	}}

	s := d.Run(context.Background())

	if !ran {
		t.Fatal("task after the panic did not run")
	}
	if s.Failed() != 1 {
		t.Fatalf("panic not recorded as failure: %+v", s.Results)
	}
	first := s.Results[0]
	if first.Task != "exploder" || first.Status != StatusFailure {
		t.Errorf("unexpected result for panicking task: %+v", first)
	}
	if !strings.Contains(first.Detail, "unexpected internal fault") {
		t.Errorf("panic value missing from diagnostic: %q", first.Detail)
	}
}

func TestEmptyTaskStillRecordsAResult(t *testing.T) {
	d := &Driver{Tasks: []Task{staticTask("quiet")}}

	s := d.Run(context.Background())

	if len(s.Results) != 1 {
		t.Fatalf("expected a placeholder result, got %d", len(s.Results))
	}
	if s.Results[0].Status != StatusSkipped {
		t.Errorf("placeholder should be Skipped, got %v", s.Results[0].Status)
	}
}

func TestCancelledContextStopsRemainingTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ran := false
	d := &Driver{Tasks: []Task{
		{Name: "canceller", Run: func(ctx context.Context) []Result {
			cancel()
			return []Result{Success("canceller", "")}
		}},
		{Name: "never", Run: func(ctx context.Context) []Result {
			ran = true
			return []Result{Success("never", "")}
		}},
	}}

	s := d.Run(ctx)

	if ran {
		t.Error("task started after cancellation")
	}
	if len(s.Results) != 1 {
		t.Errorf("expected only the first task's result, got %d", len(s.Results))
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name    string
		results []Result
		want    int
	}{
		{"all success", []Result{Success("a", "")}, 0},
		{"skips do not fail the run", []Result{Success("a", ""), Skipped("b", "")}, 0},
		{"one failure", []Result{Success("a", ""), Failure("b", "x")}, 1},
		{"empty run", nil, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := Summary{Results: c.results}
			if got := s.ExitCode(); got != c.want {
				t.Errorf("ExitCode() = %d, want %d", got, c.want)
			}
		})
	}
}
