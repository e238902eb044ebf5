package task

// Status is the recorded outcome of one task execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// Result records the outcome of one unit of work. It is never mutated
// after creation; the driver only collects results into the run summary.
type Result struct {
	Task   string // Task (or per-item) name the result belongs to
	Status Status
	Detail string // Optional diagnostic, e.g. captured stderr or a skip reason
}

// Success builds a Success result.
func Success(name, detail string) Result {
	return Result{Task: name, Status: StatusSuccess, Detail: detail}
}

// Failure builds a Failure result.
func Failure(name, detail string) Result {
	return Result{Task: name, Status: StatusFailure, Detail: detail}
}

// Skipped builds a Skipped result.
func Skipped(name, detail string) Result {
	return Result{Task: name, Status: StatusSkipped, Detail: detail}
}

// Summary is the terminal artifact of one run: the ordered list of every
// recorded result plus derived counts. Skipped does not count against
// success.
type Summary struct {
	Results []Result
}

// Succeeded returns the number of Success results.
func (s Summary) Succeeded() int { return s.count(StatusSuccess) }

// Failed returns the number of Failure results.
func (s Summary) Failed() int { return s.count(StatusFailure) }

// Skipped returns the number of Skipped results.
func (s Summary) Skipped() int { return s.count(StatusSkipped) }

func (s Summary) count(st Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == st {
			n++
		}
	}
	return n
}

// ExitCode maps the summary onto the process exit status: 0 if zero
// failures occurred, 1 otherwise.
func (s Summary) ExitCode() int {
	if s.Failed() > 0 {
		return 1
	}
	return 0
}
