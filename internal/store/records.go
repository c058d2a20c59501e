package store

import "github.com/roach88/bankmbt/internal/itf"

// Run outcomes stored in runs.outcome.
const (
	RunRunning = "running"
	RunPass    = "pass"
	RunFail    = "fail"
)

// Run is one invocation of the checker.
type Run struct {
	ID        string
	TracesDir string
	Pattern   string
	MaxTraces int
	Outcome   string
	Seq       int64
}

// FixtureRecord is the outcome of one fixture within a run.
type FixtureRecord struct {
	RunID   string
	Index   int
	Path    string
	Outcome string
	Steps   int
	// FailedStep is the first mismatching step, or -1.
	FailedStep int
	Error      string
	Seq        int64
}

// StepRecord is one replayed step.
type StepRecord struct {
	RunID         string
	Fixture       int
	Step          int
	Action        string
	Args          itf.Record
	ActualError   string
	ExpectedError string
	ActualState   itf.Value
	ExpectedState itf.Value
	StateHash     string
	Matched       bool
	// Skipped marks an action the model does not implement. Its states
	// are recorded but were not compared.
	Skipped bool
	Seq     int64
}

// Fixture outcomes stored in fixtures.outcome.
const (
	FixturePassed = "passed"
	FixtureFailed = "failed"
	FixtureError  = "error"
)
