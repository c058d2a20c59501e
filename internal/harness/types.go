package harness

import (
	"github.com/roach88/bankmbt/internal/bank"
	"github.com/roach88/bankmbt/internal/store"
)

// Outcome is the terminal state of one fixture.
type Outcome string

const (
	// OutcomePassed means every step matched the recording.
	OutcomePassed Outcome = store.FixturePassed
	// OutcomeFailed means a step's state or error differed.
	OutcomeFailed Outcome = store.FixtureFailed
	// OutcomeError means the fixture could not be read or decoded.
	OutcomeError Outcome = store.FixtureError
)

// Mismatch describes the first step of a fixture whose result differs
// from the recording.
type Mismatch struct {
	Fixture       int          `json:"fixture"`
	Path          string       `json:"path"`
	Step          int          `json:"step"`
	Action        string       `json:"action"`
	ActualState   *bank.State  `json:"actual_state"`
	ExpectedState *bank.State  `json:"expected_state"`
	ActualError   bank.Outcome `json:"actual_error"`
	ExpectedError bank.Outcome `json:"expected_error"`
	StateDiffers  bool         `json:"state_differs"`
	ErrorDiffers  bool         `json:"error_differs"`
}

// FixtureResult is the result of checking one fixture.
type FixtureResult struct {
	Index   int     `json:"index"`
	Path    string  `json:"path"`
	Outcome Outcome `json:"outcome"`
	// Steps counts the transitions replayed, the failing one included.
	Steps    int       `json:"steps"`
	Skipped  int       `json:"skipped,omitempty"`
	Mismatch *Mismatch `json:"mismatch,omitempty"`
	Error    string    `json:"error,omitempty"`
	Err      error     `json:"-"`
}

// RunResult aggregates the fixtures processed by one run.
type RunResult struct {
	RunID    string          `json:"run_id"`
	Fixtures []FixtureResult `json:"fixtures"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Errors   int             `json:"errors"`
	Total    int             `json:"total"`
	Pass     bool            `json:"pass"`
	// Gaps lists indices below the last fixture that had no file. Each
	// is also reported as an error fixture.
	Gaps []int `json:"gaps,omitempty"`
	// Stopped is set when the run ended at a failing fixture with
	// fixtures left to check.
	Stopped bool `json:"stopped,omitempty"`
}

func (r *RunResult) add(fr FixtureResult) {
	r.Fixtures = append(r.Fixtures, fr)
	r.Total++
	switch fr.Outcome {
	case OutcomePassed:
		r.Passed++
	case OutcomeFailed:
		r.Failed++
	default:
		r.Errors++
	}
	r.Pass = r.Failed == 0 && r.Errors == 0
}
