package trace

import (
	"github.com/roach88/bankmbt/internal/bank"
)

// Fixture is one decoded trace.
type Fixture struct {
	Index int
	Path  string
	// Steps holds every recorded state in order. Steps[0] is the initial
	// state; replay starts at Steps[1].
	Steps []Step
}

// Step is one recorded state with the action that produced it.
type Step struct {
	Index         int
	Action        Action
	Expected      *bank.State
	ExpectedError bank.Outcome
}

// InitialState returns a fresh copy of the first recorded state.
func (f *Fixture) InitialState() *bank.State {
	if len(f.Steps) == 0 {
		return bank.NewState()
	}
	return f.Steps[0].Expected.Clone()
}

// Transitions counts the steps after the initial one.
func (f *Fixture) Transitions() int {
	if len(f.Steps) == 0 {
		return 0
	}
	return len(f.Steps) - 1
}
