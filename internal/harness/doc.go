// Package harness replays trace fixtures against the ledger model and
// reports where the model and the recorded trace disagree.
//
// Each fixture moves through a small state machine:
//
//	LoadingFixture -> Replaying -> Passed | Failed
//
// LoadingFixture reads and decodes the fixture. A read or decode failure
// ends the fixture with OutcomeError, which counts as a failure but is
// reported apart from conformance mismatches.
//
// Replaying starts from a copy of the first recorded state and applies
// every later step in order. After each step the resulting state and the
// returned outcome are compared with the recording. The first difference
// ends the fixture with OutcomeFailed and a Mismatch describing it.
//
// Steps naming an action the model does not implement are skipped: the
// state is left as it is and nothing is compared.
//
// Every processed step is written to a store.Store together with a
// logical sequence number, so a run can be inspected after the fact.
//
// Fixtures are processed one at a time and never share state.
package harness
