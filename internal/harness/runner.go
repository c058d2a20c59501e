package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/bankmbt/internal/bank"
	"github.com/roach88/bankmbt/internal/store"
	"github.com/roach88/bankmbt/internal/trace"
)

// Options configures a Runner.
type Options struct {
	// TracesDir is searched for fixtures named by Pattern.
	TracesDir string
	Pattern   trace.Pattern
	// MaxTraces is the exclusive upper bound on fixture indices.
	MaxTraces int
	// KeepGoing continues past failing fixtures.
	KeepGoing bool

	// Store receives the step log. Required.
	Store *store.Store
	// Logger defaults to a discard logger.
	Logger *slog.Logger
	// Progress receives the human-readable action trace. Defaults to
	// io.Discard.
	Progress io.Writer
	// IDs generates run ids. Defaults to UUIDv7Generator.
	IDs IDGenerator
}

// Runner checks fixtures against the ledger model.
// A Runner is not safe for concurrent use.
type Runner struct {
	opts     Options
	decoder  *trace.Decoder
	clock    *Clock
	logger   *slog.Logger
	progress io.Writer
}

// New creates a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Store == nil {
		return nil, errors.New("harness: store is required")
	}
	if opts.MaxTraces <= 0 {
		opts.MaxTraces = trace.DefaultMaxTraces
	}
	if opts.Pattern == (trace.Pattern{}) {
		p, err := trace.ParsePattern(trace.DefaultPattern)
		if err != nil {
			return nil, err
		}
		opts.Pattern = p
	}
	if opts.IDs == nil {
		opts.IDs = UUIDv7Generator{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	decoder, err := trace.NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}

	return &Runner{
		opts:     opts,
		decoder:  decoder,
		clock:    NewClock(),
		logger:   logger,
		progress: progress,
	}, nil
}

// Run discovers the fixtures in the traces directory and checks them in
// index order. The returned error is reserved for failures of the run
// itself (unreadable directory, store errors); fixture failures are
// reported in the RunResult.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	entries, err := trace.Discover(r.opts.TracesDir, r.opts.Pattern, r.opts.MaxTraces)
	if err != nil {
		return nil, err
	}
	return r.RunEntries(ctx, entries)
}

// RunEntries checks the given fixtures in order. An index missing below
// the last entry is checked as a fixture that failed to load.
func (r *Runner) RunEntries(ctx context.Context, entries []trace.Entry) (*RunResult, error) {
	result := &RunResult{
		RunID:    r.opts.IDs.Generate(),
		Fixtures: []FixtureResult{},
		Pass:     true,
		Gaps:     trace.Gaps(entries),
	}
	logger := r.logger.With("run_id", result.RunID)

	if len(result.Gaps) > 0 {
		logger.Warn("fixture indices missing", "gaps", result.Gaps)
	}
	entries = trace.Fill(r.opts.TracesDir, r.opts.Pattern, entries)

	err := r.opts.Store.BeginRun(ctx, store.Run{
		ID:        result.RunID,
		TracesDir: r.opts.TracesDir,
		Pattern:   r.opts.Pattern.String(),
		MaxTraces: r.opts.MaxTraces,
		Seq:       r.clock.Next(),
	})
	if err != nil {
		return nil, err
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fr, err := r.checkEntry(ctx, result.RunID, entry)
		if err != nil {
			return nil, err
		}
		result.add(fr)

		if fr.Outcome != OutcomePassed && !r.opts.KeepGoing {
			result.Stopped = i < len(entries)-1
			break
		}
	}

	outcome := store.RunPass
	if !result.Pass {
		outcome = store.RunFail
	}
	if err := r.opts.Store.FinishRun(ctx, result.RunID, outcome); err != nil {
		return nil, err
	}

	logger.Info("run finished",
		"total", result.Total,
		"passed", result.Passed,
		"failed", result.Failed,
		"errors", result.Errors,
	)
	return result, nil
}

// checkEntry drives one fixture through LoadingFixture and Replaying.
func (r *Runner) checkEntry(ctx context.Context, runID string, entry trace.Entry) (FixtureResult, error) {
	logger := r.logger.With("run_id", runID, "fixture", entry.Index)
	fmt.Fprintf(r.progress, "Trace #%d\n", entry.Index)

	f, err := r.decoder.Load(entry)
	if err != nil {
		logger.Error("fixture not loaded", "path", entry.Path, "error", err)
		fr := FixtureResult{
			Index:   entry.Index,
			Path:    entry.Path,
			Outcome: OutcomeError,
			Error:   err.Error(),
			Err:     err,
		}
		return fr, r.recordFixture(ctx, runID, fr)
	}
	logger.Debug("fixture loaded", "path", f.Path, "steps", len(f.Steps))

	fr, err := r.Replay(ctx, runID, f)
	if err != nil {
		return fr, err
	}

	switch fr.Outcome {
	case OutcomePassed:
		logger.Info("fixture passed", "steps", fr.Steps)
	case OutcomeFailed:
		logger.Warn("fixture failed", "step", fr.Mismatch.Step, "action", fr.Mismatch.Action)
	}
	return fr, r.recordFixture(ctx, runID, fr)
}

// Replay applies the steps of f to a copy of its initial state and
// compares each result with the recording. It stops at the first
// mismatch. Only store failures are returned as errors.
func (r *Runner) Replay(ctx context.Context, runID string, f *trace.Fixture) (FixtureResult, error) {
	fr := FixtureResult{Index: f.Index, Path: f.Path, Outcome: OutcomePassed}
	if len(f.Steps) == 0 {
		return fr, nil
	}

	state := f.InitialState()
	if err := r.recordStep(ctx, runID, f, f.Steps[0], state, bank.OK, true, false); err != nil {
		return fr, err
	}

	for _, step := range f.Steps[1:] {
		t, ok := step.Action.(trace.Transition)
		if !ok {
			r.logger.Info("unknown action skipped",
				"run_id", runID, "fixture", f.Index, "step", step.Index, "action", step.Action.Name())
			fmt.Fprintf(r.progress, "SKIP: %s\n", step.Action)
			fr.Skipped++
			if err := r.recordStep(ctx, runID, f, step, state, bank.OK, true, true); err != nil {
				return fr, err
			}
			continue
		}

		fmt.Fprintf(r.progress, "ACTION: %s\n", t)
		fr.Steps++
		got := t.Apply(state)

		stateOK := state.Equal(step.Expected)
		errOK := got == step.ExpectedError
		if err := r.recordStep(ctx, runID, f, step, state, got, stateOK && errOK, false); err != nil {
			return fr, err
		}

		if !stateOK || !errOK {
			fr.Outcome = OutcomeFailed
			fr.Mismatch = &Mismatch{
				Fixture:       f.Index,
				Path:          f.Path,
				Step:          step.Index,
				Action:        t.String(),
				ActualState:   state.Clone(),
				ExpectedState: step.Expected.Clone(),
				ActualError:   got,
				ExpectedError: step.ExpectedError,
				StateDiffers:  !stateOK,
				ErrorDiffers:  !errOK,
			}
			return fr, nil
		}
	}
	return fr, nil
}

func (r *Runner) recordStep(ctx context.Context, runID string, f *trace.Fixture, step trace.Step,
	actual *bank.State, got bank.Outcome, matched, skipped bool) error {
	hash, err := trace.StateHash(actual)
	if err != nil {
		return err
	}
	return r.opts.Store.WriteStep(ctx, store.StepRecord{
		RunID:         runID,
		Fixture:       f.Index,
		Step:          step.Index,
		Action:        step.Action.Name(),
		Args:          trace.EncodeArgs(step.Action),
		ActualError:   string(got),
		ExpectedError: string(step.ExpectedError),
		ActualState:   trace.EncodeState(actual),
		ExpectedState: trace.EncodeState(step.Expected),
		StateHash:     hash,
		Matched:       matched,
		Skipped:       skipped,
		Seq:           r.clock.Next(),
	})
}

func (r *Runner) recordFixture(ctx context.Context, runID string, fr FixtureResult) error {
	failedStep := -1
	if fr.Mismatch != nil {
		failedStep = fr.Mismatch.Step
	}
	return r.opts.Store.WriteFixture(ctx, store.FixtureRecord{
		RunID:      runID,
		Index:      fr.Index,
		Path:       fr.Path,
		Outcome:    string(fr.Outcome),
		Steps:      fr.Steps,
		FailedStep: failedStep,
		Error:      fr.Error,
		Seq:        r.clock.Next(),
	})
}
