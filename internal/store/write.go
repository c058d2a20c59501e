package store

import (
	"context"
	"database/sql"
	"fmt"
)

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	outcome := run.Outcome
	if outcome == "" {
		outcome = RunRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, traces_dir, pattern, max_traces, outcome, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.TracesDir, run.Pattern, run.MaxTraces, outcome, run.Seq)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records the final outcome of a run.
func (s *Store) FinishRun(ctx context.Context, runID, outcome string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET outcome = ? WHERE id = ?`, outcome, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// WriteFixture records the outcome of one fixture.
// Writing the same fixture twice in a run replaces the earlier outcome.
func (s *Store) WriteFixture(ctx context.Context, rec FixtureRecord) error {
	var failedStep sql.NullInt64
	if rec.FailedStep >= 0 {
		failedStep = sql.NullInt64{Int64: int64(rec.FailedStep), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fixtures
		(run_id, fixture_index, path, outcome, steps, failed_step, error, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, fixture_index) DO UPDATE SET
			path = excluded.path,
			outcome = excluded.outcome,
			steps = excluded.steps,
			failed_step = excluded.failed_step,
			error = excluded.error,
			seq = excluded.seq
	`,
		rec.RunID,
		rec.Index,
		rec.Path,
		rec.Outcome,
		rec.Steps,
		failedStep,
		rec.Error,
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// WriteStep inserts a step record. Uses ON CONFLICT DO NOTHING so a
// repeated write of the same step is ignored.
//
// States and args are serialized to canonical JSON.
func (s *Store) WriteStep(ctx context.Context, rec StepRecord) error {
	args, err := marshalArgs(rec.Args)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	actual, err := marshalValue(rec.ActualState)
	if err != nil {
		return fmt.Errorf("write step: actual state: %w", err)
	}
	expected, err := marshalValue(rec.ExpectedState)
	if err != nil {
		return fmt.Errorf("write step: expected state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, fixture_index, step_index, action, args, actual_error, expected_error,
		 actual_state, expected_state, state_hash, matched, skipped, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.RunID,
		rec.Fixture,
		rec.Step,
		rec.Action,
		args,
		rec.ActualError,
		rec.ExpectedError,
		actual,
		expected,
		rec.StateHash,
		boolToInt(rec.Matched),
		boolToInt(rec.Skipped),
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}
