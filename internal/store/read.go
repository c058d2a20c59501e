package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, traces_dir, pattern, max_traces, outcome, seq
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, traces_dir, pattern, max_traces, outcome, seq
		FROM runs
		ORDER BY rowid DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, traces_dir, pattern, max_traces, outcome, seq
		FROM runs
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadFixtures returns the fixture outcomes of a run ordered by index.
//
// Returns an empty slice (not nil) if the run recorded no fixtures.
func (s *Store) ReadFixtures(ctx context.Context, runID string) ([]FixtureRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, fixture_index, path, outcome, steps, failed_step, error, seq
		FROM fixtures
		WHERE run_id = ?
		ORDER BY fixture_index ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query fixtures: %w", err)
	}
	defer rows.Close()

	fixtures := []FixtureRecord{}
	for rows.Next() {
		rec, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixtures: %w", err)
	}
	return fixtures, nil
}

// ReadFixture returns one fixture outcome of a run.
func (s *Store) ReadFixture(ctx context.Context, runID string, index int) (FixtureRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, fixture_index, path, outcome, steps, failed_step, error, seq
		FROM fixtures
		WHERE run_id = ? AND fixture_index = ?
	`, runID, index)
	rec, err := scanFixture(row)
	if err != nil {
		return FixtureRecord{}, fmt.Errorf("read fixture #%d: %w", index, err)
	}
	return rec, nil
}

// ReadSteps returns the recorded steps of one fixture in replay order.
//
// Returns an empty slice (not nil) if no steps were recorded.
func (s *Store) ReadSteps(ctx context.Context, runID string, fixture int) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, fixture_index, step_index, action, args, actual_error, expected_error,
		       actual_state, expected_state, state_hash, matched, skipped, seq
		FROM steps
		WHERE run_id = ? AND fixture_index = ?
		ORDER BY seq ASC, step_index ASC
	`, runID, fixture)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []StepRecord{}
	for rows.Next() {
		rec, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.TracesDir, &run.Pattern, &run.MaxTraces, &run.Outcome, &run.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

func scanFixture(row scanner) (FixtureRecord, error) {
	var (
		rec        FixtureRecord
		failedStep sql.NullInt64
	)
	err := row.Scan(&rec.RunID, &rec.Index, &rec.Path, &rec.Outcome, &rec.Steps, &failedStep, &rec.Error, &rec.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return FixtureRecord{}, ErrNotFound
	}
	if err != nil {
		return FixtureRecord{}, fmt.Errorf("scan fixture: %w", err)
	}
	rec.FailedStep = -1
	if failedStep.Valid {
		rec.FailedStep = int(failedStep.Int64)
	}
	return rec, nil
}

func scanStep(row scanner) (StepRecord, error) {
	var (
		rec                    StepRecord
		args, actual, expected string
		matched, skipped       int
	)
	err := row.Scan(
		&rec.RunID,
		&rec.Fixture,
		&rec.Step,
		&rec.Action,
		&args,
		&rec.ActualError,
		&rec.ExpectedError,
		&actual,
		&expected,
		&rec.StateHash,
		&matched,
		&skipped,
		&rec.Seq,
	)
	if err != nil {
		return StepRecord{}, fmt.Errorf("scan step: %w", err)
	}

	if rec.Args, err = unmarshalArgs(args); err != nil {
		return StepRecord{}, err
	}
	if rec.ActualState, err = unmarshalValue(actual); err != nil {
		return StepRecord{}, err
	}
	if rec.ExpectedState, err = unmarshalValue(expected); err != nil {
		return StepRecord{}, err
	}
	rec.Matched = matched != 0
	rec.Skipped = skipped != 0
	return rec, nil
}
