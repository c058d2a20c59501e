package store

import (
	"context"
	"fmt"
)

// RunSummary is the fixture tally of a run recomputed from the log.
type RunSummary struct {
	Run     Run
	Passed  int
	Failed  int
	Errors  int
	Total   int
	Steps   int
	LastSeq int64
}

// Pass reports whether every recorded fixture passed.
func (s RunSummary) Pass() bool {
	return s.Total > 0 && s.Passed == s.Total
}

// Summarize tallies the fixture outcomes of a run.
func (s *Store) Summarize(ctx context.Context, runID string) (RunSummary, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return RunSummary{}, err
	}
	summary := RunSummary{Run: run}

	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*)
		FROM fixtures
		WHERE run_id = ?
		GROUP BY outcome
	`, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("summarize run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return RunSummary{}, fmt.Errorf("summarize run: %w", err)
		}
		switch outcome {
		case FixturePassed:
			summary.Passed += n
		case FixtureFailed:
			summary.Failed += n
		default:
			summary.Errors += n
		}
		summary.Total += n
	}
	if err := rows.Err(); err != nil {
		return RunSummary{}, fmt.Errorf("summarize run: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(seq), 0)
		FROM steps
		WHERE run_id = ?
	`, runID).Scan(&summary.Steps, &summary.LastSeq)
	if err != nil {
		return RunSummary{}, fmt.Errorf("summarize run: %w", err)
	}
	return summary, nil
}
