package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bankmbt/internal/itf"
	"github.com/roach88/bankmbt/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - latest run when empty
	Fixture  int
	List     bool
}

// RunListing is one run in the output of trace --list.
type RunListing struct {
	RunID     string `json:"run_id"`
	TracesDir string `json:"traces_dir"`
	Outcome   string `json:"outcome"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Errors    int    `json:"errors"`
	Total     int    `json:"total"`
	Steps     int    `json:"steps"`
}

// TraceStep is one recorded step in the trace command output.
type TraceStep struct {
	Seq           int64  `json:"seq"`
	Step          int    `json:"step"`
	Action        string `json:"action"`
	Args          string `json:"args"`
	ActualError   string `json:"actual_error"`
	ExpectedError string `json:"expected_error"`
	ActualState   string `json:"actual_state"`
	ExpectedState string `json:"expected_state"`
	StateHash     string `json:"state_hash"`
	Matched       bool   `json:"matched"`
	Skipped       bool   `json:"skipped,omitempty"`
}

// TraceResult holds the recorded log of one fixture.
type TraceResult struct {
	RunID      string      `json:"run_id"`
	RunOutcome string      `json:"run_outcome"`
	Fixture    int         `json:"fixture"`
	Path       string      `json:"path"`
	Outcome    string      `json:"outcome"`
	FailedStep *int        `json:"failed_step,omitempty"`
	Error      string      `json:"error,omitempty"`
	Steps      []TraceStep `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded step log of a fixture",
		Long: `Show the steps recorded for one fixture by a previous check --db run.

Each step lists its logical sequence number, action, arguments and whether
its result matched the recording. Mismatching steps, and every step with
--verbose, also show the actual and expected states.

With --list, print every recorded run with its fixture tally instead.

Examples:
  bankmbt trace --db runs.db --list
  bankmbt trace --db runs.db --fixture 3
  bankmbt trace --db runs.db --run 0190f7c2-... --fixture 3 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default latest run)")
	cmd.Flags().IntVar(&opts.Fixture, "fixture", 0, "fixture index")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := opts.formatter(cmd)

	// Open would create an empty database, so check first.
	if _, err := os.Stat(opts.Database); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.List {
		return listRuns(ctx, out, st)
	}

	var run store.Run
	if opts.RunID == "" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.ReadRun(ctx, opts.RunID)
	}
	if err != nil {
		return notFound(out, "run not found", err)
	}

	rec, err := st.ReadFixture(ctx, run.ID, opts.Fixture)
	if err != nil {
		return notFound(out, fmt.Sprintf("trace #%d not recorded in run %s", opts.Fixture, run.ID), err)
	}
	steps, err := st.ReadSteps(ctx, run.ID, opts.Fixture)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result, err := buildTraceResult(run, rec, steps)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render steps", err)
	}

	if out.IsJSON() {
		return out.Respond(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}
	outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
	return nil
}

func listRuns(ctx context.Context, out *OutputFormatter, st *store.Store) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	listing := make([]RunListing, 0, len(runs))
	for _, run := range runs {
		sum, err := st.Summarize(ctx, run.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to summarize run", err)
		}
		listing = append(listing, RunListing{
			RunID:     run.ID,
			TracesDir: run.TracesDir,
			Outcome:   run.Outcome,
			Passed:    sum.Passed,
			Failed:    sum.Failed,
			Errors:    sum.Errors,
			Total:     sum.Total,
			Steps:     sum.Steps,
		})
	}

	if out.IsJSON() {
		return out.Success(listing)
	}
	w := out.Writer
	if len(listing) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	for _, r := range listing {
		fmt.Fprintf(w, "%s  %-4s  %d passed, %d failed, %d errors, %d total  (%s)\n",
			r.RunID, r.Outcome, r.Passed, r.Failed, r.Errors, r.Total, r.TracesDir)
	}
	return nil
}

func notFound(out *OutputFormatter, msg string, err error) error {
	if !errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, msg, err)
	}
	if out.IsJSON() {
		if encErr := out.Error(CodeNotFound, msg, nil); encErr != nil {
			return encErr
		}
	}
	return NewExitError(ExitCommandError, msg)
}

func buildTraceResult(run store.Run, rec store.FixtureRecord, steps []store.StepRecord) (TraceResult, error) {
	result := TraceResult{
		RunID:      run.ID,
		RunOutcome: run.Outcome,
		Fixture:    rec.Index,
		Path:       rec.Path,
		Outcome:    rec.Outcome,
		Error:      rec.Error,
		Steps:      make([]TraceStep, 0, len(steps)),
	}
	if rec.FailedStep >= 0 {
		failed := rec.FailedStep
		result.FailedStep = &failed
	}

	for _, s := range steps {
		args, err := itf.MarshalCanonical(s.Args)
		if err != nil {
			return result, err
		}
		actual, err := itf.MarshalCanonical(s.ActualState)
		if err != nil {
			return result, err
		}
		expected, err := itf.MarshalCanonical(s.ExpectedState)
		if err != nil {
			return result, err
		}
		result.Steps = append(result.Steps, TraceStep{
			Seq:           s.Seq,
			Step:          s.Step,
			Action:        s.Action,
			Args:          string(args),
			ActualError:   s.ActualError,
			ExpectedError: s.ExpectedError,
			ActualState:   string(actual),
			ExpectedState: string(expected),
			StateHash:     s.StateHash,
			Matched:       s.Matched,
			Skipped:       s.Skipped,
		})
	}
	return result, nil
}

func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Run %s (%s)\n", result.RunID, result.RunOutcome)
	fmt.Fprintf(w, "Trace #%d (%s): %s", result.Fixture, result.Path, result.Outcome)
	if result.FailedStep != nil {
		fmt.Fprintf(w, " at step %d", *result.FailedStep)
	}
	fmt.Fprintln(w)
	if result.Error != "" {
		fmt.Fprintf(w, "  %s\n", result.Error)
	}

	for _, s := range result.Steps {
		status := "ok"
		switch {
		case s.Skipped:
			status = "skipped"
		case !s.Matched:
			status = "MISMATCH"
		}
		fmt.Fprintf(w, "[%d] step %d %s %s %s\n", s.Seq, s.Step, s.Action, s.Args, status)
		if verbose || (!s.Matched && !s.Skipped) {
			fmt.Fprintf(w, "      actual:   %s error=%q\n", s.ActualState, s.ActualError)
			fmt.Fprintf(w, "      expected: %s error=%q\n", s.ExpectedState, s.ExpectedError)
		}
	}
}
