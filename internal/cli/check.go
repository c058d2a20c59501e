package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bankmbt/internal/config"
	"github.com/roach88/bankmbt/internal/harness"
	"github.com/roach88/bankmbt/internal/store"
	"github.com/roach88/bankmbt/internal/trace"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	ConfigPath string
	MaxTraces  int
	Pattern    string
	DB         string
	KeepGoing  bool
	Quiet      bool

	// ids overrides run id generation in tests.
	ids harness.IDGenerator
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newCheckCommand(rootOpts, nil)
}

func newCheckCommand(rootOpts *RootOptions, ids harness.IDGenerator) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts, ids: ids}

	cmd := &cobra.Command{
		Use:   "check [traces-dir]",
		Short: "Replay traces against the ledger model",
		Long: `Replay every trace fixture in a directory against the ledger model.

Fixtures are named by a pattern with one %d (default out%d.itf.json) and
are checked in index order. The first step whose resulting state or error
differs from the recording fails the fixture, and the run stops there
unless --keep-going is set.

In text mode each fixture's replay is echoed as it runs ("Trace #i" followed
by one "ACTION: ..." line per applied action) before the report. --quiet
prints the report only.

Exit codes:
  0 - All traces passed
  1 - A trace mismatched or could not be loaded
  2 - Command error (invalid flags, missing directory, etc.)

Examples:
  bankmbt check
  bankmbt check ./traces --keep-going
  bankmbt check ./traces --db runs.db --format json
  bankmbt check --config bankmbt.yaml -v`,
		Args:          maxArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().IntVar(&opts.MaxTraces, "max", trace.DefaultMaxTraces, "exclusive upper bound on fixture indices")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", trace.DefaultPattern, "fixture file name pattern with one %d")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite path for the step log (default in-memory)")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "continue after the first failing trace")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "omit the action trace in text mode")

	return cmd
}

// loadCheckConfig merges the config file, flags and positional directory.
// Flags override the file only when set explicitly.
func loadCheckConfig(opts *CheckOptions, cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("max") {
		cfg.MaxTraces = opts.MaxTraces
	}
	if flags.Changed("pattern") {
		cfg.Pattern = opts.Pattern
	}
	if flags.Changed("db") {
		cfg.DB = opts.DB
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing = opts.KeepGoing
	}
	if len(args) > 0 {
		cfg.TracesDir = args[0]
	}

	return cfg, cfg.Validate()
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return store.OpenMemory()
	}
	return store.Open(path)
}

func runCheck(ctx context.Context, opts *CheckOptions, cmd *cobra.Command, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	cfg, err := loadCheckConfig(opts, cmd, args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := newLogger(cmd.ErrOrStderr(), level, opts.Verbose)

	if _, err := os.Stat(cfg.TracesDir); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("traces directory not found: %s", cfg.TracesDir))
	}

	pattern, err := trace.ParsePattern(cfg.Pattern)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid pattern", err)
	}
	entries, err := trace.Discover(cfg.TracesDir, pattern, cfg.MaxTraces)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list fixtures", err)
	}
	if len(entries) == 0 {
		msg := fmt.Sprintf("no fixtures matching %s in %s", pattern, cfg.TracesDir)
		if err := out.Error(CodeNoFixtures, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}

	st, err := openStore(cfg.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open step log", err)
	}
	defer st.Close()

	var progress io.Writer
	if !opts.Quiet && !out.IsJSON() {
		progress = cmd.OutOrStdout()
	}

	runner, err := harness.New(harness.Options{
		TracesDir: cfg.TracesDir,
		Pattern:   pattern,
		MaxTraces: cfg.MaxTraces,
		KeepGoing: cfg.KeepGoing,
		Store:     st,
		Logger:    logger,
		Progress:  progress,
		IDs:       opts.ids,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start run", err)
	}

	result, err := runner.RunEntries(ctx, entries)
	if err != nil {
		return WrapExitError(ExitCommandError, "run aborted", err)
	}

	if out.IsJSON() {
		return outputCheckJSON(out, result)
	}
	return outputCheckText(cmd.OutOrStdout(), result)
}

func checkFailure(result *harness.RunResult) string {
	return fmt.Sprintf("%d trace(s) failed, %d could not be loaded", result.Failed, result.Errors)
}

func outputCheckJSON(out *OutputFormatter, result *harness.RunResult) error {
	resp := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
	if !result.Pass {
		resp.Status = "error"
		resp.Error = &CLIError{Code: CodeCheckFailed, Message: checkFailure(result)}
	}
	if err := out.Respond(resp); err != nil {
		return err
	}
	if !result.Pass {
		return NewExitError(ExitFailure, checkFailure(result))
	}
	return nil
}

func outputCheckText(w io.Writer, result *harness.RunResult) error {
	for _, fr := range result.Fixtures {
		switch fr.Outcome {
		case harness.OutcomePassed:
			fmt.Fprintf(w, "✓ trace #%d (%d steps)\n", fr.Index, fr.Steps)
		case harness.OutcomeFailed:
			fmt.Fprintf(w, "✗ trace #%d\n", fr.Index)
			writeIndented(w, fr.Mismatch.Report())
		default:
			fmt.Fprintf(w, "✗ trace #%d\n", fr.Index)
			fmt.Fprintf(w, "  Load error: %s\n", fr.Error)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d errors, %d total\n",
		result.Passed, result.Failed, result.Errors, result.Total)

	if result.Stopped {
		fmt.Fprintln(w, "Stopped at the first failing trace (use --keep-going to check the rest)")
	}
	if !result.Pass {
		return NewExitError(ExitFailure, checkFailure(result))
	}

	fmt.Fprintln(w, "✓ All traces passed")
	return nil
}

func writeIndented(w io.Writer, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
