package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bankmbt/internal/trace"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	MaxTraces int
	Pattern   string
}

// FixtureValidation is the decode result of one fixture.
type FixtureValidation struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Steps int    `json:"steps,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

// ValidateResult holds the outcome of the validate command.
type ValidateResult struct {
	Fixtures []FixtureValidation `json:"fixtures"`
	Valid    int                 `json:"valid"`
	Invalid  int                 `json:"invalid"`
	Total    int                 `json:"total"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [traces-dir]",
		Short: "Decode trace fixtures without replaying them",
		Long: `Check that every fixture in a directory matches the trace schema and
decodes into ledger states and actions. Nothing is replayed.

Exit codes:
  0 - All fixtures decoded
  1 - One or more fixtures are invalid
  2 - Command error (missing directory, etc.)

Examples:
  bankmbt validate ./traces
  bankmbt validate ./traces --format json`,
		Args:          maxArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "traces"
			if len(args) > 0 {
				dir = args[0]
			}
			return runValidate(opts, cmd, dir)
		},
	}

	cmd.Flags().IntVar(&opts.MaxTraces, "max", trace.DefaultMaxTraces, "exclusive upper bound on fixture indices")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", trace.DefaultPattern, "fixture file name pattern with one %d")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command, dir string) error {
	out := opts.formatter(cmd)

	if _, err := os.Stat(dir); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("traces directory not found: %s", dir))
	}
	pattern, err := trace.ParsePattern(opts.Pattern)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid pattern", err)
	}
	entries, err := trace.Discover(dir, pattern, opts.MaxTraces)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list fixtures", err)
	}
	entries = trace.Fill(dir, pattern, entries)

	decoder, err := trace.NewDecoder()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile schema", err)
	}

	result := ValidateResult{Fixtures: make([]FixtureValidation, 0, len(entries))}
	for _, entry := range entries {
		v := FixtureValidation{Index: entry.Index, Path: entry.Path}
		f, err := decoder.Load(entry)
		if err != nil {
			v.Error = err.Error()
			v.Kind = string(trace.KindOf(err))
			result.Invalid++
		} else {
			v.Valid = true
			v.Steps = f.Transitions()
			result.Valid++
		}
		out.VerboseLog("validated %s", entry.Path)
		result.Fixtures = append(result.Fixtures, v)
	}
	result.Total = len(entries)

	if out.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Invalid > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    CodeInvalidFixture,
				Message: fmt.Sprintf("%d fixture(s) invalid", result.Invalid),
			}
		}
		if err := out.Respond(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, v := range result.Fixtures {
			if v.Valid {
				fmt.Fprintf(w, "✓ trace #%d (%d steps)\n", v.Index, v.Steps)
			} else {
				fmt.Fprintf(w, "✗ trace #%d\n  %s\n", v.Index, v.Error)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Validate Summary: %d valid, %d invalid, %d total\n", result.Valid, result.Invalid, result.Total)
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d fixture(s) invalid", result.Invalid))
	}
	return nil
}
