package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxnordlund/future/internal/script"
	"github.com/maxnordlund/future/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario and print its step results and trace",
		Long: `Execute a scenario file against a fresh arena.

Every operation the scenario issues is recorded as an issued/settled
event pair with deterministic tokens. With --db the recorded trace is
also persisted to a SQLite database for later inspection with the
trace command or determinism checks with the replay command.

Examples:
  future run scenario.yaml
  future run scenario.yaml --db ./trace.db
  future run scenario.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the recorded trace to this SQLite database")

	return cmd
}

func runRun(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sc, err := script.Load(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitFailure, "scenario rejected", err)
	}
	formatter.VerboseLog("loaded scenario %q (%d steps)", sc.Name, len(sc.Steps))

	result, err := script.Run(sc)
	if err != nil {
		_ = formatter.Error(ErrCodeRun, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	if opts.Database != "" {
		if err := persistTrace(opts.Database, result); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to persist trace", err)
		}
		formatter.VerboseLog("persisted %d events to %s", len(result.Events), opts.Database)
	}

	if opts.Format == "json" {
		data, err := (script.Snapshot{Name: sc.Name, Result: result}).Marshal()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render snapshot", err)
		}
		return formatter.Success(json.RawMessage(data))
	}

	return formatter.Success(formatRunText(sc, result))
}

// persistTrace appends a run's events to a SQLite trace database.
// Appends are idempotent per (token, phase), so re-running the same
// scenario into the same database is safe.
func persistTrace(path string, result *script.Result) error {
	st, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	for _, ev := range result.Events {
		if err := st.Append(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func formatRunText(sc *script.Scenario, result *script.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", sc.Name)
	for _, sr := range result.Steps {
		fmt.Fprintf(&b, "  %2d %-10s", sr.Step, sr.Op)
		if sr.Of != "" {
			fmt.Fprintf(&b, " of=%s", sr.Of)
		}
		if sr.Key != "" {
			fmt.Fprintf(&b, " key=%s", sr.Key)
		}
		if sr.As != "" {
			fmt.Fprintf(&b, " as=%s", sr.As)
		}
		if sr.OK != nil {
			fmt.Fprintf(&b, " ok=%t", *sr.OK)
		}
		if sr.Value != nil {
			fmt.Fprintf(&b, " value=%v", sr.Value)
		}
		if sr.Error != "" {
			fmt.Fprintf(&b, " error=%q", sr.Error)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "trace: %d events", len(result.Events))
	return b.String()
}
