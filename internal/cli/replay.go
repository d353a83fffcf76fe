package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxnordlund/future"
	"github.com/maxnordlund/future/internal/script"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult reports a determinism check.
type ReplayResult struct {
	Deterministic bool     `json:"deterministic"`
	Recorded      int      `json:"recorded_events"`
	Replayed      int      `json:"replayed_events"`
	Divergences   []string `json:"divergences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Re-run a scenario and diff against a recorded trace",
		Long: `Re-execute a scenario and compare the fresh trace against the one
recorded in the database (written by run --db). A deterministic
scenario produces the identical event sequence on every run; any
divergence is reported event by event.

Examples:
  future run scenario.yaml --db ./trace.db
  future replay scenario.yaml --db ./trace.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the recorded trace database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
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

	recorded, err := loadEvents(opts.Database, 0)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read recorded trace", err)
	}

	result, err := script.Run(sc)
	if err != nil {
		_ = formatter.Error(ErrCodeRun, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}
	formatter.VerboseLog("recorded %d events, replayed %d events", len(recorded), len(result.Events))

	replay := diffTraces(recorded, result.Events)
	if !replay.Deterministic {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeReplay, "replay diverged from recorded trace", replay)
		} else {
			fmt.Fprintln(formatter.Writer, "replay diverged from recorded trace:")
			for _, d := range replay.Divergences {
				fmt.Fprintf(formatter.Writer, "  %s\n", d)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d divergence(s)", len(replay.Divergences)))
	}

	if opts.Format == "json" {
		return formatter.Success(replay)
	}
	return formatter.Success(fmt.Sprintf("deterministic: %d events match", replay.Recorded))
}

// diffTraces compares two event sequences position by position.
func diffTraces(recorded, replayed []future.Event) ReplayResult {
	result := ReplayResult{
		Deterministic: true,
		Recorded:      len(recorded),
		Replayed:      len(replayed),
	}

	n := len(recorded)
	if len(replayed) < n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		if d := diffEvent(i, recorded[i], replayed[i]); d != "" {
			result.Divergences = append(result.Divergences, d)
		}
	}
	if len(recorded) != len(replayed) {
		result.Divergences = append(result.Divergences,
			fmt.Sprintf("event count: recorded %d, replayed %d", len(recorded), len(replayed)))
	}

	result.Deterministic = len(result.Divergences) == 0
	return result
}

func diffEvent(i int, a, b future.Event) string {
	var fields []string
	cmp := func(name string, av, bv any) {
		if av != bv {
			fields = append(fields, fmt.Sprintf("%s: %v != %v", name, av, bv))
		}
	}
	cmp("seq", a.Seq, b.Seq)
	cmp("token", a.Token, b.Token)
	cmp("future_id", a.FutureID, b.FutureID)
	cmp("phase", a.Phase, b.Phase)
	cmp("kind", a.Kind, b.Kind)
	cmp("key", a.Key, b.Key)
	cmp("operands", a.Operands, b.Operands)
	cmp("outcome", a.Outcome, b.Outcome)
	cmp("result", a.Result, b.Result)
	cmp("error", a.Err, b.Err)

	if len(fields) == 0 {
		return ""
	}
	return fmt.Sprintf("event %d: %s", i, strings.Join(fields, ", "))
}
