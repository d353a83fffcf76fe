package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxnordlund/future"
	"github.com/maxnordlund/future/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	FutureID uint64 // optional - filter to one future
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Dump a recorded operation trace",
		Long: `Dump the events recorded in a trace database, in seq order.

Every operation contributes two events sharing a token: "issued" when
it was spliced onto its future's chain, and "settled" when it was
applied. Gaps between the two show how far behind a slow seed the
issued operations ran.

Examples:
  future trace --db ./trace.db
  future trace --db ./trace.db --future 1
  future trace --db ./trace.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Uint64Var(&opts.FutureID, "future", 0, "only show events for this future id")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	events, err := loadEvents(opts.Database, opts.FutureID)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}
	formatter.VerboseLog("loaded %d events from %s", len(events), opts.Database)

	if opts.Format == "json" {
		return formatter.Success(events)
	}
	return formatter.Success(formatTraceText(events))
}

func loadEvents(path string, futureID uint64) ([]future.Event, error) {
	st, err := trace.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ctx := context.Background()
	if futureID != 0 {
		return st.ListFuture(ctx, futureID)
	}
	return st.List(ctx)
}

func formatTraceText(events []future.Event) string {
	if len(events) == 0 {
		return "no events"
	}

	var b strings.Builder
	for i, ev := range events {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%4d %-7s future=%d %-24s %s", ev.Seq, ev.Phase, ev.FutureID, ev.Token, ev.Kind)
		if ev.Key != "" {
			fmt.Fprintf(&b, " key=%s", ev.Key)
		}
		if ev.Operands > 0 {
			fmt.Fprintf(&b, " operands=%d", ev.Operands)
		}
		if ev.Outcome != "" {
			fmt.Fprintf(&b, " outcome=%s", ev.Outcome)
		}
		if ev.Result != nil {
			fmt.Fprintf(&b, " result=%v", ev.Result)
		}
		if ev.Err != "" {
			fmt.Fprintf(&b, " error=%q", ev.Err)
		}
	}
	return b.String()
}
