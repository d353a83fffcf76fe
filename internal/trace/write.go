package trace

import (
	"context"
	"fmt"

	"github.com/maxnordlund/future"
)

// Append inserts one trace event. Uses ON CONFLICT DO NOTHING keyed on
// (token, phase) for idempotency: re-recording the same operation phase
// is silently ignored, which makes replay-into-the-same-store safe.
func (s *Store) Append(ctx context.Context, ev future.Event) error {
	result, err := MarshalCanonical(ev.Result)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(seq, token, future_id, phase, kind, key, operands, outcome, result, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token, phase) DO NOTHING
	`,
		ev.Seq,
		ev.Token,
		ev.FutureID,
		ev.Phase,
		ev.Kind,
		ev.Key,
		ev.Operands,
		ev.Outcome,
		string(result),
		ev.Err,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	return nil
}

// Record implements future.Recorder. The recorder interface is
// fire-and-forget, so write failures are logged rather than returned.
func (s *Store) Record(ev future.Event) {
	if err := s.Append(context.Background(), ev); err != nil {
		s.logger.Error("trace event dropped", "token", ev.Token, "err", err)
	}
}
