package trace

import (
	"context"
	"fmt"

	"github.com/maxnordlund/future"
)

// List returns every stored event ordered by seq (then token for
// determinism when seqs collide across stores). Result values come back
// as Raw canonical JSON text, not as live values.
func (s *Store) List(ctx context.Context) ([]future.Event, error) {
	return s.query(ctx, `
		SELECT seq, token, future_id, phase, kind, key, operands, outcome, result, error
		FROM events
		ORDER BY seq ASC, token COLLATE BINARY ASC
	`)
}

// ListFuture returns the events for one future, in seq order.
func (s *Store) ListFuture(ctx context.Context, futureID uint64) ([]future.Event, error) {
	return s.query(ctx, `
		SELECT seq, token, future_id, phase, kind, key, operands, outcome, result, error
		FROM events
		WHERE future_id = ?
		ORDER BY seq ASC, token COLLATE BINARY ASC
	`, futureID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]future.Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []future.Event{}
	for rows.Next() {
		var ev future.Event
		var result string
		if err := rows.Scan(
			&ev.Seq,
			&ev.Token,
			&ev.FutureID,
			&ev.Phase,
			&ev.Kind,
			&ev.Key,
			&ev.Operands,
			&ev.Outcome,
			&result,
			&ev.Err,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if result != "" && result != "null" {
			ev.Result = Raw(result)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}
