package future

import (
	"github.com/maxnordlund/future/internal/engine"
)

// Step is one iteration result. Done marks the terminal step, whose
// Value is Undefined.
type Step struct {
	Done  bool
	Value any
}

// Iterator is a pull-based sequence of future-wrapped steps over a
// pending iterable. It is not restartable; call Handle.Enumerate again
// for a fresh pass. The zero value fails every step with ErrNotAFuture.
type Iterator struct {
	arena  *Arena
	stream *engine.Stream
}

// Next requests the next step without blocking. The returned handle
// resolves to a Step once an element (or the terminal marker) is
// available, and rejects with the source's failure if the iterable
// fails. Steps requested while the source is still pending are served in
// request order.
func (it *Iterator) Next() *Handle {
	if it.stream == nil {
		return invalid()
	}
	p := it.stream.Next().Then(func(v any, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		s := v.(engine.Step)
		return Step{Done: s.Done, Value: s.Value}, nil
	})
	return it.arena.wrap(p)
}

// Collect drains the iterator and returns every remaining element. It
// blocks until the source settles.
func (it *Iterator) Collect() ([]any, error) {
	var out []any
	for {
		v, err := it.Next().Result()
		if err != nil {
			return nil, err
		}
		step := v.(Step)
		if step.Done {
			return out, nil
		}
		out = append(out, step.Value)
	}
}
