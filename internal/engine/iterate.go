package engine

import (
	"sync"

	"github.com/maxnordlund/future/object"
	"github.com/maxnordlund/future/promise"
)

// StreamState is the iteration bridge's explicit state machine.
type StreamState int

const (
	// StreamRunning: the source has not settled; each Next call parks a
	// backlog slot.
	StreamRunning StreamState = iota + 1
	// StreamSettled: the source resolved; Next serves the overflow
	// buffer, then terminal steps.
	StreamSettled
	// StreamFailed: the source rejected; every request rejects with the
	// source's failure.
	StreamFailed
	// StreamDrained: the overflow is exhausted; every request yields a
	// terminal step.
	StreamDrained
)

// Step is one iteration result. Done marks the terminal step, whose
// Value is Undefined.
type Step struct {
	Done  bool
	Value any
}

// Stream bridges a pending iterable into a pull-based sequence of
// pending steps.
//
// While the source is pending, each Next synchronously returns a fresh
// pending step and parks a backlog slot; the backlog is unbounded, so a
// caller that does not await each step before requesting the next trades
// memory for lookahead. Once the source settles, produced elements
// satisfy waiting slots in order, the surplus is buffered into overflow,
// and leftover slots get terminal steps. A failed source rejects every
// parked and future request with its cause.
//
// At most one of backlog and overflow is non-empty in steady state.
type Stream struct {
	mu       sync.Mutex
	state    StreamState
	backlog  []promise.Resolver
	overflow []*promise.Promise
	failure  error
}

// NewStream creates a stream over a pending iterable. Iteration state is
// per-stream: every call to the iteration entry point gets a fresh
// Stream, and a drained Stream stays drained.
func NewStream(source *promise.Promise) *Stream {
	s := &Stream{state: StreamRunning}
	go s.settleFrom(source)
	return s
}

// Next requests the next step. It never blocks; the returned pending
// value settles when a produced element (or the terminal marker, or the
// source's failure) is available.
func (s *Stream) Next() *promise.Promise {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StreamRunning:
		step, settle := promise.New()
		s.backlog = append(s.backlog, settle)
		return step

	case StreamFailed:
		return promise.Reject(s.failure)

	case StreamSettled:
		next := s.overflow[0]
		s.overflow[0] = nil
		s.overflow = s.overflow[1:]
		if len(s.overflow) == 0 {
			s.overflow = nil
			s.state = StreamDrained
		}
		return next

	default: // StreamDrained
		return promise.Resolve(Step{Done: true, Value: object.Undefined})
	}
}

// State reports the current state, for tests and introspection.
func (s *Stream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// settleFrom distributes the source's outcome. Elements satisfy parked
// backlog slots first, in production order; the rest are buffered as
// already-settled steps. Failure is fail-fast: no partial delivery.
func (s *Stream) settleFrom(source *promise.Promise) {
	v, err := source.Result()
	if err != nil {
		s.fail(err)
		return
	}
	elems, err := object.Elements(v)
	if err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range elems {
		if len(s.backlog) > 0 {
			settle := s.backlog[0]
			s.backlog = s.backlog[1:]
			settle(Step{Value: e}, nil)
		} else {
			s.overflow = append(s.overflow, promise.Resolve(Step{Value: e}))
		}
	}
	for _, settle := range s.backlog {
		settle(Step{Done: true, Value: object.Undefined}, nil)
	}
	s.backlog = nil

	if len(s.overflow) > 0 {
		s.state = StreamSettled
	} else {
		s.state = StreamDrained
	}
}

// fail rejects every parked slot and buffered step with the source's
// failure and clears both lists.
func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failure = err
	s.state = StreamFailed
	for _, settle := range s.backlog {
		settle(nil, err)
	}
	s.backlog = nil
	s.overflow = nil
}
