package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps trace events.
//
// All issue and settle events carry a strictly increasing seq from this
// clock, never a wall-clock timestamp. This keeps recorded traces
// deterministic and makes causal order explicit: if an operation's issue
// event has a lower seq than another's on the same future, its effect is
// applied first.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used when replaying against a previously recorded trace.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
