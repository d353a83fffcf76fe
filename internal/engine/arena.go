package engine

import (
	"io"
	"log/slog"
	"sync"

	"github.com/maxnordlund/future/promise"
)

// Arena owns future records. It is the registry that answers "is this
// one of ours": a value is a future iff its record is registered here.
//
// Records are held strongly and reclaimed by explicit Release, not by
// weak collection; a handle whose record was released behaves like a
// foreign value again.
//
// Thread-safety model:
//   - NewRecord / Lookup / Release: safe from any goroutine
//   - Each record's mutations happen on its own single drainer
type Arena struct {
	mu      sync.RWMutex
	records map[uint64]*Record
	nextID  uint64

	clock    *Clock
	tokens   TokenGenerator
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Arena.
type Option func(*Arena)

// WithTokenGenerator overrides the operation token source. Tests use
// NewFixedGenerator for deterministic traces.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(a *Arena) { a.tokens = g }
}

// WithRecorder attaches a trace recorder. Every spliced operation emits
// an issue event and a settle event.
func WithRecorder(r Recorder) Option {
	return func(a *Arena) { a.recorder = r }
}

// WithLogger sets the arena's logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arena) { a.logger = l }
}

// NewArena creates an empty arena.
func NewArena(opts ...Option) *Arena {
	a := &Arena{
		records: make(map[uint64]*Record),
		clock:   NewClock(),
		tokens:  UUIDv7Generator{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewRecord registers a future seeded from the given pending value. The
// record and its handle identity are created together, 1:1.
func (a *Arena) NewRecord(seed *promise.Promise) *Record {
	r := &Record{
		arena:   a,
		seed:    seed,
		queue:   &opQueue{},
		pending: seed,
	}

	a.mu.Lock()
	a.nextID++
	r.id = a.nextID
	a.records[r.id] = r
	a.mu.Unlock()

	a.logger.Debug("future registered", "future_id", r.id)
	return r
}

// Lookup returns the record for an arena handle, or false for an unknown
// or released handle. Never panics on arbitrary input.
func (a *Arena) Lookup(id uint64) (*Record, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.records[id]
	return r, ok
}

// Owns reports whether the record is registered in this arena. A record
// belongs to exactly one arena for its whole lifetime.
func (a *Arena) Owns(r *Record) bool {
	if r == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.records[r.id] == r
}

// Release disposes a record: pending operations are rejected, further
// splices fail, and the arena forgets the handle. Reports whether the
// handle was registered.
func (a *Arena) Release(id uint64) bool {
	a.mu.Lock()
	r, ok := a.records[id]
	if ok {
		delete(a.records, id)
	}
	a.mu.Unlock()

	if !ok {
		return false
	}
	r.release()
	a.logger.Debug("future released", "future_id", id)
	return true
}

// Len reports the number of live records, for leak checks in tests.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

func (a *Arena) recordIssued(r *Record, op Op) {
	if a.recorder == nil {
		return
	}
	a.recorder.Record(Event{
		Seq:      a.clock.Next(),
		Token:    op.Token,
		FutureID: r.id,
		Phase:    PhaseIssued,
		Kind:     op.Kind,
		Key:      op.Key,
		Operands: len(op.Operands),
	})
}

func (a *Arena) recordSettled(r *Record, op Op, result any, err error) {
	if a.recorder == nil {
		return
	}
	ev := Event{
		Seq:      a.clock.Next(),
		Token:    op.Token,
		FutureID: r.id,
		Phase:    PhaseSettled,
		Kind:     op.Kind,
		Key:      op.Key,
		Result:   result,
	}
	if err != nil {
		ev.Outcome = OutcomeError
		ev.Err = err.Error()
		ev.Result = nil
	} else {
		ev.Outcome = OutcomeOK
	}
	a.recorder.Record(ev)
}
