package future

import (
	"log/slog"

	"github.com/maxnordlund/future/internal/engine"
	"github.com/maxnordlund/future/promise"
)

// Event is one trace record: every intercepted operation emits an
// "issued" event when it is queued and a "settled" event when it is
// applied or inherits a failure. Seq is a logical clock; the total order
// of events is consistent with each future's issue order.
type Event struct {
	Seq      int64  `json:"seq"`
	Token    string `json:"token"`
	FutureID uint64 `json:"future_id"`
	Phase    string `json:"phase"`
	Kind     string `json:"kind"`
	Key      string `json:"key,omitempty"`
	Operands int    `json:"operands,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
	Result   any    `json:"result,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Event phases and outcomes.
const (
	PhaseIssued  = engine.PhaseIssued
	PhaseSettled = engine.PhaseSettled
	OutcomeOK    = engine.OutcomeOK
	OutcomeError = engine.OutcomeError
)

// Recorder consumes trace events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(Event)
}

// Arena owns a set of future records. Handles are registered here, and
// this registry is what answers IsFuture; releasing a handle returns its
// record to the arena and makes the handle behave like a foreign value.
type Arena struct {
	eng *engine.Arena
}

type options struct {
	logger      *slog.Logger
	recorder    Recorder
	fixedTokens []string
	fixed       bool
}

// Option configures an Arena.
type Option func(*options)

// WithLogger sets the arena's logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder attaches a trace recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithFixedTokens replaces the UUIDv7 operation tokens with a
// predetermined sequence (falling back to "op-NNNNNN" once exhausted),
// for deterministic traces in tests and scenario replays.
func WithFixedTokens(tokens ...string) Option {
	return func(o *options) {
		o.fixed = true
		o.fixedTokens = tokens
	}
}

// NewArena creates an empty arena.
func NewArena(opts ...Option) *Arena {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var engOpts []engine.Option
	if o.logger != nil {
		engOpts = append(engOpts, engine.WithLogger(o.logger))
	}
	if o.recorder != nil {
		engOpts = append(engOpts, engine.WithRecorder(recorderAdapter{o.recorder}))
	}
	if o.fixed {
		engOpts = append(engOpts, engine.WithTokenGenerator(engine.NewFixedGenerator(o.fixedTokens...)))
	}
	return &Arena{eng: engine.NewArena(engOpts...)}
}

// From wraps any value into a new future handle registered in this
// arena. See the package-level From.
func (a *Arena) From(v any) *Handle {
	return a.wrap(seedOf(v))
}

// Len reports the number of live futures, for leak checks.
func (a *Arena) Len() int {
	return a.eng.Len()
}

// wrap registers a new record seeded from p and returns its handle.
func (a *Arena) wrap(p *promise.Promise) *Handle {
	return &Handle{arena: a, rec: a.eng.NewRecord(p)}
}

// seedOf coerces a From argument into the new future's seed.
func seedOf(v any) *promise.Promise {
	switch t := v.(type) {
	case *Handle:
		if t != nil && t.rec != nil {
			return t.rec.Pending()
		}
		return promise.Reject(engine.ErrNotAFuture)
	case *promise.Promise:
		return t
	default:
		return promise.Resolve(v)
	}
}

// recorderAdapter bridges the public Recorder to the engine's.
type recorderAdapter struct {
	r Recorder
}

func (ra recorderAdapter) Record(ev engine.Event) {
	ra.r.Record(Event{
		Seq:      ev.Seq,
		Token:    ev.Token,
		FutureID: ev.FutureID,
		Phase:    ev.Phase,
		Kind:     string(ev.Kind),
		Key:      ev.Key,
		Operands: ev.Operands,
		Outcome:  ev.Outcome,
		Result:   ev.Result,
		Err:      ev.Err,
	})
}
