package engine

import (
	"sort"
	"sync"
)

// Event phases and outcomes. Every operation produces exactly one issued
// event (at splice time) and one settled event (when the drainer applies
// it or inherits a failure).
const (
	PhaseIssued  = "issued"
	PhaseSettled = "settled"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Event is one trace record. Seq is a logical clock value: the total
// order of events is consistent with each future's issue order.
type Event struct {
	Seq      int64  `json:"seq"`
	Token    string `json:"token"`
	FutureID uint64 `json:"future_id"`
	Phase    string `json:"phase"`
	Kind     OpKind `json:"kind"`
	Key      string `json:"key,omitempty"`
	Operands int    `json:"operands,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
	Result   any    `json:"result,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Recorder consumes trace events. Implementations must be safe for
// concurrent use; drainers of unrelated futures record concurrently.
type Recorder interface {
	Record(Event)
}

// MemoryRecorder buffers events in memory, ordered by seq. The scenario
// harness snapshots it for golden comparison.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends an event.
func (m *MemoryRecorder) Record(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// Events returns a copy of the recorded events sorted by seq.
func (m *MemoryRecorder) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
