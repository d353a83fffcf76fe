// Package trace persists operation traces.
//
// Every intercepted operation on a future emits an issue/settle event
// pair; this package stores them durably in SQLite so a run can be
// inspected after the fact and replayed for determinism checks.
//
// Values embedded in events are serialized as canonical JSON (sorted
// keys by UTF-16 code units, NFC-normalized strings, no HTML escaping)
// so byte-equal traces mean equal runs.
package trace
