// Package engine implements the interception and replay core behind the
// public future package.
//
// ARCHITECTURE:
//
// Per-Future Single Drainer:
// Every future is backed by a Record holding a FIFO operation queue. A
// single drainer goroutine (started lazily, only while work is queued)
// waits for the seed value once and then executes queued operations
// strictly in splice order. This makes the ordering guarantee a
// structural property of the queue rather than an emergent property of
// chained callbacks:
// - Operation N's effect is visible to operation N+1
// - Operand resolution latency never reorders effects
// - The first failure poisons every later operation on the same record
//
// Operation Flow:
//  1. A trap (get, set, call, ...) builds an Op and splices it, which
//     atomically advances the record's pending tail and enqueues a task
//  2. The drainer resolves the task's operands in argument order
//  3. The default object operation runs against the resolved receiver
//     via the object package
//  4. The task's result promise and the chain tail settle
//
// Traps are synchronous at the call site: they return a new pending
// value (or an immediate boolean for set and delete) without suspending
// the caller.
//
// The arena stamps every operation with a monotonic seq from Clock and a
// UUIDv7 token, and reports issue/settle pairs to an optional Recorder,
// so a recorded trace is a total order consistent with each future's
// issue order.
package engine
