// Package future provides placeholders that can be used like the values
// they will eventually hold.
//
// A Handle stands in for a value that is not yet available. Property
// reads and writes, calls, construction, deletion, and the object
// introspection operations are intercepted, queued, and replayed in
// issue order once the underlying value resolves, so synchronous-looking
// chains like
//
//	f := future.From(fetchUser())
//	name := f.Get("profile").Get("name")
//	f.Set("visits", 1)
//
// keep program order across asynchronous boundaries. Consumers extract
// concrete results with Await or Handle.Result, and iterate pending
// iterables with Handle.Enumerate.
//
// Ordering is guaranteed per future: operations apply to the underlying
// value in the exact order they were issued, no matter how long each
// operation's own operands take to resolve. Across unrelated futures
// there is no ordering guarantee. There is no cancellation: once an
// operation is queued it runs when its prerequisites settle, and a
// future that never resolves leaves its dependents pending forever.
package future

import (
	"github.com/maxnordlund/future/internal/engine"
	"github.com/maxnordlund/future/object"
	"github.com/maxnordlund/future/promise"
)

// Undefined is the sentinel for absent values, re-exported from the
// object model for convenience.
var Undefined = object.Undefined

// IteratorKey is the reserved property key whose read yields the
// iteration entry point instead of a deferred property get.
const IteratorKey = engine.IteratorKey

// Sentinels for errors.Is checks.
var (
	ErrNotAFuture error = engine.ErrNotAFuture
	ErrReleased   error = engine.ErrReleased
)

// defaultArena backs the package-level functions. Libraries that want
// trace recording or deterministic tokens create their own Arena.
var defaultArena = NewArena()

// From wraps any value into a new future handle. Plain values resolve
// immediately, pending values resolve when they settle, and an existing
// handle seeds the new future from its current chain tail.
func From(v any) *Handle {
	return defaultArena.From(v)
}

// IsFuture reports whether v is a live future handle. It never panics,
// whatever v is.
func IsFuture(v any) bool {
	h, ok := v.(*Handle)
	return ok && h != nil && h.rec != nil && h.arena.eng.Owns(h.rec)
}

// Await returns the pending value for a future handle: it settles with
// the resolved underlying value once every operation issued so far has
// been applied, or with the chain's failure. Fails immediately with
// ErrNotAFuture when v is not a live handle.
func Await(v any) (*promise.Promise, error) {
	h, ok := v.(*Handle)
	if !ok || h == nil || h.rec == nil || !h.arena.eng.Owns(h.rec) {
		return nil, engine.ErrNotAFuture
	}
	return h.rec.Pending(), nil
}

// All resolves every target, preserving input order: futures are
// awaited through their chain tails, pending values pass through, and
// plain values are coerced. The first failure, in input order, rejects
// the aggregate. All() resolves to an empty slice.
func All(targets ...any) *promise.Promise {
	ps := make([]*promise.Promise, len(targets))
	for i, t := range targets {
		switch v := t.(type) {
		case *Handle:
			if v != nil && v.rec != nil {
				ps[i] = v.rec.Pending()
			} else {
				ps[i] = promise.Reject(engine.ErrNotAFuture)
			}
		case *promise.Promise:
			ps[i] = v
		default:
			ps[i] = promise.Resolve(t)
		}
	}
	return promise.All(ps)
}
