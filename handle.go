package future

import (
	"github.com/maxnordlund/future/internal/engine"
	"github.com/maxnordlund/future/object"
	"github.com/maxnordlund/future/promise"
)

// Handle is the externally visible placeholder for a pending value. Its
// methods are the intercepted operations: each queues a deferred default
// operation behind every operation issued before it, and returns
// immediately. Methods whose natural result is deferred return a new
// Handle; set and delete answer synchronously, as their interception
// contract requires.
//
// A Handle is created by From (or by another handle's operations) and
// stays valid until Release. The zero value is not a future; operations
// on it fail with ErrNotAFuture.
type Handle struct {
	arena *Arena
	rec   *engine.Record
}

func (h *Handle) valid() bool {
	return h != nil && h.rec != nil && h.arena != nil
}

// invalidHandle fails every consumer with ErrNotAFuture. It is a shared
// zero handle: operations on it return it again, so misuse never
// registers anything in an arena and IsFuture stays false.
var invalidHandle = &Handle{}

func invalid() *Handle {
	return invalidHandle
}

// asOperand lowers handle arguments to their records so the engine can
// capture their chain tails; everything else passes through.
func asOperand(v any) any {
	if o, ok := v.(*Handle); ok && o.rec != nil {
		return o.rec
	}
	return v
}

func asOperands(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = asOperand(v)
	}
	return out
}

// Get reads a property, deferred. Reading IteratorKey returns a handle
// holding this future's iteration entry point. When the receiver has
// already resolved, a non-configurable non-writable data property is
// answered synchronously with its current value and a non-configurable
// getter-less accessor with Undefined; neither queues anything.
func (h *Handle) Get(key string) *Handle {
	if !h.valid() {
		return invalid()
	}
	if key == IteratorKey {
		return h.arena.wrap(promise.Resolve(h.Enumerate()))
	}
	return h.arena.wrap(h.rec.TrapGet(key))
}

// Set assigns a property, deferred, and reports success immediately. The
// true return is optimistic: if the deferred write later fails, only
// consumers of the chain observe the failure. False means the receiver's
// already-resolved descriptor forbids the write and nothing was queued.
func (h *Handle) Set(key string, value any) bool {
	if !h.valid() {
		return false
	}
	return h.rec.TrapSet(key, asOperand(value))
}

// Delete removes a property, deferred, with the same synchronous-check
// and optimistic-success policy as Set.
func (h *Handle) Delete(key string) bool {
	if !h.valid() {
		return false
	}
	return h.rec.TrapDelete(key)
}

// Call invokes the eventual value as a function with no receiver
// context. Arguments may themselves be futures or pending values; they
// are resolved, in order, before the call runs.
func (h *Handle) Call(args ...any) *Handle {
	return h.CallWith(object.Undefined, args...)
}

// CallWith invokes the eventual value as a function with an explicit
// receiver context.
func (h *Handle) CallWith(receiver any, args ...any) *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapApply(asOperand(receiver), asOperands(args)))
}

// New constructs an instance from the eventual value.
func (h *Handle) New(args ...any) *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapConstruct(asOperands(args)))
}

// Has tests key membership, deferred.
func (h *Handle) Has(key string) *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapHas(key))
}

// OwnKeys enumerates own property keys, deferred. The result resolves
// to a []any of strings in the receiver's deterministic key order.
func (h *Handle) OwnKeys() *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapOwnKeys())
}

// GetPrototypeOf reads the prototype, deferred. Resolves to an
// object.Object or Undefined.
func (h *Handle) GetPrototypeOf() *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapGetPrototype())
}

// SetPrototypeOf replaces the prototype, deferred. proto may be a
// future, an object.Object, an adaptable plain value, or Undefined/nil
// to clear.
func (h *Handle) SetPrototypeOf(proto any) *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapSetPrototype(asOperand(proto)))
}

// IsExtensible probes extensibility, deferred.
func (h *Handle) IsExtensible() *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapIsExtensible())
}

// PreventExtensions seals the eventual value, deferred.
func (h *Handle) PreventExtensions() *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapPreventExtensions())
}

// GetOwnPropertyDescriptor reads an own-property descriptor, deferred.
// Resolves to *object.Property, or Undefined when the key is absent.
func (h *Handle) GetOwnPropertyDescriptor(key string) *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapGetOwnDescriptor(key))
}

// DefineProperty defines or redefines a property, deferred.
func (h *Handle) DefineProperty(key string, desc object.Property) *Handle {
	if !h.valid() {
		return invalid()
	}
	return h.arena.wrap(h.rec.TrapDefineProperty(key, desc))
}

// Enumerate turns the eventual iterable into a live sequence of
// future-wrapped steps. Each call creates fresh iteration state; a
// drained iterator stays drained. The caller should await each step
// before requesting the next, or the outstanding-request backlog grows
// without bound.
func (h *Handle) Enumerate() *Iterator {
	if !h.valid() {
		return &Iterator{}
	}
	return &Iterator{arena: h.arena, stream: engine.NewStream(h.rec.Pending())}
}

// Result blocks until every operation issued so far has been applied and
// returns the resolved underlying value, or the chain's failure.
func (h *Handle) Result() (any, error) {
	if !h.valid() {
		return nil, engine.ErrNotAFuture
	}
	return h.rec.Pending().Result()
}

// Release returns the future's record to its arena: still-queued
// operations are rejected, later operations fail, and IsFuture reports
// false. Reports whether the handle was live.
func (h *Handle) Release() bool {
	if !h.valid() {
		return false
	}
	return h.arena.eng.Release(h.rec.ID())
}
