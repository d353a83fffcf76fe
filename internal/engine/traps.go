package engine

import (
	"github.com/maxnordlund/future/object"
	"github.com/maxnordlund/future/promise"
)

// IteratorKey is the reserved property key whose read returns the
// iteration bridge entry point instead of a deferred get. Each read
// creates fresh iteration state.
const IteratorKey = "@@iterator"

// TrapGet intercepts a property read.
//
// Interception invariants require two synchronous fast paths against the
// receiver's current descriptor, when the receiver has already resolved:
// a non-configurable, non-writable data property must yield its real value
// immediately, and a non-configurable accessor with no getter must yield
// Undefined. Both return an already-settled pending value and splice
// nothing. Everything else defers through the chain.
func (r *Record) TrapGet(key string) *promise.Promise {
	if key == IteratorKey {
		return promise.Resolve(NewStream(r.Pending()))
	}

	if obj, ok := r.resolvedObject(); ok {
		if desc, err := obj.GetOwnProperty(key); err == nil && desc != nil && !desc.Configurable {
			if desc.IsAccessor() {
				if desc.Getter == nil {
					return promise.Resolve(object.Undefined)
				}
			} else if !desc.Writable {
				return promise.Resolve(desc.Value)
			}
		}
	}

	return r.splice(Op{Kind: OpGet, Key: key})
}

// TrapSet intercepts an assignment. The interception contract demands an
// immediate boolean: a resolved property that is non-configurable,
// non-writable, and setter-less rejects synchronously with false and
// nothing is queued. Otherwise the write is spliced and true is returned
// optimistically; if the deferred write later fails, only consumers of
// the chain observe it.
func (r *Record) TrapSet(key string, value any) bool {
	if obj, ok := r.resolvedObject(); ok {
		if desc, err := obj.GetOwnProperty(key); err == nil && desc != nil && !desc.Configurable {
			if desc.IsAccessor() {
				if desc.Setter == nil {
					return false
				}
			} else if !desc.Writable {
				return false
			}
		}
	}

	r.splice(Op{Kind: OpSet, Key: key, Operands: coerceOperands([]any{value})})
	return true
}

// TrapDelete intercepts a deletion, with the same synchronous-check
// pattern as TrapSet: a resolved non-configurable property rejects
// immediately, anything else is spliced and optimistically reported as
// deleted.
func (r *Record) TrapDelete(key string) bool {
	if obj, ok := r.resolvedObject(); ok {
		if desc, err := obj.GetOwnProperty(key); err == nil && desc != nil && !desc.Configurable {
			return false
		}
	}

	r.splice(Op{Kind: OpDelete, Key: key})
	return true
}

// TrapApply intercepts invocation. Operand 0 is the receiver context.
func (r *Record) TrapApply(receiver any, args []any) *promise.Promise {
	operands := make([]any, 0, len(args)+1)
	operands = append(operands, receiver)
	operands = append(operands, args...)
	return r.splice(Op{Kind: OpApply, Operands: coerceOperands(operands)})
}

// TrapConstruct intercepts construction.
func (r *Record) TrapConstruct(args []any) *promise.Promise {
	return r.splice(Op{Kind: OpConstruct, Operands: coerceOperands(args)})
}

// TrapHas intercepts a membership test.
func (r *Record) TrapHas(key string) *promise.Promise {
	return r.splice(Op{Kind: OpHas, Key: key})
}

// TrapOwnKeys intercepts key enumeration.
func (r *Record) TrapOwnKeys() *promise.Promise {
	return r.splice(Op{Kind: OpOwnKeys})
}

// TrapGetPrototype intercepts a prototype read.
func (r *Record) TrapGetPrototype() *promise.Promise {
	return r.splice(Op{Kind: OpGetPrototype})
}

// TrapSetPrototype intercepts a prototype write.
func (r *Record) TrapSetPrototype(proto any) *promise.Promise {
	return r.splice(Op{Kind: OpSetPrototype, Operands: coerceOperands([]any{proto})})
}

// TrapIsExtensible intercepts an extensibility probe.
func (r *Record) TrapIsExtensible() *promise.Promise {
	return r.splice(Op{Kind: OpIsExtensible})
}

// TrapPreventExtensions intercepts sealing.
func (r *Record) TrapPreventExtensions() *promise.Promise {
	return r.splice(Op{Kind: OpPreventExtensions})
}

// TrapGetOwnDescriptor intercepts a descriptor read.
func (r *Record) TrapGetOwnDescriptor(key string) *promise.Promise {
	return r.splice(Op{Kind: OpGetOwnDescriptor, Key: key})
}

// TrapDefineProperty intercepts a property definition.
func (r *Record) TrapDefineProperty(key string, descriptor any) *promise.Promise {
	return r.splice(Op{Kind: OpDefineProperty, Key: key, Operands: coerceOperands([]any{descriptor})})
}
