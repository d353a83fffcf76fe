package engine

import "github.com/maxnordlund/future/promise"

// OpKind tags an intercepted operation. The set is fixed; the executor
// dispatches on it.
type OpKind string

const (
	OpApply             OpKind = "apply"
	OpConstruct         OpKind = "construct"
	OpGet               OpKind = "get"
	OpSet               OpKind = "set"
	OpDelete            OpKind = "delete"
	OpGetPrototype      OpKind = "getPrototypeOf"
	OpSetPrototype      OpKind = "setPrototypeOf"
	OpIsExtensible      OpKind = "isExtensible"
	OpPreventExtensions OpKind = "preventExtensions"
	OpGetOwnDescriptor  OpKind = "getOwnPropertyDescriptor"
	OpDefineProperty    OpKind = "defineProperty"
	OpHas               OpKind = "has"
	OpOwnKeys           OpKind = "ownKeys"
)

// Op describes one queued operation. It exists only to carry a single
// splice call; it is not retained once the task completes.
//
// Operands are pre-coerced pending values, resolved in order before the
// operation executes. For apply, operand 0 is the receiver context and
// the rest are call arguments. For set and defineProperty, operand 0 is
// the value or descriptor.
type Op struct {
	Kind     OpKind
	Key      string
	Operands []*promise.Promise

	// Token correlates the issue and settle trace events for this
	// operation. Assigned by the arena at splice time.
	Token string
}

// coerceOperand lifts a trap argument into a pending value. A future
// operand contributes its pending tail as captured at splice time; it is
// never re-enqueued, so operands referring to the receiving future cannot
// deadlock the drainer.
func coerceOperand(v any) *promise.Promise {
	switch t := v.(type) {
	case *Record:
		return t.Pending()
	case *promise.Promise:
		return t
	default:
		return promise.Resolve(v)
	}
}

func coerceOperands(vs []any) []*promise.Promise {
	out := make([]*promise.Promise, len(vs))
	for i, v := range vs {
		out[i] = coerceOperand(v)
	}
	return out
}
