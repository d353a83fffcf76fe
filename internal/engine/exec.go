package engine

import (
	"fmt"

	"github.com/maxnordlund/future/object"
)

// execute applies one operation's default behavior to the resolved
// receiver. Operands have already been resolved in argument order.
func execute(r *Record, op Op, operands []any) (any, error) {
	switch op.Kind {
	case OpApply:
		if r.adaptErr != nil || r.callable == nil {
			return nil, fmt.Errorf("%w: %T", object.ErrNotCallable, r.target)
		}
		return r.callable.Call(operands[0], operands[1:])

	case OpConstruct:
		if r.adaptErr != nil || r.ctor == nil {
			return nil, fmt.Errorf("%w: %T", object.ErrNotConstructor, r.target)
		}
		return r.ctor.New(operands)
	}

	if r.adaptErr != nil {
		return nil, r.adaptErr
	}
	obj := r.obj

	switch op.Kind {
	case OpGet:
		return obj.Get(op.Key)

	case OpSet:
		if err := obj.Set(op.Key, operands[0]); err != nil {
			return nil, err
		}
		return true, nil

	case OpDelete:
		if err := obj.Delete(op.Key); err != nil {
			return nil, err
		}
		return true, nil

	case OpHas:
		return obj.Has(op.Key)

	case OpOwnKeys:
		keys, err := obj.OwnKeys()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return out, nil

	case OpGetPrototype:
		if p := obj.Prototype(); p != nil {
			return p, nil
		}
		return object.Undefined, nil

	case OpSetPrototype:
		proto, err := protoOperand(operands[0])
		if err != nil {
			return nil, err
		}
		if err := obj.SetPrototype(proto); err != nil {
			return nil, err
		}
		return true, nil

	case OpIsExtensible:
		return obj.Extensible(), nil

	case OpPreventExtensions:
		if err := obj.PreventExtensions(); err != nil {
			return nil, err
		}
		return true, nil

	case OpGetOwnDescriptor:
		prop, err := obj.GetOwnProperty(op.Key)
		if err != nil {
			return nil, err
		}
		if prop == nil {
			return object.Undefined, nil
		}
		return prop, nil

	case OpDefineProperty:
		prop, err := descriptorOperand(operands[0])
		if err != nil {
			return nil, &Error{Code: ErrCodeBadDescriptor, Message: err.Error(), Op: op.Kind, Key: op.Key}
		}
		if err := obj.DefineProperty(op.Key, prop); err != nil {
			return nil, err
		}
		return true, nil
	}

	return nil, fmt.Errorf("future: unknown operation kind %q", op.Kind)
}

// protoOperand coerces a resolved operand into a prototype object. Nil
// and Undefined clear the prototype.
func protoOperand(v any) (object.Object, error) {
	if v == nil || v == any(object.Undefined) {
		return nil, nil
	}
	return object.Adapt(v)
}

// descriptorOperand accepts a Property by value or pointer.
func descriptorOperand(v any) (object.Property, error) {
	switch t := v.(type) {
	case object.Property:
		return t, nil
	case *object.Property:
		if t == nil {
			return object.Property{}, fmt.Errorf("nil property descriptor")
		}
		return *t, nil
	default:
		return object.Property{}, fmt.Errorf("%T is not a property descriptor", v)
	}
}
