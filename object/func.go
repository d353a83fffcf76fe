package object

import (
	"fmt"
	"reflect"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Func adapts a Go func into a Callable, Constructor, and Object. The
// embedded Basic carries expando properties, so code can hang values off
// a function the way dynamic hosts allow.
//
// The receiver context passed to Call is ignored: Go functions have no
// implicit receiver, and bound methods captured by Adapt already close
// over theirs.
type Func struct {
	*Basic
	fn reflect.Value
}

// NewFunc wraps fn, which must have func kind.
func NewFunc(fn any) *Func {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		panic(fmt.Sprintf("object: NewFunc on %T", fn))
	}
	return &Func{Basic: NewBasic(), fn: rv}
}

// Call applies the function to args. A panic inside the function is
// recovered and surfaced as the operation's failure, so a misbehaving
// callee poisons the chain instead of crashing the drainer.
func (f *Func) Call(_ any, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("object: call panicked: %v", r)
		}
	}()

	t := f.fn.Type()
	in, err := f.convertArgs(t, args)
	if err != nil {
		return nil, err
	}
	out := f.fn.Call(in)
	return splitResults(out)
}

// New treats the function as its own constructor, matching hosts where
// invoking a function with construction semantics runs its body.
func (f *Func) New(args []any) (any, error) {
	return f.Call(Undefined, args)
}

func (f *Func) convertArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: want at least %d args, got %d", ErrNotCallable, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: want %d args, got %d", ErrNotCallable, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if i < fixed {
			pt = t.In(i)
		} else {
			pt = t.In(t.NumIn() - 1).Elem()
		}
		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil || arg == any(Undefined) {
		return reflect.Zero(pt), nil
	}
	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(pt) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(pt) {
		return rv.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T is not assignable to %s", ErrNotCallable, arg, pt)
}

// splitResults maps Go return values onto a single dynamic result: a
// trailing error return becomes the operation failure, no results become
// Undefined, and multiple non-error results become a []any.
func splitResults(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type().Implements(errType) {
		if e, _ := out[n-1].Interface().(error); e != nil {
			return nil, e
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return Undefined, nil
	case 1:
		return out[0].Interface(), nil
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals, nil
	}
}
