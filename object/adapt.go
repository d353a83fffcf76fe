package object

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Adapt lifts a plain Go value into the object model. Existing Objects
// pass through. Maps with string keys become live map-backed objects,
// funcs become callable objects, and structs (or pointers to structs)
// expose their exported fields as properties. Anything else is not an
// object and returns ErrNotAnObject.
func Adapt(v any) (Object, error) {
	switch t := v.(type) {
	case nil:
		return nil, ErrNotAnObject
	case undefined:
		return nil, ErrNotAnObject
	case Object:
		return t, nil
	case map[string]any:
		return &mapObject{m: t}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return NewFunc(v), nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return &reflectMapObject{m: rv}, nil
		}
	case reflect.Struct:
		return &structObject{v: rv}, nil
	case reflect.Pointer:
		if rv.Elem().Kind() == reflect.Struct {
			return &structObject{v: rv.Elem(), ptr: rv}, nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrNotAnObject, v)
}

// Elements coerces a value into the ordered element sequence the
// iteration bridge distributes. Slices and arrays of any element type are
// supported; strings yield one string per rune.
func Elements(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		copy(out, t)
		return out, nil
	case string:
		out := make([]any, 0, len(t))
		for _, r := range t {
			out = append(out, string(r))
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotIterable, v)
}

// mapObject is a live view over a map[string]any. Mutations flow through
// to the underlying map, so the caller who seeded the future observes the
// deferred writes. Every entry behaves as a writable, enumerable,
// configurable data property.
type mapObject struct {
	mu sync.Mutex
	m  map[string]any
}

func (o *mapObject) Get(key string) (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.m[normKey(key)]
	if !ok {
		return Undefined, nil
	}
	return v, nil
}

func (o *mapObject) Set(key string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.m[normKey(key)] = value
	return nil
}

func (o *mapObject) Delete(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.m, normKey(key))
	return nil
}

func (o *mapObject) Has(key string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.m[normKey(key)]
	return ok, nil
}

func (o *mapObject) OwnKeys() ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	// Map iteration order is random; sort for a deterministic answer.
	sort.Strings(keys)
	return keys, nil
}

func (o *mapObject) GetOwnProperty(key string) (*Property, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.m[normKey(key)]
	if !ok {
		return nil, nil
	}
	return &Property{Value: v, Writable: true, Enumerable: true, Configurable: true}, nil
}

func (o *mapObject) DefineProperty(key string, prop Property) error {
	if prop.IsAccessor() {
		return fmt.Errorf("%w: accessor properties on map objects", ErrNotConfigurable)
	}
	return o.Set(key, prop.Value)
}

func (o *mapObject) Prototype() Object          { return nil }
func (o *mapObject) SetPrototype(Object) error  { return ErrNotExtensible }
func (o *mapObject) Extensible() bool           { return true }
func (o *mapObject) PreventExtensions() error   { return ErrNotConfigurable }

// reflectMapObject adapts maps with string keys but non-any values.
type reflectMapObject struct {
	mu sync.Mutex
	m  reflect.Value
}

func (o *reflectMapObject) Get(key string) (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := o.m.MapIndex(reflect.ValueOf(normKey(key)))
	if !v.IsValid() {
		return Undefined, nil
	}
	return v.Interface(), nil
}

func (o *reflectMapObject) Set(key string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	rv := reflect.ValueOf(value)
	elem := o.m.Type().Elem()
	if !rv.IsValid() || !rv.Type().AssignableTo(elem) {
		if rv.IsValid() && rv.Type().ConvertibleTo(elem) {
			rv = rv.Convert(elem)
		} else {
			return fmt.Errorf("%w: cannot assign %T to %s value", ErrReadOnly, value, elem)
		}
	}
	o.m.SetMapIndex(reflect.ValueOf(normKey(key)), rv)
	return nil
}

func (o *reflectMapObject) Delete(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.m.SetMapIndex(reflect.ValueOf(normKey(key)), reflect.Value{})
	return nil
}

func (o *reflectMapObject) Has(key string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.m.MapIndex(reflect.ValueOf(normKey(key))).IsValid(), nil
}

func (o *reflectMapObject) OwnKeys() ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, o.m.Len())
	for _, k := range o.m.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys, nil
}

func (o *reflectMapObject) GetOwnProperty(key string) (*Property, error) {
	o.mu.Lock()
	v := o.m.MapIndex(reflect.ValueOf(normKey(key)))
	o.mu.Unlock()
	if !v.IsValid() {
		return nil, nil
	}
	return &Property{Value: v.Interface(), Writable: true, Enumerable: true, Configurable: true}, nil
}

func (o *reflectMapObject) DefineProperty(key string, prop Property) error {
	if prop.IsAccessor() {
		return fmt.Errorf("%w: accessor properties on map objects", ErrNotConfigurable)
	}
	return o.Set(key, prop.Value)
}

func (o *reflectMapObject) Prototype() Object         { return nil }
func (o *reflectMapObject) SetPrototype(Object) error { return ErrNotExtensible }
func (o *reflectMapObject) Extensible() bool          { return true }
func (o *reflectMapObject) PreventExtensions() error  { return ErrNotConfigurable }

// structObject exposes a struct's exported fields as properties. Fields
// are non-configurable; they are writable only when the struct is
// addressable (adapted from a pointer), which means fields of a struct
// adapted by value satisfy the synchronous-get invariant.
type structObject struct {
	mu  sync.Mutex
	v   reflect.Value
	ptr reflect.Value
}

func (o *structObject) field(key string) (reflect.Value, bool) {
	f := o.v.FieldByName(normKey(key))
	if !f.IsValid() {
		return reflect.Value{}, false
	}
	sf, ok := o.v.Type().FieldByName(normKey(key))
	if !ok || !sf.IsExported() {
		return reflect.Value{}, false
	}
	return f, true
}

func (o *structObject) Get(key string) (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if f, ok := o.field(key); ok {
		return f.Interface(), nil
	}
	// Fall back to a bound method, preferring the pointer method set.
	recv := o.v
	if o.ptr.IsValid() {
		recv = o.ptr
	}
	if m := recv.MethodByName(normKey(key)); m.IsValid() {
		return NewFunc(m.Interface()), nil
	}
	return Undefined, nil
}

func (o *structObject) Set(key string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.field(key)
	if !ok {
		return fmt.Errorf("%w: struct has no field %q", ErrNotExtensible, key)
	}
	if !f.CanSet() {
		return ErrReadOnly
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || !rv.Type().AssignableTo(f.Type()) {
		if rv.IsValid() && rv.Type().ConvertibleTo(f.Type()) {
			rv = rv.Convert(f.Type())
		} else {
			return fmt.Errorf("%w: cannot assign %T to %s field", ErrReadOnly, value, f.Type())
		}
	}
	f.Set(rv)
	return nil
}

func (o *structObject) Delete(string) error { return ErrNotConfigurable }

func (o *structObject) Has(key string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.field(key)
	return ok, nil
}

func (o *structObject) OwnKeys() ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t := o.v.Type()
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			keys = append(keys, t.Field(i).Name)
		}
	}
	return keys, nil
}

func (o *structObject) GetOwnProperty(key string) (*Property, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.field(key)
	if !ok {
		return nil, nil
	}
	return &Property{
		Value:        f.Interface(),
		Writable:     f.CanSet(),
		Enumerable:   true,
		Configurable: false,
	}, nil
}

func (o *structObject) DefineProperty(key string, prop Property) error {
	return ErrNotConfigurable
}

func (o *structObject) Prototype() Object         { return nil }
func (o *structObject) SetPrototype(Object) error { return ErrNotExtensible }
func (o *structObject) Extensible() bool          { return false }
func (o *structObject) PreventExtensions() error  { return nil }
