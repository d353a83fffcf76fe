package object

import (
	"errors"

	"golang.org/x/text/unicode/norm"
)

// Errors reported by default object operations. The engine propagates
// these on the pending-value chain; it never retries them.
var (
	ErrNotAnObject     = errors.New("object: value is not an object")
	ErrNotCallable     = errors.New("object: value is not callable")
	ErrNotConstructor  = errors.New("object: value is not a constructor")
	ErrNotIterable     = errors.New("object: value is not iterable")
	ErrReadOnly        = errors.New("object: property is read-only")
	ErrNotConfigurable = errors.New("object: property is not configurable")
	ErrNotExtensible   = errors.New("object: object is not extensible")
	ErrNoGetter        = errors.New("object: accessor property has no getter")
)

// Undefined is the sentinel for absent values. Reading a missing property
// yields Undefined, and an accessor with no getter synchronously yields it
// as well.
var Undefined = undefined{}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Property is an own-property descriptor. A property is either a data
// property (Value, Writable) or an accessor property (Getter, Setter);
// IsAccessor distinguishes the two.
type Property struct {
	Value  any
	Getter Callable
	Setter Callable

	Writable     bool
	Enumerable   bool
	Configurable bool
}

// IsAccessor reports whether the property is accessor-shaped.
func (p *Property) IsAccessor() bool {
	return p.Getter != nil || p.Setter != nil
}

// Object is the set of default operations the engine can defer against a
// resolved receiver. Get on a missing key returns Undefined, not an error;
// GetOwnProperty on a missing key returns (nil, nil).
type Object interface {
	Get(key string) (any, error)
	Set(key string, value any) error
	Delete(key string) error
	Has(key string) (bool, error)
	OwnKeys() ([]string, error)
	GetOwnProperty(key string) (*Property, error)
	DefineProperty(key string, prop Property) error
	Prototype() Object
	SetPrototype(proto Object) error
	Extensible() bool
	PreventExtensions() error
}

// Callable is a value that can be applied to arguments with an explicit
// receiver context.
type Callable interface {
	Call(receiver any, args []any) (any, error)
}

// Constructor is a value that can be instantiated.
type Constructor interface {
	New(args []any) (any, error)
}

// normKey NFC-normalizes a property key.
func normKey(key string) string {
	return norm.NFC.String(key)
}
