package object

import "sync"

// Basic is the concrete descriptor-backed object. It honors the standard
// property rules: a non-writable data property rejects writes, a
// non-configurable property rejects deletion and redefinition, and a
// non-extensible object rejects new keys.
//
// Basic is safe for concurrent use, though the engine's per-future drainer
// is normally the only mutator.
type Basic struct {
	mu         sync.Mutex
	props      map[string]*Property
	order      []string
	proto      Object
	extensible bool
}

// NewBasic creates an empty, extensible object with no prototype.
func NewBasic() *Basic {
	return &Basic{
		props:      make(map[string]*Property),
		extensible: true,
	}
}

func (b *Basic) Get(key string) (any, error) {
	key = normKey(key)
	b.mu.Lock()
	prop, ok := b.props[key]
	proto := b.proto
	b.mu.Unlock()

	if !ok {
		if proto != nil {
			return proto.Get(key)
		}
		return Undefined, nil
	}
	if prop.IsAccessor() {
		if prop.Getter == nil {
			return Undefined, nil
		}
		return prop.Getter.Call(b, nil)
	}
	return prop.Value, nil
}

func (b *Basic) Set(key string, value any) error {
	key = normKey(key)
	b.mu.Lock()
	prop, ok := b.props[key]
	if ok {
		if prop.IsAccessor() {
			setter := prop.Setter
			b.mu.Unlock()
			if setter == nil {
				return ErrReadOnly
			}
			_, err := setter.Call(b, []any{value})
			return err
		}
		if !prop.Writable {
			b.mu.Unlock()
			return ErrReadOnly
		}
		prop.Value = value
		b.mu.Unlock()
		return nil
	}
	if !b.extensible {
		b.mu.Unlock()
		return ErrNotExtensible
	}
	b.props[key] = &Property{
		Value:        value,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	}
	b.order = append(b.order, key)
	b.mu.Unlock()
	return nil
}

func (b *Basic) Delete(key string) error {
	key = normKey(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	prop, ok := b.props[key]
	if !ok {
		// Deleting a missing property succeeds.
		return nil
	}
	if !prop.Configurable {
		return ErrNotConfigurable
	}
	delete(b.props, key)
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

func (b *Basic) Has(key string) (bool, error) {
	key = normKey(key)
	b.mu.Lock()
	_, ok := b.props[key]
	proto := b.proto
	b.mu.Unlock()

	if ok {
		return true, nil
	}
	if proto != nil {
		return proto.Has(key)
	}
	return false, nil
}

func (b *Basic) OwnKeys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, len(b.order))
	copy(keys, b.order)
	return keys, nil
}

func (b *Basic) GetOwnProperty(key string) (*Property, error) {
	key = normKey(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	prop, ok := b.props[key]
	if !ok {
		return nil, nil
	}
	// Copy so callers can't mutate the live descriptor.
	cp := *prop
	return &cp, nil
}

func (b *Basic) DefineProperty(key string, prop Property) error {
	key = normKey(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.props[key]
	if ok {
		if !existing.Configurable {
			return ErrNotConfigurable
		}
		cp := prop
		b.props[key] = &cp
		return nil
	}
	if !b.extensible {
		return ErrNotExtensible
	}
	cp := prop
	b.props[key] = &cp
	b.order = append(b.order, key)
	return nil
}

func (b *Basic) Prototype() Object {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.proto
}

func (b *Basic) SetPrototype(proto Object) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.extensible {
		return ErrNotExtensible
	}
	b.proto = proto
	return nil
}

func (b *Basic) Extensible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.extensible
}

func (b *Basic) PreventExtensions() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.extensible = false
	return nil
}
