package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasic_SetGet(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.Set("bar", "baz"))

	v, err := b.Get("bar")
	require.NoError(t, err)
	assert.Equal(t, "baz", v)
}

func TestBasic_GetMissingIsUndefined(t *testing.T) {
	b := NewBasic()
	v, err := b.Get("nope")
	require.NoError(t, err)
	assert.Equal(t, Undefined, v)
}

func TestBasic_ReadOnlyProperty(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.DefineProperty("frozen", Property{
		Value:        1,
		Writable:     false,
		Enumerable:   true,
		Configurable: true,
	}))

	err := b.Set("frozen", 2)
	assert.ErrorIs(t, err, ErrReadOnly)

	v, err := b.Get("frozen")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestBasic_NonConfigurableRejectsDeleteAndRedefine(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.DefineProperty("pinned", Property{
		Value:    1,
		Writable: true,
	}))

	assert.ErrorIs(t, b.Delete("pinned"), ErrNotConfigurable)
	assert.ErrorIs(t, b.DefineProperty("pinned", Property{Value: 2}), ErrNotConfigurable)
}

func TestBasic_DeleteMissingSucceeds(t *testing.T) {
	b := NewBasic()
	assert.NoError(t, b.Delete("ghost"))
}

func TestBasic_NonExtensibleRejectsNewKeys(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.Set("existing", 1))
	require.NoError(t, b.PreventExtensions())

	assert.ErrorIs(t, b.Set("fresh", 2), ErrNotExtensible)
	assert.False(t, b.Extensible())

	// Existing writable properties still accept writes.
	assert.NoError(t, b.Set("existing", 3))
}

func TestBasic_OwnKeysInsertionOrder(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.Set("c", 1))
	require.NoError(t, b.Set("a", 2))
	require.NoError(t, b.Set("b", 3))
	require.NoError(t, b.Delete("a"))

	keys, err := b.OwnKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, keys)
}

func TestBasic_AccessorProperty(t *testing.T) {
	b := NewBasic()
	backing := "initial"
	require.NoError(t, b.DefineProperty("virtual", Property{
		Getter:       NewFunc(func() string { return backing }),
		Setter:       NewFunc(func(v string) { backing = v }),
		Enumerable:   true,
		Configurable: true,
	}))

	v, err := b.Get("virtual")
	require.NoError(t, err)
	assert.Equal(t, "initial", v)

	require.NoError(t, b.Set("virtual", "updated"))
	assert.Equal(t, "updated", backing)
}

func TestBasic_GetterlessAccessorIsUndefined(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.DefineProperty("writeonly", Property{
		Setter:       NewFunc(func(any) {}),
		Configurable: true,
	}))

	v, err := b.Get("writeonly")
	require.NoError(t, err)
	assert.Equal(t, Undefined, v)
}

func TestBasic_SetterlessAccessorRejectsWrites(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.DefineProperty("readonly", Property{
		Getter:       NewFunc(func() int { return 1 }),
		Configurable: true,
	}))

	assert.ErrorIs(t, b.Set("readonly", 2), ErrReadOnly)
}

func TestBasic_PrototypeChain(t *testing.T) {
	parent := NewBasic()
	require.NoError(t, parent.Set("inherited", "yes"))

	child := NewBasic()
	require.NoError(t, child.SetPrototype(parent))

	v, err := child.Get("inherited")
	require.NoError(t, err)
	assert.Equal(t, "yes", v)

	has, err := child.Has("inherited")
	require.NoError(t, err)
	assert.True(t, has)

	// Own keys never include inherited properties.
	keys, err := child.OwnKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBasic_GetOwnPropertyCopies(t *testing.T) {
	b := NewBasic()
	require.NoError(t, b.Set("bar", "baz"))

	prop, err := b.GetOwnProperty("bar")
	require.NoError(t, err)
	require.NotNil(t, prop)
	assert.Equal(t, "baz", prop.Value)
	assert.True(t, prop.Writable)

	// Mutating the returned descriptor must not affect the object.
	prop.Value = "mutated"
	v, err := b.Get("bar")
	require.NoError(t, err)
	assert.Equal(t, "baz", v)
}

func TestBasic_NFCKeyNormalization(t *testing.T) {
	b := NewBasic()
	// U+00E9 vs e + U+0301: same key after NFC.
	require.NoError(t, b.Set("café", 1))

	v, err := b.Get("café")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
