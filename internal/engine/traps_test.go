package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxnordlund/future/object"
	"github.com/maxnordlund/future/promise"
)

// frozenObject builds a Basic with one non-configurable, non-writable
// data property and one getter-less accessor.
func frozenObject(t *testing.T) *object.Basic {
	t.Helper()
	b := object.NewBasic()
	require.NoError(t, b.DefineProperty("constant", object.Property{
		Value:    "fixed",
		Writable: false,
	}))
	require.NoError(t, b.DefineProperty("writeonly", object.Property{
		Setter: object.NewFunc(func(any) {}),
	}))
	return b
}

func TestTrapGet_SyncFastPathFrozenData(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve(frozenObject(t)))
	waitResolved(t, r)

	p := r.TrapGet("constant")
	v, err, settled := p.Poll()
	require.True(t, settled, "frozen data property must resolve synchronously")
	require.NoError(t, err)
	assert.Equal(t, "fixed", v)
}

func TestTrapGet_SyncFastPathGetterlessAccessor(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve(frozenObject(t)))
	waitResolved(t, r)

	p := r.TrapGet("writeonly")
	v, err, settled := p.Poll()
	require.True(t, settled, "getter-less accessor must resolve synchronously")
	require.NoError(t, err)
	assert.Equal(t, object.Undefined, v)
}

func TestTrapGet_ConfigurablePropertyDefers(t *testing.T) {
	a := newTestArena()
	b := object.NewBasic()
	require.NoError(t, b.Set("mutable", 1))
	r := a.NewRecord(promise.Resolve(b))
	waitResolved(t, r)

	// Writable/configurable properties always go through the chain.
	v, err := r.TrapGet("mutable").Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestTrapGet_PendingSeedAlwaysDefers(t *testing.T) {
	a := newTestArena()
	seed, settle := promise.New()
	r := a.NewRecord(seed)

	p := r.TrapGet("constant")
	_, _, settled := p.Poll()
	assert.False(t, settled)

	settle(frozenObject(t), nil)
	v, err := p.Result()
	require.NoError(t, err)
	assert.Equal(t, "fixed", v)
}

func TestTrapSet_SyncRejectFrozenData(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve(frozenObject(t)))
	waitResolved(t, r)

	assert.False(t, r.TrapSet("constant", "new"))

	// Nothing was queued: the tail still resolves cleanly.
	_, err := r.Pending().Result()
	assert.NoError(t, err)
}

func TestTrapSet_OptimisticTrueOnPending(t *testing.T) {
	a := newTestArena()
	seed, settle := promise.New()
	r := a.NewRecord(seed)

	assert.True(t, r.TrapSet("constant", "new"))

	// The deferred write fails; only chain consumers observe it.
	settle(frozenObject(t), nil)
	_, err := r.Pending().Result()
	assert.ErrorIs(t, err, object.ErrReadOnly)
}

func TestTrapDelete_SyncRejectNonConfigurable(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve(frozenObject(t)))
	waitResolved(t, r)

	assert.False(t, r.TrapDelete("constant"))
}

func TestTrapGet_IteratorKeyReturnsFreshStream(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve([]any{1, 2}))

	first, err, settled := r.TrapGet(IteratorKey).Poll()
	require.True(t, settled, "iterator key must resolve synchronously")
	require.NoError(t, err)
	require.IsType(t, &Stream{}, first)

	second, _, _ := r.TrapGet(IteratorKey).Poll()
	assert.NotSame(t, first, second, "each read creates fresh iteration state")
}

func TestTrapDescriptorRoundTrip(t *testing.T) {
	a := newTestArena()
	b := object.NewBasic()
	r := a.NewRecord(promise.Resolve(b))

	def := r.TrapDefineProperty("answer", object.Property{
		Value:        42,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	})
	_, err := def.Result()
	require.NoError(t, err)

	v, err := r.TrapGetOwnDescriptor("answer").Result()
	require.NoError(t, err)
	desc, ok := v.(*object.Property)
	require.True(t, ok)
	assert.Equal(t, 42, desc.Value)
	assert.True(t, desc.Writable)
}

func TestTrapGetOwnDescriptor_MissingIsUndefined(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve(object.NewBasic()))

	v, err := r.TrapGetOwnDescriptor("ghost").Result()
	require.NoError(t, err)
	assert.Equal(t, object.Undefined, v)
}

func TestTrapPrototypeOps(t *testing.T) {
	a := newTestArena()
	b := object.NewBasic()
	r := a.NewRecord(promise.Resolve(b))

	v, err := r.TrapGetPrototype().Result()
	require.NoError(t, err)
	assert.Equal(t, object.Undefined, v)

	parent := object.NewBasic()
	_, err = r.TrapSetPrototype(parent).Result()
	require.NoError(t, err)

	v, err = r.TrapGetPrototype().Result()
	require.NoError(t, err)
	assert.Equal(t, object.Object(parent), v)

	// Undefined clears the prototype again.
	_, err = r.TrapSetPrototype(object.Undefined).Result()
	require.NoError(t, err)
	v, err = r.TrapGetPrototype().Result()
	require.NoError(t, err)
	assert.Equal(t, object.Undefined, v)
}

func TestTrapExtensibility(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve(object.NewBasic()))

	v, err := r.TrapIsExtensible().Result()
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = r.TrapPreventExtensions().Result()
	require.NoError(t, err)

	v, err = r.TrapIsExtensible().Result()
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestTrapHas(t *testing.T) {
	a := newTestArena()
	r := a.NewRecord(promise.Resolve(map[string]any{"bar": "baz"}))

	v, err := r.TrapHas("bar").Result()
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = r.TrapHas("nope").Result()
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

// waitResolved blocks until the record's seed has settled and its
// object views are adapted, so the sync fast paths are armed.
func waitResolved(t *testing.T, r *Record) {
	t.Helper()
	_, err := r.Pending().Result()
	require.NoError(t, err)
	_, ok := r.resolvedObject()
	require.True(t, ok)
}
