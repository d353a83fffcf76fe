package future

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxnordlund/future/object"
	"github.com/maxnordlund/future/promise"
)

// await is the test shorthand for extracting a handle's final value.
func await(t *testing.T, h *Handle) any {
	t.Helper()
	v, err := h.Result()
	require.NoError(t, err)
	return v
}

func TestFrom_PlainObject(t *testing.T) {
	f := From(map[string]any{"bar": "baz"})

	assert.Equal(t, "baz", await(t, f.Get("bar")))
}

func TestFrom_PendingValue(t *testing.T) {
	p, settle := promise.New()
	f := From(p)

	name := f.Get("name")
	settle(map[string]any{"name": "pending"}, nil)

	assert.Equal(t, "pending", await(t, name))
}

func TestFrom_ExistingHandleSeedsFromTail(t *testing.T) {
	src := From(map[string]any{})
	require.True(t, src.Set("n", 1))

	// The derived future sees the source after every prior op.
	derived := From(src)
	v := await(t, derived.Get("n"))
	assert.Equal(t, 1, v)
}

func TestIsFuture(t *testing.T) {
	f := From(42)
	assert.True(t, IsFuture(f))

	assert.False(t, IsFuture(42))
	assert.False(t, IsFuture(nil))
	assert.False(t, IsFuture("string"))
	assert.False(t, IsFuture((*Handle)(nil)))
	assert.False(t, IsFuture(map[string]any{}))
}

func TestIsFuture_FalseAfterRelease(t *testing.T) {
	f := From(42)
	require.True(t, f.Release())
	assert.False(t, IsFuture(f))
	assert.False(t, f.Release(), "double release reports false")
}

func TestAwait_NotAFuture(t *testing.T) {
	_, err := Await(42)
	assert.ErrorIs(t, err, ErrNotAFuture)

	_, err = Await(nil)
	assert.ErrorIs(t, err, ErrNotAFuture)
}

func TestAwait_SettlesAfterIssuedOps(t *testing.T) {
	target := map[string]any{}
	f := From(target)
	require.True(t, f.Set("a", 1))
	require.True(t, f.Set("b", 2))

	p, err := Await(f)
	require.NoError(t, err)
	v, perr := p.Result()
	require.NoError(t, perr)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, v)
}

func TestOperationsKeepIssueOrder(t *testing.T) {
	p, settle := promise.New()
	f := From(p)

	// All issued while pending; must apply in exactly this order.
	before := f.Get("x")
	require.True(t, f.Set("x", "second"))
	require.True(t, f.Delete("y"))
	after := f.Get("x")

	settle(map[string]any{"x": "first", "y": true}, nil)

	assert.Equal(t, "first", await(t, before))
	assert.Equal(t, "second", await(t, after))

	final := await(t, From(f)).(map[string]any)
	assert.Equal(t, map[string]any{"x": "second"}, final)
}

func TestGet_ChainsThroughDerivedFutures(t *testing.T) {
	f := From(map[string]any{
		"profile": map[string]any{"name": "nord"},
	})

	assert.Equal(t, "nord", await(t, f.Get("profile").Get("name")))
}

func TestCall_WrappedFunc(t *testing.T) {
	f := From(strings.ToUpper)

	assert.Equal(t, "HEY", await(t, f.Call("hey")))
}

func TestCall_FutureArgument(t *testing.T) {
	src := From(map[string]any{"word": "fu"})
	join := From(func(parts ...string) string { return strings.Join(parts, "") })

	v := await(t, join.Call(src.Get("word"), "ture"))
	assert.Equal(t, "future", v)
}

func TestNew_Constructs(t *testing.T) {
	f := From(func(name string) map[string]any {
		return map[string]any{"name": name}
	})

	v := await(t, f.New("thing"))
	assert.Equal(t, map[string]any{"name": "thing"}, v)
}

func TestFailurePoisonsChain(t *testing.T) {
	f := From(map[string]any{"bar": "baz"})

	ok := await(t, f.Get("bar"))
	assert.Equal(t, "baz", ok)

	_, err := f.Call().Result() // maps aren't callable
	require.ErrorIs(t, err, object.ErrNotCallable)

	_, err = f.Get("bar").Result()
	assert.ErrorIs(t, err, object.ErrNotCallable)

	_, err = f.Result()
	assert.ErrorIs(t, err, object.ErrNotCallable)
}

func TestSet_SyncRejectOnFrozenResolved(t *testing.T) {
	b := object.NewBasic()
	require.NoError(t, b.DefineProperty("constant", object.Property{Value: 1}))

	f := From(b)
	_, err := f.Result() // ensure resolved
	require.NoError(t, err)

	assert.False(t, f.Set("constant", 2))
	assert.False(t, f.Delete("constant"))

	// The frozen read takes the synchronous fast path.
	v, err, settled := f.Get("constant").rec.Pending().Poll()
	require.True(t, settled)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAll_MixedTargets(t *testing.T) {
	f := From(map[string]any{"n": 1})
	p := promise.Resolve("pending")

	v, err := All(f.Get("n"), p, "plain").Result()
	require.NoError(t, err)
	assert.Equal(t, []any{1, "pending", "plain"}, v)
}

func TestAll_FirstFailureWins(t *testing.T) {
	boom := errors.New("boom")
	_, err := All(promise.Reject(boom), "fine").Result()
	assert.ErrorIs(t, err, boom)
}

func TestAll_Empty(t *testing.T) {
	v, err := All().Result()
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestEnumerate_DelayedIterable(t *testing.T) {
	p, settle := promise.New()
	f := From(p)

	it := f.Enumerate()
	first := it.Next()
	second := it.Next()

	settle([]any{"a", "b"}, nil)

	s1 := await(t, first).(Step)
	assert.False(t, s1.Done)
	assert.Equal(t, "a", s1.Value)

	s2 := await(t, second).(Step)
	assert.Equal(t, "b", s2.Value)

	s3 := await(t, it.Next()).(Step)
	assert.True(t, s3.Done)
	assert.Equal(t, Undefined, s3.Value)
}

func TestEnumerate_Collect(t *testing.T) {
	f := From([]int{1, 2, 3})
	vs, err := f.Enumerate().Collect()
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, vs)
}

func TestEnumerate_FailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	f := From(promise.Reject(boom))

	_, err := f.Enumerate().Next().Result()
	assert.ErrorIs(t, err, boom)

	_, err = f.Enumerate().Collect()
	assert.ErrorIs(t, err, boom)
}

func TestGet_IteratorKey(t *testing.T) {
	f := From([]any{1})

	v := await(t, f.Get(IteratorKey))
	it, ok := v.(*Iterator)
	require.True(t, ok)

	step := await(t, it.Next()).(Step)
	assert.Equal(t, 1, step.Value)
}

func TestRelease_QueuedOpsRejected(t *testing.T) {
	p, settle := promise.New()
	f := From(p)

	queued := f.Get("bar")
	require.True(t, f.Release())

	_, err := queued.Result()
	assert.ErrorIs(t, err, ErrReleased)

	settle(map[string]any{"bar": "baz"}, nil)
	_, err = f.Result()
	assert.ErrorIs(t, err, ErrReleased)
}

func TestArena_IsolationAndLen(t *testing.T) {
	a := NewArena()
	f := a.From(42)

	assert.Equal(t, 1, a.Len())
	// Handles are futures regardless of which arena owns them.
	assert.True(t, IsFuture(f))

	require.True(t, f.Release())
	assert.Equal(t, 0, a.Len())
}

func TestArena_RecorderAndFixedTokens(t *testing.T) {
	rec := &memoryRecorder{}

	a := NewArena(WithFixedTokens(), WithRecorder(rec))
	f := a.From(map[string]any{"bar": "baz"})

	v, err := f.Get("bar").Result()
	require.NoError(t, err)
	assert.Equal(t, "baz", v)

	// The settle event lands on the drainer goroutine, shortly after
	// the op's result settles.
	require.Eventually(t, func() bool { return len(rec.Events()) == 2 }, time.Second, 5*time.Millisecond)

	events := rec.Events()
	assert.Equal(t, "op-000001", events[0].Token)
	assert.Equal(t, PhaseIssued, events[0].Phase)
	assert.Equal(t, PhaseSettled, events[1].Phase)
	assert.Equal(t, "get", events[1].Kind)
	assert.Equal(t, OutcomeOK, events[1].Outcome)
}

// memoryRecorder is a mutex-guarded event buffer for recorder tests.
type memoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (m *memoryRecorder) Record(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *memoryRecorder) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func TestHandleMethods_ZeroValueSafe(t *testing.T) {
	var h *Handle

	assert.False(t, h.Set("x", 1))
	assert.False(t, h.Delete("x"))
	assert.False(t, h.Release())
	assert.False(t, IsFuture(h))

	_, err := h.Result()
	assert.ErrorIs(t, err, ErrNotAFuture)

	_, err = h.Get("x").Result()
	assert.ErrorIs(t, err, ErrNotAFuture)

	_, err = h.Enumerate().Next().Result()
	assert.ErrorIs(t, err, ErrNotAFuture)
}

func TestInvalidHandle_RegistersNothing(t *testing.T) {
	var h *Handle
	before := defaultArena.Len()

	// Chained misuse keeps returning the same dead handle instead of
	// minting records in the default arena.
	out := h.Get("x").Get("y").Call().OwnKeys()
	assert.False(t, IsFuture(out))
	_, err := out.Result()
	assert.ErrorIs(t, err, ErrNotAFuture)

	_, err = h.Enumerate().Next().Result()
	assert.ErrorIs(t, err, ErrNotAFuture)

	assert.Equal(t, before, defaultArena.Len())
}

func TestIntrospectionOps(t *testing.T) {
	f := From(map[string]any{"b": 2, "a": 1})

	has := await(t, f.Has("a"))
	assert.Equal(t, true, has)

	keys := await(t, f.OwnKeys())
	assert.Equal(t, []any{"a", "b"}, keys)

	proto := await(t, f.GetPrototypeOf())
	assert.Equal(t, Undefined, proto)

	ext := await(t, f.IsExtensible())
	assert.Equal(t, true, ext)
}

func TestDescriptorOps(t *testing.T) {
	b := object.NewBasic()
	f := From(b)

	_, err := f.DefineProperty("answer", object.Property{
		Value:        42,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	}).Result()
	require.NoError(t, err)

	v := await(t, f.GetOwnPropertyDescriptor("answer"))
	desc, ok := v.(*object.Property)
	require.True(t, ok)
	assert.Equal(t, 42, desc.Value)

	v = await(t, f.GetOwnPropertyDescriptor("missing"))
	assert.Equal(t, Undefined, v)
}

func TestCallWith_ReceiverContext(t *testing.T) {
	// Go funcs ignore the receiver, but it still resolves as an operand:
	// a rejected receiver poisons the call, and like any other failure it
	// sticks to the chain.
	fn := func() string { return "ran" }
	f := From(fn)

	boom := errors.New("bad receiver")
	_, err := f.CallWith(promise.Reject(boom)).Result()
	assert.ErrorIs(t, err, boom)

	_, err = f.CallWith("whatever").Result()
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "ran", await(t, From(fn).CallWith("whatever")))
}
