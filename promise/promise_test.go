package promise

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SettlesOnce(t *testing.T) {
	p, settle := New()
	assert.False(t, p.Settled())

	settle("first", nil)
	settle("second", nil)
	settle(nil, errors.New("late rejection"))

	v, err := p.Result()
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestResolve(t *testing.T) {
	p := Resolve(42)
	require.True(t, p.Settled())
	v, err := p.Result()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestReject(t *testing.T) {
	boom := errors.New("boom")
	p := Reject(boom)
	v, err := p.Result()
	assert.Nil(t, v)
	assert.ErrorIs(t, err, boom)
}

func TestCoerce(t *testing.T) {
	p := Resolve("x")
	assert.Same(t, p, Coerce(p))

	q := Coerce("plain")
	v, err := q.Result()
	require.NoError(t, err)
	assert.Equal(t, "plain", v)
}

func TestPoll(t *testing.T) {
	p, settle := New()

	_, _, settled := p.Poll()
	assert.False(t, settled)

	settle("done", nil)
	v, err, settled := p.Poll()
	require.True(t, settled)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestDone_ClosesOnSettle(t *testing.T) {
	p, settle := New()

	select {
	case <-p.Done():
		t.Fatal("done closed before settle")
	default:
	}

	settle(nil, nil)
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed after settle")
	}
}

func TestResult_ManyWaiters(t *testing.T) {
	p, settle := New()

	const waiters = 16
	var wg sync.WaitGroup
	results := make([]any, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := p.Result()
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	settle("shared", nil)
	wg.Wait()
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestThen_TransformsValue(t *testing.T) {
	p := Resolve(2)
	q := p.Then(func(v any, err error) (any, error) {
		require.NoError(t, err)
		return v.(int) * 3, nil
	})

	v, err := q.Result()
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestThen_TranslatesFailure(t *testing.T) {
	p := Reject(errors.New("upstream"))
	q := p.Then(func(v any, err error) (any, error) {
		if err != nil {
			return "recovered", nil
		}
		return v, nil
	})

	v, err := q.Result()
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestAll_PreservesOrder(t *testing.T) {
	first, settleFirst := New()
	second, settleSecond := New()

	all := All([]*Promise{first, second, Resolve("c")})

	// Settle out of order; positions must still match inputs.
	settleSecond("b", nil)
	settleFirst("a", nil)

	v, err := all.Result()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, v)
}

func TestAll_FirstFailureRejects(t *testing.T) {
	boom := errors.New("boom")
	all := All([]*Promise{Resolve(1), Reject(boom), Resolve(3)})

	_, err := all.Result()
	assert.ErrorIs(t, err, boom)
}

func TestAll_Empty(t *testing.T) {
	v, err := All(nil).Result()
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}
