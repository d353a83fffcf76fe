package engine

import (
	"sync"

	"github.com/maxnordlund/future/object"
	"github.com/maxnordlund/future/promise"
)

// task is one queued operation together with the two promises it must
// settle: the operation's own result and the next chain tail.
type task struct {
	op          Op
	settleValue promise.Resolver
	settleTail  promise.Resolver
}

// Record is the internal state backing one future handle.
//
// pending is the current tail of the operation chain: the pending value
// that, once it settles, yields the resolved receiver after every
// operation spliced so far. Splice advances it; Pending (await) and
// operand coercion read it.
type Record struct {
	id    uint64
	arena *Arena
	seed  *promise.Promise
	queue *opQueue

	mu       sync.Mutex
	pending  *promise.Promise
	released bool

	// chainErr is the first failure observed on the chain (seed,
	// operand, or execution). Once set, every later task inherits it.
	// Written only by the drainer, read by the drainer and Release.
	chainErr error

	// Resolved receiver cache, adapted at most once.
	adaptOnce sync.Once
	target    any
	obj       object.Object
	callable  object.Callable
	ctor      object.Constructor
	adaptErr  error
}

// ID returns the record's arena handle.
func (r *Record) ID() uint64 { return r.id }

// Pending returns the current chain tail. This is the await operation:
// the returned pending value settles with the resolved receiver once
// every operation spliced before this call has been applied, or with the
// chain's failure.
func (r *Record) Pending() *promise.Promise {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// splice queues op behind every previously spliced operation and
// atomically advances the chain tail. The returned pending value settles
// with the operation's outcome.
func (r *Record) splice(op Op) *promise.Promise {
	op.Token = r.arena.tokens.Generate()
	result, settleValue := promise.New()
	next, settleTail := promise.New()

	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		err := releasedError(op)
		settleValue(nil, err)
		settleTail(nil, err)
		return result
	}
	prev := r.pending
	r.pending = next
	start, ok := r.queue.Push(task{op: op, settleValue: settleValue, settleTail: settleTail})
	if !ok {
		// Closed between the released check and the push; restore the
		// tail and reject, same as the released path.
		r.pending = prev
		r.mu.Unlock()
		err := releasedError(op)
		settleValue(nil, err)
		settleTail(nil, err)
		return result
	}
	r.mu.Unlock()

	r.arena.recordIssued(r, op)
	if start {
		go r.drain()
	}
	return result
}

func releasedError(op Op) error {
	return &Error{Code: ErrCodeReleased, Message: "operation on released future", Op: op.Kind, Key: op.Key}
}

// drain executes queued tasks in FIFO order until the queue parks it.
// At most one drainer is live per record, the invariant the opQueue
// handshake maintains.
func (r *Record) drain() {
	// The receiver must exist before any operation can apply. A failed
	// seed poisons the whole chain.
	v, err := r.seed.Result()
	if err != nil {
		r.mu.Lock()
		if r.chainErr == nil {
			r.chainErr = err
		}
		r.mu.Unlock()
	} else {
		r.adapt(v)
	}

	for {
		t, ok := r.queue.Pop()
		if !ok {
			return
		}
		r.execute(t)
	}
}

// adapt caches the resolved receiver and its object-model views.
func (r *Record) adapt(v any) {
	r.adaptOnce.Do(func() {
		r.target = v
		r.obj, r.adaptErr = object.Adapt(v)
		if r.adaptErr == nil {
			r.callable, _ = r.obj.(object.Callable)
			r.ctor, _ = r.obj.(object.Constructor)
		}
	})
}

// resolvedObject returns the adapted receiver if the seed has already
// settled successfully, for the traps' synchronous descriptor checks.
// It never blocks.
func (r *Record) resolvedObject() (object.Object, bool) {
	v, err, settled := r.seed.Poll()
	if !settled || err != nil {
		return nil, false
	}
	r.adapt(v)
	if r.adaptErr != nil {
		return nil, false
	}
	return r.obj, true
}

// execute runs one task: inherit a poisoned chain, otherwise resolve
// operands in order, apply the default operation, and settle both the
// result and the tail.
func (r *Record) execute(t task) {
	r.mu.Lock()
	chainErr := r.chainErr
	r.mu.Unlock()

	if chainErr != nil {
		t.settleValue(nil, chainErr)
		t.settleTail(nil, chainErr)
		r.arena.recordSettled(r, t.op, nil, chainErr)
		return
	}

	operands := make([]any, len(t.op.Operands))
	for i, p := range t.op.Operands {
		v, err := p.Result()
		if err != nil {
			r.fail(t, err)
			return
		}
		operands[i] = v
	}

	result, err := execute(r, t.op, operands)
	if err != nil {
		r.fail(t, err)
		return
	}
	t.settleValue(result, nil)
	t.settleTail(r.target, nil)
	r.arena.recordSettled(r, t.op, result, nil)
}

// fail settles a task with err and poisons the rest of the chain. The
// queue keeps advancing, so later operations inherit the failure instead
// of hanging.
func (r *Record) fail(t task, err error) {
	r.mu.Lock()
	if r.chainErr == nil {
		r.chainErr = err
	}
	r.mu.Unlock()

	t.settleValue(nil, err)
	t.settleTail(nil, err)
	r.arena.recordSettled(r, t.op, nil, err)
}

// release closes the record's queue, rejecting whatever was still
// spliced, and marks the record unusable. Called via Arena.Release.
func (r *Record) release() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	r.mu.Unlock()

	err := &Error{Code: ErrCodeReleased, Message: "future was released"}
	for _, t := range r.queue.Close() {
		t.settleValue(nil, err)
		t.settleTail(nil, err)
	}
}
