// Package promise implements the resolve-once pending value that the
// future engine chains operations onto.
//
// A Promise settles exactly once, to either a value or an error, and may
// be observed by any number of waiters after that. There is no
// cancellation: a Promise whose resolver is never called blocks its
// waiters forever.
package promise

import "sync"

// Resolver settles a Promise. Call with a nil error for success, non-nil
// for failure. Must be called at most once; later calls are no-ops.
type Resolver func(value any, err error)

// Promise is a write-once asynchronous value.
//
// The zero value is not usable; construct with New, Resolve, or Reject.
type Promise struct {
	done chan struct{}
	once sync.Once

	// value and err are written exactly once, before done is closed.
	// Don't read them unless done is known to be closed.
	value any
	err   error
}

// New creates an unsettled Promise and the Resolver that settles it.
func New() (*Promise, Resolver) {
	p := &Promise{done: make(chan struct{})}
	return p, func(value any, err error) {
		p.once.Do(func() {
			p.value = value
			p.err = err
			close(p.done)
		})
	}
}

// Resolve returns a Promise already settled with value.
func Resolve(value any) *Promise {
	p, settle := New()
	settle(value, nil)
	return p
}

// Reject returns a Promise already settled with err.
func Reject(err error) *Promise {
	p, settle := New()
	settle(nil, err)
	return p
}

// Coerce wraps v in a Promise. An existing *Promise passes through
// unchanged; any other value becomes an already-resolved Promise.
func Coerce(v any) *Promise {
	if p, ok := v.(*Promise); ok {
		return p
	}
	return Resolve(v)
}

// Done returns a channel closed when the Promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Result blocks until the Promise settles and returns its outcome.
func (p *Promise) Result() (any, error) {
	<-p.done
	return p.value, p.err
}

// Poll reports the outcome without blocking. The third return is false
// while the Promise is still pending, in which case value and err are
// meaningless.
func (p *Promise) Poll() (value any, err error, settled bool) {
	select {
	case <-p.done:
		return p.value, p.err, true
	default:
		return nil, nil, false
	}
}

// Settled reports whether the Promise has settled.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Then derives a new Promise by applying fn to this Promise's outcome
// once it settles. fn runs on its own goroutine and receives both the
// value and the error, so it can translate failures as well as values.
func (p *Promise) Then(fn func(value any, err error) (any, error)) *Promise {
	next, settle := New()
	go func() {
		settle(fn(p.Result()))
	}()
	return next
}

// All aggregates the given promises into one that resolves to a []any
// holding every value in input order. The first failure, in index order,
// rejects the aggregate with that same error. All(nil) resolves to an
// empty slice.
func All(ps []*Promise) *Promise {
	if len(ps) == 0 {
		return Resolve([]any{})
	}
	next, settle := New()
	go func() {
		values := make([]any, len(ps))
		for i, p := range ps {
			v, err := p.Result()
			if err != nil {
				settle(nil, err)
				return
			}
			values[i] = v
		}
		settle(values, nil)
	}()
	return next
}
