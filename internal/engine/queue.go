package engine

import "sync"

// opQueue is the per-record FIFO task queue.
//
// The queue is unbounded: a trap never blocks the caller, so a burst of
// synchronously issued operations enqueues without backpressure.
//
// The queue also owns the drainer handshake. Push reports whether the
// caller must start a drainer, and Pop atomically parks the drainer when
// the queue is empty. Keeping both under one mutex means exactly one
// drainer is live whenever tasks exist, which is what makes FIFO order a
// structural guarantee.
type opQueue struct {
	mu      sync.Mutex
	tasks   []task
	running bool
	closed  bool
}

// Push appends a task. The first return reports whether the caller must
// start a drainer; the second is false if the queue has been closed.
func (q *opQueue) Push(t task) (start, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false, false
	}
	q.tasks = append(q.tasks, t)
	if !q.running {
		q.running = true
		return true, true
	}
	return false, true
}

// Pop removes the front task. When the queue is empty it marks the
// drainer parked and returns false; the next Push starts a fresh one.
func (q *opQueue) Pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		q.running = false
		return task{}, false
	}

	t := q.tasks[0]

	// Nil out the slot so the backing array doesn't retain the task's
	// promises until reallocation.
	q.tasks[0] = task{}
	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}
	return t, true
}

// Close rejects further pushes and hands back any tasks still queued so
// the releaser can settle them.
func (q *opQueue) Close() []task {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	rest := q.tasks
	q.tasks = nil
	return rest
}
