package cogo

import "github.com/gammazero/deque"

// reader is a parked Read's entry on the channel's reader queue. The
// waker deposits the value and verdict into the entry before
// scheduling the task, so the value a reader was woken for cannot be
// taken by another reader that runs first.
type reader[T any] struct {
	task *Task
	val  T
	ok   bool
	done bool
}

// writer is a parked Write's entry on the channel's writer queue.
// The pending value lives in the entry until a reader consumes it or
// the channel closes; ok records whether it was delivered.
type writer[T any] struct {
	task *Task
	val  T
	ok   bool
	done bool
}

// Chan is a typed FIFO channel between tasks on one scheduler, with
// Go-like close semantics. A channel with capacity zero is
// unbuffered: a value transfers only in a direct rendezvous between
// a writer and a reader. Blocked readers and writers are served
// strictly in blocking order.
//
// Channels hold these invariants: while any reader is parked the
// buffer is empty; while any writer is parked a non-zero-capacity
// buffer is full; a value is never delivered twice nor lost between
// a Write that returned true and the Read that consumes it; values
// buffered before Close remain readable after it.
type Chan[T any] struct {
	noCopy noCopy
	cap    int
	buf    deque.Deque[T]
	readq  deque.Deque[*reader[T]]
	writeq deque.Deque[*writer[T]]
	closed bool
}

// NewChan creates a channel with the given buffer capacity.
// Capacity zero makes the channel unbuffered. Negative capacity
// panics.
func NewChan[T any](capacity int) *Chan[T] {
	if capacity < 0 {
		panic("cogo: negative channel capacity")
	}
	return &Chan[T]{cap: capacity}
}

// Write delivers v to the channel. It returns false immediately if
// the channel is closed, discarding v. When a reader is parked the
// value goes straight to the head reader; when the buffer has room
// it is appended; otherwise the task parks until a reader consumes
// this writer's value (returning true) or the channel is closed
// under it (returning false). Exactly one value transfers per Write
// that returns true.
func (c *Chan[T]) Write(t *Task, v T) bool {
	t.Log("WRITE")

	if c.closed {
		return false
	}

	// A parked reader means nothing is buffered ahead of v, so v
	// is the value it is owed.
	if r := c.popReader(); r != nil {
		r.val = v
		r.ok = true
		r.done = true
		r.task.Resume()
		return true
	}

	if c.buf.Len() < c.cap {
		c.buf.PushBack(v)
		return true
	}

	w := &writer[T]{task: t, val: v}
	c.writeq.PushBack(w)

	for !w.done {
		t.park()
	}

	return w.ok
}

// Read takes the next value from the channel. The second result is
// true when a value was transferred and false only once the channel
// is closed and drained. When neither a buffered value nor a parked
// writer is available on an open channel, the task parks until a
// write supplies a value or Close wakes it empty-handed.
func (c *Chan[T]) Read(t *Task) (T, bool) {
	t.Log("READ")

	if c.buf.Len() > 0 {
		v := c.buf.PopFront()

		// The head writer has been waiting for this slot; its
		// value keeps the buffer ordered by blocking order.
		if w := c.popWriter(); w != nil {
			c.buf.PushBack(w.val)
			w.ok = true
			w.done = true
			w.task.Resume()
		}

		return v, true
	}

	// Unbuffered rendezvous: take the head writer's value without
	// it ever touching a buffer.
	if w := c.popWriter(); w != nil {
		v := w.val
		w.ok = true
		w.done = true
		w.task.Resume()
		return v, true
	}

	if c.closed {
		var zero T
		return zero, false
	}

	r := &reader[T]{task: t}
	c.readq.PushBack(r)

	for !r.done {
		t.park()
	}

	return r.val, r.ok
}

// Close marks the channel closed and wakes every parked reader and
// writer, each queue in its own FIFO order. Woken readers return
// empty (the buffer is necessarily drained while readers are
// parked); woken writers return false and their pending values are
// discarded. Values buffered before Close remain readable. Closing
// an already-closed channel is a no-op.
func (c *Chan[T]) Close() {
	if c.closed {
		return
	}
	c.closed = true

	for c.readq.Len() > 0 {
		r := c.readq.PopFront()
		r.done = true
		r.task.Resume()
	}

	for c.writeq.Len() > 0 {
		w := c.writeq.PopFront()
		w.done = true
		w.task.Resume()
	}
}

// Len returns the number of buffered values.
func (c *Chan[T]) Len() int {
	return c.buf.Len()
}

// Cap returns the channel's buffer capacity; zero means unbuffered.
func (c *Chan[T]) Cap() int {
	return c.cap
}

// Ready reports whether a buffered value is available. It is never
// true for an unbuffered channel.
func (c *Chan[T]) Ready() bool {
	return c.buf.Len() > 0
}

// Closed reports whether the channel has been closed.
func (c *Chan[T]) Closed() bool {
	return c.closed
}

// popReader removes and returns the head parked reader, sweeping
// entries whose task was canceled so a value is never deposited into
// a dead task.
func (c *Chan[T]) popReader() *reader[T] {
	for c.readq.Len() > 0 {
		if r := c.readq.PopFront(); !r.task.Done() {
			return r
		}
	}
	return nil
}

// popWriter removes and returns the head parked writer, sweeping
// entries whose task was canceled; their undelivered values are
// discarded with them.
func (c *Chan[T]) popWriter() *writer[T] {
	for c.writeq.Len() > 0 {
		if w := c.writeq.PopFront(); !w.task.Done() {
			return w
		}
	}
	return nil
}
