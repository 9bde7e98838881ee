package cogo

import "github.com/gammazero/deque"

// waiter is one parked task's entry in a waitq. The waker marks the
// entry released before scheduling the task, so the task can tell a
// genuine wake from a spurious resume.
type waiter struct {
	task     *Task
	released bool
}

// waitq is a FIFO queue of parked tasks, the wait machinery shared
// by WaitGroup, Mutex, Semaphore, and task joining. Entries are
// released strictly in blocking order. Entries whose task has been
// canceled are skipped by the wakers and swept out lazily.
type waitq struct {
	w deque.Deque[*waiter]
}

// park blocks the task on the queue until a waker releases its
// entry. A resume without a release parks again.
func (q *waitq) park(t *Task) {
	e := &waiter{task: t}
	q.w.PushBack(e)

	for !e.released {
		t.park()
	}
}

// wakeOne releases the first entry whose task is still live and
// schedules it, returning the woken task. It returns nil when no
// live waiter remains.
func (q *waitq) wakeOne() *Task {
	for q.w.Len() > 0 {
		e := q.w.PopFront()
		if e.task.Done() {
			continue
		}

		e.released = true
		e.task.Resume()
		return e.task
	}
	return nil
}

// wakeAll releases every queued entry in FIFO order.
func (q *waitq) wakeAll() {
	for q.w.Len() > 0 {
		e := q.w.PopFront()
		e.released = true
		e.task.Resume()
	}
}

// len returns the number of queued entries, including entries whose
// task has been canceled but not yet swept.
func (q *waitq) len() int {
	return q.w.Len()
}
