package cogo

// Mutex provides mutual exclusion for tasks. It allows only one task
// to hold the lock at a time, parking other tasks that attempt to
// acquire it until it is released. Ownership transfers to the head
// waiter at unlock time, so a task calling Lock between the unlock
// and the waiter's resume queues behind it instead of barging in.
type Mutex struct {
	noCopy noCopy
	owner  *Task
	q      waitq
}

// Lock acquires the mutex for the task. If the mutex is held the
// task parks until a previous owner hands the lock over; waiters are
// served in FIFO order.
func (m *Mutex) Lock(t *Task) {
	if m.owner == nil {
		m.owner = t
		return
	}

	// Unlock marks this task as owner before it resumes.
	m.q.park(t)
}

// Unlock releases the mutex, handing ownership to the head waiter if
// one is parked. Unlocking an unheld mutex panics.
func (m *Mutex) Unlock() {
	if m.owner == nil {
		panic("cogo: unlock of unlocked mutex")
	}

	m.owner = m.q.wakeOne()
}

// WaitCount returns the number of tasks waiting to acquire the
// mutex.
func (m *Mutex) WaitCount() int {
	return m.q.len()
}
