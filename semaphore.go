package cogo

// Semaphore is a counting semaphore for tasks. Acquire takes a
// permit, parking until one is available; Release returns one.
// Parked tasks are served in FIFO order, and a released permit is
// handed to the head waiter directly so later acquirers cannot slip
// past it.
type Semaphore struct {
	noCopy  noCopy
	permits int
	q       waitq
}

// NewSemaphore creates a semaphore holding permits. Negative permits
// panics.
func NewSemaphore(permits int) *Semaphore {
	if permits < 0 {
		panic("cogo: negative semaphore permits")
	}
	return &Semaphore{permits: permits}
}

// Acquire takes a permit, parking the task until one is available.
func (s *Semaphore) Acquire(t *Task) {
	if s.permits > 0 {
		s.permits--
		return
	}

	// Release hands the permit over before this task resumes; the
	// count stays untouched.
	s.q.park(t)
}

// TryAcquire takes a permit without parking. It reports whether a
// permit was taken.
func (s *Semaphore) TryAcquire() bool {
	if s.permits > 0 {
		s.permits--
		return true
	}
	return false
}

// Release returns a permit, waking the head waiter if one is parked.
func (s *Semaphore) Release() {
	if s.q.wakeOne() != nil {
		return
	}
	s.permits++
}

// WaitCount returns the number of tasks parked in Acquire.
func (s *Semaphore) WaitCount() int {
	return s.q.len()
}
