package cogo

// WaitGroup is a countdown latch for tasks. Tasks about to start
// work Add to the counter and Done when finished; tasks calling Wait
// park until the counter reaches zero and are all released together,
// in the order they blocked. The zero value is ready to use.
type WaitGroup struct {
	noCopy noCopy
	n      uint64
	q      waitq
}

// Add increases the counter by delta. Deltas are unsigned, so the
// counter cannot go negative; overflow past the width of the counter
// wraps and is implementation-defined rather than guarded.
func (wg *WaitGroup) Add(delta uint64) {
	wg.n += delta
}

// Done decrements the counter by one. A Done beyond the outstanding
// Adds is a no-op; the counter clamps at zero. On the transition to
// zero every parked waiter is released in FIFO order.
func (wg *WaitGroup) Done() {
	if wg.n == 0 {
		return
	}

	wg.n--

	if wg.n == 0 {
		wg.q.wakeAll()
	}
}

// Wait parks the task until the counter reaches zero. It returns
// immediately when the counter is already zero.
func (wg *WaitGroup) Wait(t *Task) {
	t.Log("WAIT")

	if wg.n == 0 {
		return
	}

	wg.q.park(t)
}

// Count returns the current counter value.
func (wg *WaitGroup) Count() uint64 {
	return wg.n
}

// WaitCount returns the number of tasks parked in Wait.
func (wg *WaitGroup) WaitCount() int {
	return wg.q.len()
}
