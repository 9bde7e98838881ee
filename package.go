// Package cogo is a lightweight cooperative-multitasking runtime: a
// single-threaded FIFO scheduler for coroutine-backed tasks, plus the
// synchronization primitives needed to build pipelines on top of it.
// Only one task runs at a time and it keeps the thread until it
// suspends on a primitive or yields, so primitive state needs no
// locking and wake-up order is the entire fairness contract.
//
// Key components:
//
//   - Scheduler: the FIFO run queue and cooperative run loop. The
//     zero value is ready to use, and independent schedulers never
//     share tasks.
//
//   - Task: a resumable unit of work backed by a stackful coroutine.
//     Tasks expose completion (Done), a captured failure (Failure),
//     joining (Join), cooperative hand-off (Yield, Park), and safe
//     teardown (Cancel).
//
//   - Chan: a typed FIFO channel, buffered or unbuffered, with
//     Go-like close semantics. Blocked readers and writers are
//     served strictly in blocking order.
//
//   - WaitGroup: a countdown latch releasing all waiters together
//     when the counter reaches zero.
//
//   - Mutex, Semaphore, Group, SingleFlight: mutual exclusion,
//     counting permits, first-error task groups, and call
//     deduplication in the same FIFO discipline.
//
//   - Driver: the bridge between OS goroutines and the cooperative
//     world. External completions are posted to the driver, which
//     applies them between scheduler passes.
package cogo
