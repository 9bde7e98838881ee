package cogo

import (
	"context"
	"sync/atomic"

	"github.com/gammazero/deque"
)

// Scheduler owns the FIFO run queue of ready tasks and the
// cooperative run loop. All task execution and all primitive state
// mutation happens on the goroutine that calls Run, one task at a
// time. The zero value is ready to use; a Scheduler must not be
// copied after first use and tasks never move between schedulers.
type Scheduler struct {
	noCopy  noCopy
	runq    deque.Deque[*Task]
	running *Task

	spawned   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	resumes   atomic.Int64
	queued    atomic.Int64
}

// Stats is a point-in-time snapshot of scheduler counters. It is
// safe to take from any goroutine while the run loop executes, which
// is what external collectors do.
type Stats struct {
	// Spawned is the total number of tasks created with Go.
	Spawned int64
	// Completed is the total number of tasks that finished,
	// including failed and canceled ones.
	Completed int64
	// Failed is the number of completed tasks that captured a
	// failure.
	Failed int64
	// Resumes is the total number of times the run loop resumed a
	// task.
	Resumes int64
	// Queued is the current length of the run queue.
	Queued int64
	// Live is the number of tasks spawned but not yet completed.
	Live int64
}

// Go creates a task running fn and enqueues its first resume,
// returning the handle. The task does not start synchronously; it
// runs when the scheduler next drains the queue. The context is
// stored on the task, wrapped so TaskFromContext can recover the
// handle, and annotated with a runtime/trace span.
func (s *Scheduler) Go(ctx context.Context, fn func(context.Context, *Task)) *Task {
	task := newTask(ctx, s, fn)
	task.Log("GO")
	s.schedule(task)
	return task
}

// Run drains the queue: it repeatedly pops the head task and resumes
// it until the queue is empty. Resuming a task may enqueue further
// work, including the task itself; the loop observes it iteratively,
// never recursively. A failure captured by a task does not unwind
// through Run. Run panics if called from inside a running task.
func (s *Scheduler) Run() {
	if s.running != nil {
		panic("cogo: Run called from a running task")
	}

	for s.runq.Len() > 0 {
		task := s.pop()
		if task.Done() {
			continue
		}
		s.step(task)
	}
}

// Clear drops every queued continuation without resuming it. The
// dropped tasks remain live and parked; teardown paths that want
// their resources back cancel them individually.
func (s *Scheduler) Clear() {
	for s.runq.Len() > 0 {
		s.pop()
	}
}

// Len returns the current run queue length. It must only be called
// from the scheduler's goroutine; concurrent observers use Stats.
func (s *Scheduler) Len() int {
	return s.runq.Len()
}

// Live returns the number of tasks spawned on this scheduler that
// have not completed yet. Safe from any goroutine.
func (s *Scheduler) Live() int {
	return int(s.spawned.Load() - s.completed.Load())
}

// Stats returns a snapshot of the scheduler counters. Safe from any
// goroutine.
func (s *Scheduler) Stats() Stats {
	spawned := s.spawned.Load()
	completed := s.completed.Load()
	return Stats{
		Spawned:   spawned,
		Completed: completed,
		Failed:    s.failed.Load(),
		Resumes:   s.resumes.Load(),
		Queued:    s.queued.Load(),
		Live:      spawned - completed,
	}
}

// schedule appends a task to the tail of the run queue. Scheduling a
// finished task is a no-op, and a task already in the queue is not
// enqueued twice.
func (s *Scheduler) schedule(task *Task) {
	if task.Done() || task.enqueued {
		return
	}

	task.enqueued = true
	s.queued.Add(1)
	s.runq.PushBack(task)
}

// pop removes and returns the head of the run queue, clearing its
// enqueued mark.
func (s *Scheduler) pop() *Task {
	task := s.runq.PopFront()
	task.enqueued = false
	s.queued.Add(-1)
	return task
}

// step resumes one task and runs it until its next suspension point
// or completion. The task being resumed is recorded so blocking
// primitives can verify they were handed the running task.
func (s *Scheduler) step(task *Task) {
	task.Log("RUN")
	s.resumes.Add(1)

	s.running = task
	task.resume(struct{}{})
	s.running = nil
}
