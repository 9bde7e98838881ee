package cogo

import (
	"context"
	"fmt"
	"runtime/trace"
	"strings"

	"github.com/webriots/coro"
)

const (
	taskTraceTaskType   = "cogo-task"
	taskTraceRegionType = "cogo-region"
	taskTraceCategory   = "cogo"
)

// Task is a resumable unit of sequential work managed by a
// Scheduler. A task is created in a not-started state, runs when the
// scheduler resumes it, and completes exactly once: on normal
// fall-through, after capturing a failure raised in its body, or
// when canceled. Completion releases every task joined on it.
//
// Task handles are pointers and are never copied; the coroutine
// behind a task has exactly one owner.
type Task struct {
	ctx     context.Context
	sched   *Scheduler
	suspend func() struct{}
	resume  func(struct{}) (struct{}, bool)
	cancel  func()
	tracer  *trace.Task
	joiners waitq
	id      int64
	failure any

	completed bool
	canceling bool
	enqueued  bool
}

// newTask wraps fn in a coroutine bound to the scheduler. The
// coroutine body captures its suspend handle, runs fn, and funnels
// any unrecovered panic into the completion hook.
func newTask(ctx context.Context, sched *Scheduler, fn func(context.Context, *Task)) *Task {
	task := &Task{
		sched: sched,
		id:    sched.spawned.Add(1),
	}

	ctx, task.tracer = trace.NewTask(ctx, taskTraceTaskType)
	task.ctx = withTask(ctx, task)

	resume, cancel := coro.New(
		func(_ func(struct{}) struct{}, suspend func() struct{}) (z struct{}) {
			region := trace.StartRegion(task.ctx, taskTraceRegionType)

			defer func() {
				v := recover()
				region.End()
				task.finish(v)
			}()

			task.suspend = suspend

			fn(task.ctx, task)

			return
		},
	)

	task.resume = resume
	task.cancel = cancel
	return task
}

// Resume schedules the task's continuation at the tail of the run
// queue. It never runs the task synchronously. Resuming a finished
// task, or one already queued, is a no-op; a task parked on a
// primitive that is resumed without its condition holding simply
// parks again. Resume must be called on the scheduler's goroutine;
// foreign goroutines go through Driver.Wake.
func (t *Task) Resume() {
	if t.Done() {
		return
	}
	t.Log("RESUME")
	t.sched.schedule(t)
}

// Done reports whether the task has completed. A nil task is treated
// as already complete.
func (t *Task) Done() bool {
	return t == nil || t.completed
}

// Failure returns the failure value captured from the task's body,
// or nil if the task did not fail (or has not completed). A nil task
// has no failure.
func (t *Task) Failure() any {
	if t == nil {
		return nil
	}
	return t.failure
}

// Join suspends caller until t completes. If t captured a failure,
// Join re-raises that same value in the caller, whether the wait
// suspended or returned immediately; every joiner observes the same
// failure. Joining a nil or already-completed task that did not fail
// returns immediately. A task cannot join itself.
func (t *Task) Join(caller *Task) {
	if t == nil {
		return
	}
	if t == caller {
		panic("cogo: task joined itself")
	}

	caller.Logf("JOIN #%d", t.id)

	if !t.Done() {
		t.joiners.park(caller)
	}

	if t.failure != nil {
		panic(t.failure)
	}
}

// Cancel discards an unfinished task: the coroutine is unwound, the
// completion hook runs without recording a failure, and join waiters
// are released. Canceling a finished task is a no-op. Cancel must be
// called from outside the task; a task cannot cancel itself.
func (t *Task) Cancel() {
	if t.Done() {
		return
	}
	if t.sched.running == t {
		panic("cogo: task canceled itself")
	}

	t.Log("CANCEL")

	t.canceling = true
	t.cancel()

	// A task canceled before its first resume never entered its
	// body, so the deferred hook did not run.
	t.complete()
}

// Yield reschedules the task at the tail of the run queue and
// suspends. Control returns once every continuation queued ahead of
// it has run.
func (t *Task) Yield() {
	t.Log("YIELD")
	t.sched.schedule(t)
	t.park()
}

// Park suspends the task without rescheduling it. Nothing inside the
// runtime will wake it; an external collaborator resumes it later,
// typically a completion callback through Driver.Wake. Park is the
// suspension point for waiting on real I/O.
func (t *Task) Park() {
	t.Log("PARK")
	t.park()
}

// Go spawns fn as a new task on the same scheduler, inheriting t's
// context, and returns its handle.
func (t *Task) Go(fn func(context.Context, *Task)) *Task {
	return t.sched.Go(t.ctx, fn)
}

// Context returns the context the task body was started with. It
// carries the task itself, recoverable with TaskFromContext.
func (t *Task) Context() context.Context {
	return t.ctx
}

// ID returns the task's ordinal id on its scheduler, starting at 1.
func (t *Task) ID() int64 {
	return t.id
}

// park returns control to the scheduler until the task is next
// resumed. Only the running task can park.
func (t *Task) park() {
	if t.sched.running != t {
		panic("cogo: task is not running")
	}
	t.suspend()
}

// finish is the completion hook run when the coroutine body exits.
// An unrecovered panic from the body arrives here as v and is stored
// as the task's failure for joiners to observe; it never propagates
// into the scheduler's run loop. A cancel unwind is not a failure
// and is re-raised so the coroutine terminates.
func (t *Task) finish(v any) {
	if v != nil && t.canceling {
		t.complete()
		panic(v)
	}

	if v != nil {
		t.failure = v
	}

	t.complete()
}

// complete marks the task completed exactly once and moves every
// join waiter to the run queue in FIFO order.
func (t *Task) complete() {
	if t.completed {
		return
	}

	t.completed = true

	if t.failure != nil {
		t.sched.failed.Add(1)
	}
	t.sched.completed.Add(1)

	t.Log("DONE")
	t.joiners.wakeAll()

	if t.tracer != nil {
		t.tracer.End()
	}
}

// Log emits a task-prefixed message to the execution tracer when
// tracing is enabled.
func (t *Task) Log(msg string) {
	if trace.IsEnabled() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "#%d ", t.id)
		sb.WriteString(msg)
		trace.Log(t.ctx, taskTraceCategory, sb.String())
	}
}

// Logf emits a formatted task-prefixed message to the execution
// tracer when tracing is enabled.
func (t *Task) Logf(format string, args ...any) {
	if trace.IsEnabled() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "#%d ", t.id)
		fmt.Fprintf(&sb, format, args...)
		trace.Log(t.ctx, taskTraceCategory, sb.String())
	}
}
