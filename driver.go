package cogo

import (
	"context"
	"runtime/trace"
)

const (
	// DriverBacklog is the capacity of a driver's callback channel.
	// Post blocks once this many callbacks are pending.
	DriverBacklog = 128
)

// Driver pumps external completions into a scheduler. Foreign
// goroutines performing real I/O hand their results over with Post
// or Wake; the driver applies them on its own goroutine between
// scheduler passes, preserving the runtime's single-threaded
// discipline. Post and Wake are the only entry points safe to call
// from other goroutines.
type Driver struct {
	sched *Scheduler
	posts chan func()
}

// NewDriver creates a driver for the scheduler.
func NewDriver(sched *Scheduler) *Driver {
	return &Driver{
		sched: sched,
		posts: make(chan func(), DriverBacklog),
	}
}

// Post enqueues a callback to run on the driver's goroutine between
// scheduler passes. Safe to call from any goroutine; blocks while
// the backlog is full.
func (d *Driver) Post(fn func()) {
	d.posts <- fn
}

// Wake posts a resume for the task. This is the completion callback
// handed to event loops: when the external event fires, Wake moves
// the parked task back onto the run queue.
func (d *Driver) Wake(t *Task) {
	d.Post(t.Resume)
}

// Serve runs the scheduler until no live task remains, blocking for
// posted callbacks whenever the run queue goes empty. It returns nil
// once every task spawned on the scheduler has completed, or
// ctx.Err() when the context ends first. Serve must run on the
// goroutine that owns the scheduler.
func (d *Driver) Serve(ctx context.Context) error {
	trace.Log(ctx, taskTraceCategory, "SERVE")

	for {
		d.sched.Run()

		if d.sched.Live() == 0 {
			trace.Log(ctx, taskTraceCategory, "SERVE IDLE")
			return nil
		}

		trace.Log(ctx, taskTraceCategory, "SERVE WAIT")

		select {
		case fn := <-d.posts:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}

	drain:
		for {
			select {
			case fn := <-d.posts:
				fn()
			default:
				break drain
			}
		}
	}
}
