package cogo

import (
	"context"
	"fmt"
)

// Group runs a collection of tasks and collects the first error.
// Member tasks share a context that is canceled with the first error
// as its cause; cancellation is advisory, bodies observe it through
// the context. A panic in a member is converted to an error rather
// than left as an unobserved task failure.
type Group struct {
	sched  *Scheduler
	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     WaitGroup
	err    error
}

// Group creates an error group on the task's scheduler. Members run
// under a cancelable child of the task's context.
func (t *Task) Group() *Group {
	ctx, cancel := context.WithCancelCause(t.ctx)
	return &Group{sched: t.sched, ctx: ctx, cancel: cancel}
}

// Go spawns f as a member task with the group's context. The first
// member to return a non-nil error records it and cancels the group
// context with it as the cause.
func (g *Group) Go(f func(context.Context) error) {
	g.wg.Add(1)

	g.sched.Go(g.ctx, func(ctx context.Context, _ *Task) {
		defer g.wg.Done()

		if err := g.call(ctx, f); err != nil && g.err == nil {
			g.err = err
			g.cancel(g.err)
		}
	})
}

// call runs one member, converting a panic into an error so it is
// observed by Wait instead of sitting on a joinerless task.
func (g *Group) call(ctx context.Context, f func(context.Context) error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("cogo: group member panicked: %v", v)
		}
	}()

	return f(ctx)
}

// Wait parks the task until every member has finished, cancels the
// group context, and returns the first error encountered, or nil.
func (g *Group) Wait(t *Task) error {
	g.wg.Wait(t)
	g.cancel(g.err)
	return g.err
}
