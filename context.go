package cogo

import (
	"context"
)

// taskContextKey is a unique type used as a key for storing Task
// values in a context.
type taskContextKey struct{}

// withTask returns a context carrying the task. Every context handed
// to a task body carries the task itself, so deep call stacks can
// recover the handle without threading it through every signature.
func withTask(ctx context.Context, task *Task) context.Context {
	return context.WithValue(ctx, taskContextKey{}, task)
}

// TaskFromContext retrieves the Task stored in a context. Returns
// the task and a boolean indicating whether one was found.
func TaskFromContext(ctx context.Context) (*Task, bool) {
	val, ok := ctx.Value(taskContextKey{}).(*Task)
	return val, ok
}

// MustTaskFromContext retrieves the Task stored in a context,
// panicking if not found. This function is useful when the caller
// expects the context to definitely come from a task body.
func MustTaskFromContext(ctx context.Context) *Task {
	val, ok := ctx.Value(taskContextKey{}).(*Task)
	if !ok {
		panic("cogo: task not found in context")
	}
	return val
}
