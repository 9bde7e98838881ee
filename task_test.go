package cogo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinReleasesWaiter(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	var order []string
	slow := sched.Go(ctx, func(_ context.Context, task *Task) {
		task.Yield()
		task.Yield()
		order = append(order, "slow")
	})
	sched.Go(ctx, func(_ context.Context, task *Task) {
		slow.Join(task)
		order = append(order, "joiner")
	})

	sched.Run()

	r.Equal([]string{"slow", "joiner"}, order)
	r.True(slow.Done())
	r.Nil(slow.Failure())
}

func TestJoinFinishedTaskImmediate(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	done := sched.Go(ctx, func(_ context.Context, _ *Task) {})
	sched.Run()
	r.True(done.Done())

	joined := false
	sched.Go(ctx, func(_ context.Context, task *Task) {
		done.Join(task)
		joined = true
	})
	sched.Run()

	r.True(joined)
}

func TestJoinPropagatesFailure(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	boom := errors.New("boom")
	failing := sched.Go(ctx, func(_ context.Context, _ *Task) {
		panic(boom)
	})

	caught := make([]any, 2)
	for i := range caught {
		sched.Go(ctx, func(_ context.Context, task *Task) {
			defer func() { caught[i] = recover() }()
			failing.Join(task)
		})
	}

	sched.Run()

	r.True(failing.Done())
	r.Same(boom, failing.Failure())
	r.Same(boom, caught[0])
	r.Same(boom, caught[1])

	// A joiner arriving after completion sees the same failure,
	// immediately.
	var late any
	sched.Go(ctx, func(_ context.Context, task *Task) {
		defer func() { late = recover() }()
		failing.Join(task)
	})
	sched.Run()

	r.Same(boom, late)
}

func TestJoinFailureChains(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	boom := errors.New("boom")
	failing := sched.Go(ctx, func(_ context.Context, _ *Task) {
		panic(boom)
	})

	// The joiner does not recover, so the re-raised failure becomes
	// its own captured failure. The run loop is not unwound either
	// way.
	joiner := sched.Go(ctx, func(_ context.Context, task *Task) {
		failing.Join(task)
	})

	sched.Run()

	r.True(joiner.Done())
	r.Same(boom, joiner.Failure())
}

func TestJoinNilTask(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	joined := false
	sched.Go(ctx, func(_ context.Context, task *Task) {
		var gone *Task
		gone.Join(task)
		joined = true
	})
	sched.Run()

	r.True(joined)
}

func TestJoinSelfPanics(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	task := sched.Go(ctx, func(_ context.Context, task *Task) {
		task.Join(task)
	})
	sched.Run()

	r.Equal("cogo: task joined itself", task.Failure())
}

func TestFailureAccessors(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	var nilTask *Task
	r.True(nilTask.Done())
	r.Nil(nilTask.Failure())

	task := sched.Go(ctx, func(_ context.Context, _ *Task) {
		panic("bad")
	})

	r.False(task.Done())
	r.Nil(task.Failure())

	sched.Run()

	r.True(task.Done())
	r.Equal("bad", task.Failure())
}

func TestCancelParkedTask(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	cleaned := false
	task := sched.Go(ctx, func(_ context.Context, task *Task) {
		defer func() { cleaned = true }()
		task.Park()
	})

	sched.Run()
	r.False(task.Done())

	task.Cancel()

	r.True(task.Done())
	r.Nil(task.Failure())
	r.True(cleaned, "cancel unwinds the body through its defers")

	task.Cancel()
	r.True(task.Done())
}

func TestCancelReleasesJoiners(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	parked := sched.Go(ctx, func(_ context.Context, task *Task) {
		task.Park()
	})

	joined := false
	sched.Go(ctx, func(_ context.Context, task *Task) {
		parked.Join(task)
		joined = true
	})

	sched.Run()
	r.False(joined)

	parked.Cancel()
	sched.Run()

	r.True(joined)
	r.Nil(parked.Failure())
}

func TestCancelBeforeFirstResume(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	ran := false
	task := sched.Go(ctx, func(_ context.Context, _ *Task) {
		ran = true
	})

	task.Cancel()
	sched.Run()

	r.False(ran)
	r.True(task.Done())
	r.Equal(0, sched.Live())
}

func TestParkUntilExternalResume(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	n := 0
	task := sched.Go(ctx, func(_ context.Context, task *Task) {
		n++
		task.Park()
		n++
	})

	sched.Run()
	r.Equal(1, n)
	r.False(task.Done())

	task.Resume()
	sched.Run()

	r.Equal(2, n)
	r.True(task.Done())
}

func TestTaskGoInheritsContext(t *testing.T) {
	r := require.New(t)

	var sched Scheduler

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")

	var childCtx context.Context
	var child *Task
	sched.Go(ctx, func(_ context.Context, task *Task) {
		child = task.Go(func(ctx context.Context, _ *Task) {
			childCtx = ctx
		})
	})

	sched.Run()

	r.True(child.Done())
	r.Equal("v", childCtx.Value(ctxKey{}))

	got, ok := TaskFromContext(childCtx)
	r.True(ok)
	r.Same(child, got)
	r.Same(child, MustTaskFromContext(childCtx))
}

func TestMustTaskFromContextPanics(t *testing.T) {
	r := require.New(t)

	r.PanicsWithValue("cogo: task not found in context", func() {
		MustTaskFromContext(context.Background())
	})
}

func TestTaskIDs(t *testing.T) {
	r := require.New(t)

	var sched Scheduler
	ctx := context.Background()

	a := sched.Go(ctx, func(_ context.Context, _ *Task) {})
	b := sched.Go(ctx, func(_ context.Context, _ *Task) {})

	r.Equal(int64(1), a.ID())
	r.Equal(int64(2), b.ID())

	sched.Run()
}
