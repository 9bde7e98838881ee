package cogo

// singleFlightCall represents an in-flight function call that may be
// shared among multiple callers. It tracks the result of the call
// and the number of duplicated requests.
type singleFlightCall struct {
	wg   WaitGroup
	val  any
	err  error
	dups int
}

// SingleFlight deduplicates calls by key: while a call for a key is
// in flight, further callers for the same key park and share its
// result instead of running the function again. The zero value is
// ready to use.
type SingleFlight struct {
	m map[any]*singleFlightCall
}

// Do executes fn for the key, deduplicating concurrent calls. A
// caller that finds the key in flight parks until the result is
// ready. The third result reports whether the value was shared with
// other callers. fn runs on the calling task, so it may itself
// suspend.
func (g *SingleFlight) Do(t *Task, key any, fn func() (any, error)) (v any, err error, shared bool) {
	t.Logf("DO %v", key)

	if g.m == nil {
		g.m = make(map[any]*singleFlightCall)
	}

	if c, ok := g.m[key]; ok {
		c.dups++
		c.wg.Wait(t)
		return c.val, c.err, true
	}

	c := new(singleFlightCall)
	c.wg.Add(1)
	g.m[key] = c

	g.doCall(c, key, fn)
	return c.val, c.err, c.dups > 0
}

// doCall executes the function and stores the result in the call,
// releasing the duplicate callers and cleaning up the map entry.
func (g *SingleFlight) doCall(c *singleFlightCall, key any, fn func() (any, error)) {
	defer func() {
		c.wg.Done()
		if g.m[key] == c {
			delete(g.m, key)
		}
	}()

	c.val, c.err = fn()
}
