package mipworker

import "context"

type outcome struct {
	res SliceResult
	err error
}

// Future is a one-shot promise for a slab MIP. Cache hits come back
// already resolved, so Await never blocks for them.
type Future struct {
	ch chan outcome
}

func newFuture() *Future {
	return &Future{ch: make(chan outcome, 1)}
}

func resolvedFuture(res SliceResult, err error) *Future {
	f := newFuture()
	f.resolve(res, err)
	return f
}

// resolve is called at most once: a pending future is removed from the
// worker's pending map under the worker mutex before it is resolved.
func (f *Future) resolve(res SliceResult, err error) {
	f.ch <- outcome{res: res, err: err}
}

// Await blocks until the result is ready or ctx ends.
func (f *Future) Await(ctx context.Context) (SliceResult, error) {
	select {
	case o := <-f.ch:
		return o.res, o.err
	case <-ctx.Done():
		return SliceResult{}, ctx.Err()
	}
}

// Done reports whether the future already holds its outcome.
func (f *Future) Done() bool {
	return len(f.ch) > 0
}
