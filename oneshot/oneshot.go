// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package oneshot

import (
	"context"

	"github.com/gammazero/workerpool"
)

// Op is a single pending outcome of a blocking function that has been
// offloaded onto a background worker. The zero Op is useless; use [Go] to
// create Ops.
//
// An Op is a single-producer/single-consumer affair: exactly one background
// worker delivers the outcome, and exactly one consumer polls or waits for
// it. Completion latches: once the outcome has been observed, [Op.Poll] and
// [Op.Wait] keep returning it without ever touching the worker again.
type Op[T any] struct {
	outcome chan T
	done    bool
	result  T
}

// Go runs the specified blocking function exactly once on the given worker
// pool and returns an Op for its outcome. If pool is nil, the function runs
// on a dedicated throw-away goroutine instead.
//
// The worker is detached: it always runs to completion, delivering its
// outcome into a single-slot channel. Abandoning the Op (for instance,
// because the caller's context got cancelled) is benign, as the slot buffers
// the outcome so the worker never blocks on a consumer that will never come.
func Go[T any](pool *workerpool.WorkerPool, fn func() T) *Op[T] {
	op := &Op[T]{
		outcome: make(chan T, 1),
	}
	work := func() {
		op.outcome <- fn()
	}
	if pool != nil {
		pool.Submit(work)
	} else {
		go work()
	}
	return op
}

// Poll attempts to observe the outcome without blocking, returning it
// together with true if the worker has completed. Polling again after
// completion returns the same outcome again; the worker is never re-run and
// the outcome slot never consulted twice.
func (op *Op[T]) Poll() (T, bool) {
	if op.done {
		return op.result, true
	}
	select {
	case result := <-op.outcome:
		op.result = result
		op.done = true
		return result, true
	default:
		var none T
		return none, false
	}
}

// Wait blocks until the outcome becomes available or the specified context
// is done, whatever happens first. Like [Op.Poll], a completed outcome is
// latched, so waiting again simply returns it again.
func (op *Op[T]) Wait(ctx context.Context) (T, error) {
	if op.done {
		return op.result, nil
	}
	select {
	case result := <-op.outcome:
		op.result = result
		op.done = true
		return result, nil
	case <-ctx.Done():
		var none T
		return none, ctx.Err()
	}
}
