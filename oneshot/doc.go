/*
Package oneshot adapts blocking, thread-hogging operations (such as gateway
device discovery that may stall for seconds) into pollable one-shot
operations that fit the otherwise non-blocking resolution model.

An [Op] is created by [Go], which submits the blocking function to a
[github.com/gammazero/workerpool.WorkerPool] (or a throw-away goroutine) and
hands the outcome through a single-slot channel. Consumers either [Op.Poll]
without blocking or [Op.Wait] under context control. The worker sends at most
one outcome, the operation completes at most once, and an abandoned operation
neither leaks into nor crashes the consumer: the worker still runs to
completion and exits cleanly, with the buffered slot swallowing the unread
outcome.

This is the template for adapting any future blocking probe: skip the bridge
entirely when the probe cannot serve the request anyway (say, an unsupported
address family), and otherwise spawn exactly one worker per query.

# Acknowledgements

Under its hood, [Go] leverages [github.com/gammazero/workerpool] as the
limiting goroutine pool.

[github.com/gammazero/workerpool]: https://github.com/gammazero/workerpool
*/
package oneshot
