// Package policy adapts an arbitrary host task loop to poll a morpheus
// checkpoint between iterations, without assuming anything about that
// loop's internals beyond a single-iteration entry point.
//
// The wrapper never suspends the scheduler thread itself: the host
// loop's own goroutine is a bookkeeper, not a worker, so Policy only
// ever calls [Checkpointer.Checkpoint] — never AsyncCheckpoint or
// ForceYield. A [LoopScheduler] is provided separately for adapting a
// host loop's task-submission primitive into the morpheus.Scheduler a
// *worker* goroutine binds via morpheus.WithScheduler, for the (much
// less common) case where the scheduler thread and a worker share a
// single event loop.
package policy
