package policy

import (
	"context"

	"github.com/ankitkpandey1/morpheus"
)

var _ morpheus.Scheduler = (*LoopScheduler)(nil)

// SubmitFunc matches a host loop's one-shot task-submission primitive
// — e.g. an eventloop's Submit/SetImmediate — schedule fn to run at
// the tail of the ready queue. It carries no error return: a host loop
// that cannot accept more work should simply never invoke fn, and the
// caller times out via ctx instead (see [LoopScheduler.Yield]).
type SubmitFunc func(fn func())

// LoopScheduler adapts a host loop's task-submission primitive into
// morpheus.Scheduler: Yield blocks the calling goroutine until a
// callback it submitted to the host loop runs — the Go equivalent of yielding to
// the scheduler and resuming at the tail of the ready queue. Bind one
// of these via morpheus.WithScheduler when a worker goroutine shares a
// single event loop with the scheduler that drives it.
type LoopScheduler struct {
	submit SubmitFunc
}

// NewLoopScheduler builds a LoopScheduler over submit.
func NewLoopScheduler(submit SubmitFunc) *LoopScheduler {
	return &LoopScheduler{submit: submit}
}

// Yield submits a callback that closes done, then blocks until either
// done closes or ctx is cancelled. A nil-submit LoopScheduler (no host
// loop bound) returns immediately — the same "degrade to synchronous
// fallback, never fault" posture morpheus.Worker.AsyncCheckpoint takes
// when no Scheduler is bound at all.
func (s *LoopScheduler) Yield(ctx context.Context) {
	if s == nil || s.submit == nil {
		return
	}
	done := make(chan struct{})
	s.submit(func() { close(done) })
	select {
	case <-done:
	case <-ctx.Done():
	}
}
