package policy

import (
	"context"

	"github.com/ankitkpandey1/morpheus"
)

// Checkpointer is the minimal surface Wrap needs from a registered
// worker: a single, cheap poll safe to call every iteration. A
// *morpheus.Worker satisfies this via its Checkpoint method.
type Checkpointer interface {
	Checkpoint() bool
}

var _ Checkpointer = (*morpheus.Worker)(nil)

// IterateFunc is a host task loop's single-iteration entry point, the
// callback the wrapper composes checkpoint-then-delegate around. It
// reports whether the loop has more work to do (false meaning the loop
// is drained/closed).
type IterateFunc func(ctx context.Context) bool

// Option configures a [Policy] at construction.
type Option func(*Policy)

// WithPacer attaches a pressure-adaptive pacer so Policy doesn't poll
// the checkpoint on literally every iteration of a hot inner loop. If
// omitted, Policy polls on every call to Iterate — checkpointing before
// each iteration of the host loop.
func WithPacer(pacer *morpheus.AdaptiveCheckpointer) Option {
	return func(p *Policy) { p.pacer = pacer }
}

// Policy wraps a host task loop's iteration function so that, before
// each iteration, it invokes Checkpoint() on the scheduler thread —
// keeping the SCB observable to the kernel (liveness) and letting the
// host react to pressure — and then forwards to the inner loop
// unconditionally. It never suspends the calling goroutine: the
// scheduler is a bookkeeper, not a worker.
type Policy struct {
	checkpoint Checkpointer
	inner      IterateFunc
	pacer      *morpheus.AdaptiveCheckpointer
	iteration  int64
}

// Wrap builds a Policy around inner, polling checkpoint before each
// iteration (optionally paced via [WithPacer]).
func Wrap(checkpoint Checkpointer, inner IterateFunc, opts ...Option) *Policy {
	p := &Policy{checkpoint: checkpoint, inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Iterate polls the checkpoint (subject to any bound pacer) and then
// delegates to the inner loop's single-iteration entry point, in that
// order. The checkpoint's return value is intentionally discarded
// here: Policy's job is liveness/pressure-reaction, not deciding
// whether the scheduler thread itself should yield (it never does).
func (p *Policy) Iterate(ctx context.Context) bool {
	if p.checkpoint != nil && p.shouldPoll() {
		p.checkpoint.Checkpoint()
	}
	p.iteration++
	if p.inner == nil {
		return false
	}
	return p.inner(ctx)
}

func (p *Policy) shouldPoll() bool {
	if p.pacer == nil {
		return true
	}
	return p.pacer.ShouldCheck(p.iteration)
}

// Run drives Iterate in a loop until it returns false or ctx is done,
// the composition a host process uses when it has no pre-existing
// "drive the loop" caller of its own (e.g. a bare `for { ... }` driver
// around an otherwise-manual inner loop).
func (p *Policy) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !p.Iterate(ctx) {
			return
		}
	}
}
