package morpheus

import "context"

// Scheduler is the host task loop's suspension primitive. A bound
// Scheduler is what lets [Worker.AsyncCheckpoint] and
// [Worker.ForceYield] actually cede control rather than merely
// acknowledge a hint: the runtime owns the decision to suspend, the
// host scheduler owns what happens next. This package does not
// implement a task loop itself, it only defines the seam a caller's
// task loop plugs into — the `policy` subpackage's LoopScheduler
// implements it over a host loop's task-submission primitive.
type Scheduler interface {
	// Yield suspends the calling goroutine until the host scheduler
	// next runs it, or ctx is done, whichever comes first.
	Yield(ctx context.Context)
}

// Checkpoint is the fast-path poll: a worker that runs a cooperative
// loop calls this frequently and yields (via [Worker.AsyncCheckpoint]
// or by handling it manually) whenever it returns true. In the no-hint
// case it never blocks, allocates, or takes a lock.
//
// The common, no-hint case costs one atomic load each of the
// critical-section counter and preempt_seq, a cheap non-atomic
// comparison against the last-seen sequence (pressureTracker.lastSeq),
// and, outside Defensive mode, one more atomic load of last_ack_seq. It
// mutates nothing kernel-visible in any case. A call that observes a
// sequence gap, or completes a Defensive recovery, also emits a log
// entry through the registry's Logger.
func (w *Worker) Checkpoint() bool {
	if w == nil {
		return false
	}
	if w.acc.readCritical() > 0 {
		return false
	}
	seq := w.acc.readPreemptSeq()
	w.pressure.observeSeq(seq, w.stats, w.registry.logger, w.id)
	if w.pressure.state == PressureDefensive {
		return true
	}
	return seq != w.acc.readAck()
}

// YieldRequested reports whether the kernel currently has an
// outstanding hint for this worker, without acknowledging it and
// without the critical-section or defensive-mode gating
// [Worker.Checkpoint] applies. Use this to inspect pending-hint state
// from diagnostics or logging paths that must never influence
// scheduling decisions.
func (w *Worker) YieldRequested() bool {
	if w == nil {
		return false
	}
	return w.acc.readPreemptSeq() != w.acc.readAck()
}

// AcknowledgeYield synchronizes last_ack_seq up to the current
// preempt_seq and records the yield reason, returning false if there
// was nothing outstanding to acknowledge (and the worker isn't in
// Defensive mode, which always has an outstanding implicit yield).
// It never suspends the caller — see [Worker.AsyncCheckpoint] and
// [Worker.ForceYield] for that.
func (w *Worker) AcknowledgeYield() bool {
	if w == nil {
		return false
	}
	seq := w.acc.readPreemptSeq()
	ack := w.acc.readAck()
	defensive := w.pressure.state == PressureDefensive
	if seq == ack && !defensive {
		return false
	}
	w.acc.storeAck(seq)
	if defensive {
		w.acc.storeYieldReason(YieldDefensive)
	} else {
		w.acc.storeYieldReason(YieldHint)
	}
	w.stats.acks.Add(1)
	return true
}

// AsyncCheckpoint combines [Worker.Checkpoint], [Worker.AcknowledgeYield],
// and a suspend through the bound [Scheduler]. It returns false
// without suspending if Checkpoint found nothing to do. If no
// Scheduler was bound via [WithScheduler], the hint is still
// acknowledged but there is no host to cede control to, so the
// caller resumes immediately — a degrade-to-synchronous fallback,
// not an error.
func (w *Worker) AsyncCheckpoint(ctx context.Context) bool {
	if w == nil {
		return false
	}
	if !w.Checkpoint() {
		return false
	}
	w.AcknowledgeYield()
	w.stats.yieldsPerformed.Add(1)
	if w.scheduler != nil {
		w.scheduler.Yield(ctx)
	}
	return true
}

// ForceYield unconditionally acknowledges and suspends, regardless of
// whether a hint was outstanding, so a caller can impose a yield
// independent of kernel hints. The `policy` subpackage never calls it.
func (w *Worker) ForceYield(ctx context.Context) {
	if w == nil {
		return
	}
	seq := w.acc.readPreemptSeq()
	ack := w.acc.readAck()
	outstanding := seq != ack
	defensive := w.pressure.state == PressureDefensive
	w.acc.storeAck(seq)
	switch {
	case defensive:
		w.acc.storeYieldReason(YieldDefensive)
	case outstanding:
		w.acc.storeYieldReason(YieldHint)
	default:
		w.acc.storeYieldReason(YieldCheckpoint)
	}
	w.stats.acks.Add(1)
	w.stats.yieldsPerformed.Add(1)
	if w.scheduler != nil {
		w.scheduler.Yield(ctx)
	}
}

// PressureLevel returns the kernel-reported system-wide pressure
// gauge for this worker's slot, or (0, false) on a nil Worker — a
// nil-safe query rather than an implicit ambient lookup, so a caller
// that was never registered gets an absent result instead of a fault.
func (w *Worker) PressureLevel() (uint32, bool) {
	if w == nil {
		return 0, false
	}
	return w.acc.readPressure(), true
}

// BudgetRemainingNs returns the kernel-reported remaining time slice,
// or (0, false) on a nil Worker.
func (w *Worker) BudgetRemainingNs() (uint64, bool) {
	if w == nil {
		return 0, false
	}
	return w.acc.readBudget(), true
}

// SetPriority updates the worker's advisory runtime_priority. A no-op
// on a nil Worker.
func (w *Worker) SetPriority(p uint8) {
	if w == nil {
		return
	}
	w.acc.storePriority(p)
}

// Priority returns the worker's current advisory runtime_priority, or
// (0, false) on a nil Worker.
func (w *Worker) Priority() (uint8, bool) {
	if w == nil {
		return 0, false
	}
	return w.acc.readPriority(), true
}

// LastYieldReason returns the reason code of the worker's most recent
// yield, or (YieldNone, false) on a nil Worker.
func (w *Worker) LastYieldReason() (YieldReason, bool) {
	if w == nil {
		return YieldNone, false
	}
	return w.acc.readYieldReason(), true
}
