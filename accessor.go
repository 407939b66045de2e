package morpheus

// Accessor is a per-thread handle bound to one SCB slot. Every
// operation is a single atomic load, store or add, except decCritical,
// which is a compare-and-swap loop that clamps at zero; the accessor
// never holds a lock. The checkpoint engine and critical section go
// through these methods; the registry's lifecycle transitions
// (RegisterWorker, Quiesce, Deregister) compare-and-swap the state
// field of the SCB directly.
type Accessor struct {
	scb *SCB
}

// newAccessor binds an Accessor to scb. Unexported: callers obtain one
// only via [Registry.RegisterWorker], which pairs it with lifecycle bookkeeping.
func newAccessor(scb *SCB) *Accessor {
	return &Accessor{scb: scb}
}

// --- kernel -> runtime reads (acquire) ---

func (a *Accessor) readPreemptSeq() uint64 { return a.scb.PreemptSeq.Load() }

func (a *Accessor) readBudget() uint64 { return a.scb.BudgetRemainingNs.Load() }

func (a *Accessor) readPressure() uint32 { return a.scb.KernelPressureLevel.Load() }

func (a *Accessor) readState() WorkerState { return WorkerState(a.scb.RawWorkerState.Load()) }

// --- runtime -> kernel writes (release) ---

func (a *Accessor) storeAck(seq uint64) { a.scb.LastAckSeq.Store(seq) }

func (a *Accessor) readAck() uint64 { return a.scb.LastAckSeq.Load() }

func (a *Accessor) storeState(s WorkerState) { a.scb.RawWorkerState.Store(uint32(s)) }

func (a *Accessor) storePriority(p uint8) { a.scb.RuntimePriority.Store(uint32(p)) }

func (a *Accessor) readPriority() uint8 { return uint8(a.scb.RuntimePriority.Load()) }

func (a *Accessor) storeYieldReason(r YieldReason) { a.scb.RawLastYieldReason.Store(uint32(r)) }

func (a *Accessor) readYieldReason() YieldReason {
	return YieldReason(a.scb.RawLastYieldReason.Load())
}

func (a *Accessor) storeEscapable(v bool) {
	if v {
		a.scb.RawEscapable.Store(1)
	} else {
		a.scb.RawEscapable.Store(0)
	}
}

func (a *Accessor) readEscapable() bool { return a.scb.RawEscapable.Load() != 0 }

func (a *Accessor) storeEscalationPolicy(p EscalationPolicy) {
	a.scb.RawEscalationPolicy.Store(uint32(p))
}

// --- re-entrant critical-section counter (release/acquire pair) ---

// incCritical increments the re-entrancy counter and returns the new value.
func (a *Accessor) incCritical() uint32 { return a.scb.CriticalSectionCount.Add(1) }

// decCritical decrements the re-entrancy counter, clamping at zero on
// underflow, and returns the new value.
func (a *Accessor) decCritical() uint32 {
	for {
		cur := a.scb.CriticalSectionCount.Load()
		if cur == 0 {
			return 0
		}
		if a.scb.CriticalSectionCount.CompareAndSwap(cur, cur-1) {
			return cur - 1
		}
	}
}

func (a *Accessor) readCritical() uint32 { return a.scb.CriticalSectionCount.Load() }
