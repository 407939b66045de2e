package morpheus

import "time"

// recoveryLogWindow and recoveryLogBurst bound how often
// "recovered from defensive mode" is logged per worker: a flapping
// kernel that oscillates Defensive/Pressured shouldn't produce a log
// line per recovery. A sliding-window event counter with a single
// fixed category (one limiter per worker, no cleanup goroutine needed
// since a *Worker already owns its lifetime).
const (
	recoveryLogWindow = time.Second
	recoveryLogBurst  = 3
)

// recoveryLogLimiter is a tiny, single-category version of catrate's
// sliding-window event counter (catrate/limiter.go's categoryData):
// allow reports whether fewer than recoveryLogBurst events have been
// recorded within the trailing recoveryLogWindow. It never blocks and
// never gates correctness — only whether a log line is emitted.
type recoveryLogLimiter struct {
	now    func() time.Time
	events [recoveryLogBurst]int64
	next   int
	filled int
}

func (r *recoveryLogLimiter) allow() bool {
	now := r.timeNow()
	threshold := now - int64(recoveryLogWindow)
	count := 0
	for i := 0; i < r.filled; i++ {
		if r.events[i] >= threshold {
			count++
		}
	}
	r.events[r.next] = now
	r.next = (r.next + 1) % len(r.events)
	if r.filled < len(r.events) {
		r.filled++
	}
	return count < recoveryLogBurst
}

func (r *recoveryLogLimiter) timeNow() int64 {
	if r.now != nil {
		return r.now().UnixNano()
	}
	return time.Now().UnixNano()
}

// defensiveRecoveryObservations is the number of consecutive,
// contiguous preempt_seq observations required to step back down from
// Defensive to Pressured.
const defensiveRecoveryObservations = 64

// PressureState is the runtime's own three-state escalation ladder,
// distinct from the kernel's KernelPressureLevel gauge: it tracks
// whether *this worker's* observed hint stream has seen no hints yet
// (Deterministic), has seen hints with no sequence gap (Pressured), or
// has detected lost hints and not yet recovered (Defensive).
type PressureState uint32

const (
	PressureDeterministic PressureState = iota
	PressurePressured
	PressureDefensive
)

func (s PressureState) String() string {
	switch s {
	case PressureDeterministic:
		return "deterministic"
	case PressurePressured:
		return "pressured"
	case PressureDefensive:
		return "defensive"
	default:
		return "unknown"
	}
}

// pressureTracker is single-writer bookkeeping owned by the *Worker*
// that holds it (the same goroutine-handle-not-thread-local reasoning
// as [criticalSection]): only the owning Checkpoint/DrainHints caller
// ever touches it, so unlike [Accessor] it needs no atomics. It never
// writes to the SCB directly; [Worker.Checkpoint] and
// [Worker.AcknowledgeYield] read its state to decide what to do with
// the SCB.
type pressureTracker struct {
	state       PressureState
	seqValid    bool
	lastSeq     uint64
	contiguous  uint32
	recoveryLog recoveryLogLimiter
}

func (p *pressureTracker) reset() {
	*p = pressureTracker{}
}

// observeSeq feeds a freshly read preempt_seq into the tracker. A gap
// greater than one between two consecutive *changed* observations
// means a hint was dropped between reads — the tracker escalates to
// Defensive. [defensiveRecoveryObservations] consecutive
// gap-of-exactly-one observations recover it to Pressured; recovery
// never jumps straight back to Deterministic — once pressure has been
// observed, the worker stays Pressured rather than Deterministic for
// the remainder of its lifetime.
func (p *pressureTracker) observeSeq(seq uint64, stats *Stats, logger Logger, workerID uint32) {
	if !p.seqValid {
		p.lastSeq = seq
		p.seqValid = true
		return
	}
	if seq == p.lastSeq {
		return
	}
	gap := seq - p.lastSeq
	p.lastSeq = seq

	if gap > 1 {
		p.enterDefensive(stats, logger, workerID)
		return
	}

	switch p.state {
	case PressureDeterministic:
		p.state = PressurePressured
	case PressureDefensive:
		p.contiguous++
		if p.contiguous >= defensiveRecoveryObservations {
			p.recoverToPressured(logger, workerID)
		}
	}
}

// observeOverflow reports that a [HintRing] drain detected lost
// records (the SPSC ring wrapped before being drained). This is an
// independent Defensive trigger from the preempt_seq gap check — a
// worker whose preempt_seq never shows a gap still escalates from the
// ring's own overflow signal, reported through [Worker.DrainHints].
func (p *pressureTracker) observeOverflow(stats *Stats, logger Logger, workerID uint32) {
	p.enterDefensive(stats, logger, workerID)
}

func (p *pressureTracker) enterDefensive(stats *Stats, logger Logger, workerID uint32) {
	wasDefensive := p.state == PressureDefensive
	p.state = PressureDefensive
	p.contiguous = 0
	if !wasDefensive {
		stats.defensiveEntries.Add(1)
		logger.Log(LogEntry{Level: LevelWarn, Category: "pressure", WorkerID: workerID, Message: "entering defensive mode"})
	}
}

func (p *pressureTracker) recoverToPressured(logger Logger, workerID uint32) {
	p.state = PressurePressured
	p.contiguous = 0
	if p.recoveryLog.allow() {
		logger.Log(LogEntry{Level: LevelInfo, Category: "pressure", WorkerID: workerID, Message: "recovered from defensive mode"})
	}
}

// PressureState returns the worker's current runtime pressure state.
func (w *Worker) PressureState() PressureState {
	if w == nil {
		return PressureDeterministic
	}
	return w.pressure.state
}

// DrainHints drains every pending record out of the shared [HintRing],
// counting in hints_observed those whose TargetTID is zero or this
// worker's id (the rest are consumed and dropped), and feeding overflow
// detection into the pressure tracker. Draining is advisory, not required for correctness: callers
// that never call this still get correct checkpoint/yield behavior
// from preempt_seq alone; DrainHints only sharpens pressure-state
// transitions and the hints_observed counter.
func (w *Worker) DrainHints(ring *HintRing) {
	if w == nil || ring == nil {
		return
	}
	overflowed := ring.Drain(func(rec HintRecord) {
		if rec.TargetTID != 0 && rec.TargetTID != w.id {
			return
		}
		w.stats.hintsObserved.Add(1)
	})
	if overflowed {
		w.pressure.observeOverflow(w.stats, w.registry.logger, w.id)
	}
}
