package morpheus

import (
	"sync"
)

// Registry binds callers to worker slots and enforces the worker
// lifecycle: a slot must be Init before registration, becomes
// Registered with last_ack_seq primed to the current preempt_seq (no
// spurious first yield), and only ever advances
// Registered/Running -> Quiescing -> Dead.
//
// Go has no stable notion of "the calling OS thread" the way a
// goroutine can migrate across Ms between blocking points. This
// registry therefore asks the caller to supply an explicit, comparable
// owner token (any stable value identifying the logical worker: a
// *Worker wrapper the caller already holds elsewhere, a string, a
// pointer) in place of implicit thread-local binding, and rejects
// re-binding that token to a second slot.
type Registry struct {
	mapping Mapping
	logger  Logger

	mu     sync.Mutex
	owners map[any]uint32 // owner token -> bound slot
	busy   map[uint32]bool
	closed bool
}

// NewRegistry creates a Registry over mapping. Pass [NewStubMapping]
// for tests/local development, or [NewMmapBacking] against a live
// kernel-shared region.
func NewRegistry(mapping Mapping, opts ...RegistryOption) *Registry {
	cfg := resolveRegistryOptions(opts)
	return &Registry{
		mapping: mapping,
		logger:  cfg.logger,
		owners:  make(map[any]uint32),
		busy:    make(map[uint32]bool),
	}
}

// Worker is the handle returned by [Registry.RegisterWorker]. Every
// per-worker operation is a method on *Worker.
type Worker struct {
	id       uint32
	escapable bool
	owner    any

	registry *Registry
	acc      *Accessor
	stats    *Stats

	critical  criticalSection
	pressure  pressureTracker
	scheduler Scheduler
}

// RegisterWorker binds owner to worker slot id. owner must be a
// comparable value stable for the worker's lifetime;
// passing a distinct value per logical worker (e.g. a pointer the
// caller allocates for this purpose) is the common case.
func (r *Registry) RegisterWorker(id uint32, escapable bool, owner any, opts ...WorkerOption) (*Worker, error) {
	if id >= MaxWorkers {
		return nil, ErrSlotInvalid
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if _, bound := r.owners[owner]; bound {
		r.mu.Unlock()
		return nil, ErrThreadAlreadyBound
	}
	if r.busy[id] {
		r.mu.Unlock()
		return nil, ErrSlotBusy
	}
	r.busy[id] = true
	r.owners[owner] = id
	r.mu.Unlock()

	scb := r.mapping.Slot(id)
	acc := newAccessor(scb)

	// Slot must currently be Init; CAS guards against a racing caller
	// that slipped past the busy-map check (defense in depth — the
	// mutex above already serializes this path).
	if !scb.RawWorkerState.CompareAndSwap(uint32(StateInit), uint32(StateInit)) {
		// Not in Init: someone else holds it at the SCB level even
		// though our bookkeeping didn't know. Roll back and report busy.
		r.mu.Lock()
		delete(r.busy, id)
		delete(r.owners, owner)
		r.mu.Unlock()
		return nil, ErrSlotBusy
	}

	acc.storeEscapable(escapable)
	// Prime last_ack_seq to the current preempt_seq so registration
	// never produces a spurious first yield.
	acc.storeAck(acc.readPreemptSeq())
	acc.storeState(StateRegistered)

	w := &Worker{
		id:        id,
		escapable: escapable,
		owner:     owner,
		registry:  r,
		acc:       acc,
		stats:     ensureStats(),
	}
	w.pressure.reset()

	cfg := resolveWorkerOptions(opts)
	w.scheduler = cfg.scheduler
	if cfg.priority != nil {
		acc.storePriority(*cfg.priority)
	}
	if cfg.escalationPolicy != nil {
		acc.storeEscalationPolicy(*cfg.escalationPolicy)
	}

	r.logger.Log(LogEntry{Level: LevelInfo, Category: "registry", WorkerID: id, Message: "worker registered"})

	return w, nil
}

// WorkerID returns the bound worker slot, or (0, false) on a nil Worker.
func (w *Worker) WorkerID() (uint32, bool) {
	if w == nil {
		return 0, false
	}
	return w.id, true
}

// Escapable reports whether the kernel is permitted to kick this
// worker (escalation), or (false, false) on a nil Worker.
func (w *Worker) Escapable() (bool, bool) {
	if w == nil {
		return false, false
	}
	return w.escapable, true
}

// State returns the worker's current lifecycle state, or
// (StateInit, false) on a nil Worker.
func (w *Worker) State() (WorkerState, bool) {
	if w == nil {
		return StateInit, false
	}
	return w.acc.readState(), true
}

// Quiesce transitions Registered/Running -> Quiescing. It is a no-op
// (returns false) if the worker is not in one of those states.
func (w *Worker) Quiesce() bool {
	cur := w.acc.readState()
	if cur != StateRegistered && cur != StateRunning {
		return false
	}
	return w.acc.scb.RawWorkerState.CompareAndSwap(uint32(cur), uint32(StateQuiescing))
}

// Deregister transitions Quiescing -> Dead and releases the owner
// token, so that owner may register another slot. The slot itself stays
// Dead: any later RegisterWorker for it fails with ErrSlotBusy.
func (w *Worker) Deregister() bool {
	if !w.acc.scb.RawWorkerState.CompareAndSwap(uint32(StateQuiescing), uint32(StateDead)) {
		return false
	}
	r := w.registry
	r.mu.Lock()
	delete(r.busy, w.id)
	delete(r.owners, w.owner)
	r.mu.Unlock()
	r.logger.Log(LogEntry{Level: LevelInfo, Category: "registry", WorkerID: w.id, Message: "worker deregistered"})
	return true
}

// Close marks the registry closed, so later RegisterWorker calls fail
// with ErrRegistryClosed, and closes the underlying mapping. It does not
// quiesce or deregister workers already bound through this registry.
// Safe to call once the caller no longer needs any of those workers.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.mapping.Close()
}
