package morpheus

import "errors"

// Sentinel errors returned by [Registry.RegisterWorker]. Per the error-handling
// design, user-visible failure is confined to registration: every other
// operation degrades to a neutral value rather than erroring.
var (
	// ErrSlotInvalid is returned when worker_id is out of [MaxWorkers) at
	// registration time. Registration fails without allocating anything.
	ErrSlotInvalid = errors.New("morpheus: worker slot out of range")

	// ErrSlotBusy is returned when the requested slot is not currently
	// in state Init (it is already registered, running, quiescing, or
	// Dead after a deregistration).
	ErrSlotBusy = errors.New("morpheus: worker slot is busy")

	// ErrThreadAlreadyBound is returned by RegisterWorker when the owner
	// token passed to it is already bound to a slot in the same *Registry.
	// Re-binding is rejected rather than silently rebound.
	ErrThreadAlreadyBound = errors.New("morpheus: caller already bound to a worker slot")

	// ErrRegistryClosed is returned when RegisterWorker is called after
	// the owning Registry has been torn down.
	ErrRegistryClosed = errors.New("morpheus: registry is closed")
)
