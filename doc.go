// Package morpheus implements the user-space half of a kernel-guided
// cooperative scheduling runtime.
//
// # Architecture
//
// A privileged kernel-side component writes per-worker state into a
// [SCB] (Shared Control Block) — one 128-byte slot per worker, shared
// via [Mapping] — and pushes advisory [HintRecord] values into a lossy
// ring buffer. Workers call [Worker.Checkpoint] between units of work;
// it is a few atomic loads and a compare, and returns true when a hint
// is outstanding or the worker is in Defensive mode, and never while
// the worker is inside a [Worker.Critical] section.
// [Worker.AsyncCheckpoint] additionally cedes control to a host task
// scheduler when a yield is required.
//
// # Degradation
//
// When no kernel mapping is available (tests, local development), a
// [NewStubMapping] mapping backs every [Worker]: the runtime still
// links and runs, and since nothing writes the zeroed slots,
// [Worker.Checkpoint] returns false. A worker registered over the stub
// still reports its zeroed fields as present — [Worker.PressureLevel]
// returns (0, true) — and [Worker.Critical] still counts in the stub
// slot. Only a nil, never-registered *Worker returns absent values and
// runs [Worker.Critical] as a plain call of fn.
//
// # Host-scheduler integration
//
// The [policy] sub-package wraps an arbitrary host task loop so that a
// checkpoint is polled before each iteration without assuming anything
// about that loop's internals beyond a single-iteration entry point.
//
// # Thread safety
//
// Every kernel-visible field is accessed through [sync/atomic] typed
// atomics. A [Worker] handle is owned by the goroutine that registered
// it for the duration of its lifecycle; re-binding a slot to a
// different caller is rejected.
package morpheus
