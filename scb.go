package morpheus

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Layout constants, verified against the field table below via the
// init() assertion at the bottom of this file.
const (
	// scbSize is the wire size of one SCB slot: two cache lines.
	scbSize = 128

	// hintRecordSize is the wire size of one HintRecord.
	hintRecordSize = 24

	// globalPressureSize is the wire size of one GlobalPressure record.
	globalPressureSize = 16
)

// Re-exported wire constants.
const (
	// MaxWorkers is the number of SCB slots in scb_map.
	MaxWorkers = 1024
	// DefaultSliceNS is the default time-slice budget, nanoseconds.
	DefaultSliceNS = 5_000_000
	// GracePeriodNS is the grace period before kernel escalation, nanoseconds.
	GracePeriodNS = 100_000_000
	// RingbufSize is the byte capacity of hint_ringbuf.
	RingbufSize = 262_144
)

// WorkerState is one of {Init, Registered, Running, Quiescing, Dead}.
// Transitions only ever advance; there are no reverse transitions.
type WorkerState uint32

const (
	StateInit WorkerState = iota
	StateRegistered
	StateRunning
	StateQuiescing
	StateDead
)

func (s WorkerState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateRegistered:
		return "Registered"
	case StateRunning:
		return "Running"
	case StateQuiescing:
		return "Quiescing"
	case StateDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// YieldReason explains the most recent yield the runtime performed.
type YieldReason uint32

const (
	YieldNone YieldReason = iota
	YieldHint
	YieldCheckpoint
	YieldBudget
	YieldDefensive
	YieldEscalationRecovery
)

func (r YieldReason) String() string {
	switch r {
	case YieldNone:
		return "None"
	case YieldHint:
		return "Hint"
	case YieldCheckpoint:
		return "Checkpoint"
	case YieldBudget:
		return "Budget"
	case YieldDefensive:
		return "Defensive"
	case YieldEscalationRecovery:
		return "EscalationRecovery"
	default:
		return "Unknown"
	}
}

// EscalationPolicy describes how the kernel may escalate against an
// unresponsive worker.
type EscalationPolicy uint32

const (
	EscalationNone EscalationPolicy = iota
	EscalationThreadKick
	EscalationCgroupThrottle
	EscalationHybrid
)

// HintReason is the advisory reason code carried by a HintRecord.
type HintReason uint32

const (
	HintBudget    HintReason = 1
	HintPressure  HintReason = 2
	HintImbalance HintReason = 3
	HintDeadline  HintReason = 4
)

// SCB is the Shared Control Block: one per worker, exactly 128 bytes,
// two cache lines, aligned to 8. The layout is normative — identical
// to the kernel's C definition and to peer runtimes in other
// languages. Every field is accessed exclusively through sync/atomic
// typed atomics; plain reads/writes on these fields are forbidden.
//
// Cache line 1 (bytes 0-63) is written by the kernel, read by the
// runtime. Cache line 2 (bytes 64-127) is written by the runtime,
// read by the kernel.
type SCB struct { // betteralign:ignore — field order is the wire layout, not for the compiler to choose
	// --- cache line 1: kernel -> runtime ---

	PreemptSeq          atomic.Uint64 // offset 0
	BudgetRemainingNs    atomic.Uint64 // offset 8
	KernelPressureLevel  atomic.Uint32 // offset 16
	RawWorkerState       atomic.Uint32 // offset 20
	_reservedKernel      [40]byte      // offset 24, zero-initialized

	// --- cache line 2: runtime -> kernel ---

	CriticalSectionCount atomic.Uint32 // offset 64
	RawEscapable         atomic.Uint32 // offset 68
	LastAckSeq           atomic.Uint64 // offset 72
	RuntimePriority      atomic.Uint32 // offset 80
	RawLastYieldReason   atomic.Uint32 // offset 84
	_reservedRuntime1    [8]byte       // offset 88
	RawEscalationPolicy  atomic.Uint32 // offset 96
	_pad                 [4]byte       // offset 100
	_reservedRuntime2    [24]byte      // offset 104
}

// HintRecord is one entry of the lossy SPSC ring buffer the kernel
// pushes into. 24 bytes, aligned 8.
type HintRecord struct {
	Seq        uint64
	Reason     uint32
	TargetTID  uint32
	DeadlineNs uint64
}

// GlobalPressure mirrors global_pressure_map: a single, read-only,
// kernel-produced record summarising system-wide contention.
type GlobalPressure struct {
	CPUPressurePct uint32
	IOPressurePct  uint32
	MemPressurePct uint32
	RunqueueDepth  uint32
}

func init() {
	assertSize("SCB", unsafe.Sizeof(SCB{}), scbSize)
	assertOffset("SCB.PreemptSeq", unsafe.Offsetof(SCB{}.PreemptSeq), 0)
	assertOffset("SCB.BudgetRemainingNs", unsafe.Offsetof(SCB{}.BudgetRemainingNs), 8)
	assertOffset("SCB.KernelPressureLevel", unsafe.Offsetof(SCB{}.KernelPressureLevel), 16)
	assertOffset("SCB.RawWorkerState", unsafe.Offsetof(SCB{}.RawWorkerState), 20)
	assertOffset("SCB.CriticalSectionCount", unsafe.Offsetof(SCB{}.CriticalSectionCount), 64)
	assertOffset("SCB.RawEscapable", unsafe.Offsetof(SCB{}.RawEscapable), 68)
	assertOffset("SCB.LastAckSeq", unsafe.Offsetof(SCB{}.LastAckSeq), 72)
	assertOffset("SCB.RuntimePriority", unsafe.Offsetof(SCB{}.RuntimePriority), 80)
	assertOffset("SCB.RawLastYieldReason", unsafe.Offsetof(SCB{}.RawLastYieldReason), 84)
	assertOffset("SCB.RawEscalationPolicy", unsafe.Offsetof(SCB{}.RawEscalationPolicy), 96)

	assertSize("HintRecord", unsafe.Sizeof(HintRecord{}), hintRecordSize)
	assertOffset("HintRecord.Seq", unsafe.Offsetof(HintRecord{}.Seq), 0)
	assertOffset("HintRecord.Reason", unsafe.Offsetof(HintRecord{}.Reason), 8)
	assertOffset("HintRecord.TargetTID", unsafe.Offsetof(HintRecord{}.TargetTID), 12)
	assertOffset("HintRecord.DeadlineNs", unsafe.Offsetof(HintRecord{}.DeadlineNs), 16)

	assertSize("GlobalPressure", unsafe.Sizeof(GlobalPressure{}), globalPressureSize)
}

func assertSize(name string, got, want uintptr) {
	if got != want {
		panic(fmt.Sprintf("morpheus: %s size is %d, expected %d", name, got, want))
	}
}

func assertOffset(name string, got, want uintptr) {
	if got != want {
		panic(fmt.Sprintf("morpheus: %s offset is %d, expected %d", name, got, want))
	}
}
