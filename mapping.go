package morpheus

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mapping fronts the shared-memory surface: an array of SCB slots,
// the hint ring buffer, and the global pressure record. Two
// implementations are provided: [NewStubMapping] for development and
// tests, and [NewMmapBacking] for a real kernel-shared region.
type Mapping interface {
	// Slot returns the SCB for workerID. workerID must be < MaxWorkers.
	Slot(workerID uint32) *SCB
	// GlobalPressure returns the shared, read-only global pressure view.
	GlobalPressure() *GlobalPressure
	// HintRing returns the SPSC ring buffer of hint records.
	HintRing() *HintRing
	// Close releases any OS resources backing the mapping.
	Close() error
}

// stubMapping is an in-process, zero-initialized Mapping. It never
// touches the filesystem; every slot starts in StateInit with every
// field zero, so a process with no kernel-side producer still links
// and returns neutral values.
type stubMapping struct {
	slots []SCB
	gp    GlobalPressure
	ring  *HintRing
}

// NewStubMapping returns a Mapping backed by plain Go memory. Suitable
// for tests and for any process that has no kernel-side producer.
func NewStubMapping() Mapping {
	m := &stubMapping{
		slots: make([]SCB, MaxWorkers),
		ring:  NewHintRing(defaultRingCapacity),
	}
	return m
}

func (m *stubMapping) Slot(workerID uint32) *SCB {
	return &m.slots[workerID]
}

func (m *stubMapping) GlobalPressure() *GlobalPressure { return &m.gp }

func (m *stubMapping) HintRing() *HintRing { return m.ring }

func (m *stubMapping) Close() error { return nil }

// defaultRingCapacity is the entry count for RingbufSize bytes of
// HintRecord, rounded down to a power of two (HintRing requires a
// power-of-two capacity for its mask-based wraparound).
const defaultRingCapacity = 8192 // 8192*24B = 196608B, comfortably under RingbufSize

// mmapBacking maps scb_map onto a real, byte-exact shared-memory
// region via mmap(2), so a kernel-side writer (or a peer runtime in
// another language) observes exactly the bytes this process produces
// and vice versa. It opens or creates a backing file, truncates it to
// size, maps it MAP_SHARED, and reinterprets the byte slice as a slice
// of the wire struct.
type mmapBacking struct {
	file *os.File
	data []byte

	slots []SCB
	gp    *GlobalPressure
	ring  *HintRing
}

// mmapLayoutSize is the total byte size of the region this process maps:
// MaxWorkers SCB slots followed by one GlobalPressure record. The hint
// ring buffer is intentionally NOT part of this mapping — it is
// produced by the kernel into hint_ringbuf, a separate named map; this
// runtime only ever reads it via HintRing.Drain, never through this
// region.
const mmapLayoutSize = MaxWorkers*scbSize + globalPressureSize

// NewMmapBacking opens (creating if necessary) the file at path and
// mmaps it MAP_SHARED for scb_map + global_pressure_map. The hint ring
// buffer remains an in-process [HintRing]; a real deployment feeds it
// from hint_ringbuf via a small reader goroutine that calls
// [HintRing].Push as records arrive (left to the caller: the wire
// format of hint_ringbuf's framing is kernel-specific and outside this
// repository's scope).
func NewMmapBacking(path string) (Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("morpheus: open mapping file: %w", err)
	}

	if err := f.Truncate(mmapLayoutSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("morpheus: truncate mapping file: %w", err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, mmapLayoutSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("morpheus: mmap: %w", err)
	}

	b := &mmapBacking{
		file: f,
		data: data,
		ring: NewHintRing(defaultRingCapacity),
	}
	b.slots = unsafe.Slice((*SCB)(unsafe.Pointer(&data[0])), MaxWorkers)
	b.gp = (*GlobalPressure)(unsafe.Pointer(&data[MaxWorkers*scbSize]))
	return b, nil
}

func (m *mmapBacking) Slot(workerID uint32) *SCB { return &m.slots[workerID] }

func (m *mmapBacking) GlobalPressure() *GlobalPressure { return m.gp }

func (m *mmapBacking) HintRing() *HintRing { return m.ring }

func (m *mmapBacking) Close() error {
	if err := unix.Munmap(m.data); err != nil {
		m.file.Close()
		return fmt.Errorf("morpheus: munmap: %w", err)
	}
	return m.file.Close()
}
