package morpheus

// PressureSource is anything that can report the kernel-observed
// pressure gauge for a worker. [*Worker] satisfies this (its
// [Worker.PressureLevel] method), which lets an [AdaptiveCheckpointer]
// be built directly over a registered worker.
type PressureSource interface {
	PressureLevel() (uint32, bool)
}

var _ PressureSource = (*Worker)(nil)

// AdaptiveCheckpointer is a pressure-adaptive pacer: it advises a
// worker loop when to *invoke* the checkpoint at all, rather
// than gating the checkpoint's own return value. Given current
// pressure p in [0,100], the recommended interval between invocations
// is
//
//	interval = max_interval - (max_interval-min_interval) * p / 100
//
// so the worker checks more often as pressure rises and falls back to
// max_interval when pressure is zero. This is pure arithmetic; the
// only SCB access it ever performs is reading pressure through the
// bound [PressureSource].
type AdaptiveCheckpointer struct {
	src         PressureSource
	minInterval int64
	maxInterval int64

	started   bool
	lastCheck int64
}

// NewAdaptiveCheckpointer builds a pacer bound to src, recommending an
// invocation interval between minInterval and maxInterval iteration
// counts (inclusive). If minInterval > maxInterval the two are swapped.
func NewAdaptiveCheckpointer(src PressureSource, minInterval, maxInterval int64) *AdaptiveCheckpointer {
	if minInterval > maxInterval {
		minInterval, maxInterval = maxInterval, minInterval
	}
	return &AdaptiveCheckpointer{src: src, minInterval: minInterval, maxInterval: maxInterval}
}

// Interval returns the recommended spacing, in iteration counts, for
// the given pressure value. Pressure above 100 is clamped.
func (a *AdaptiveCheckpointer) Interval(pressure uint32) int64 {
	pressure = clamp(pressure, 0, 100)
	span := a.maxInterval - a.minInterval
	return a.maxInterval - span*int64(pressure)/100
}

// ShouldCheck reports whether iteration i is due for a checkpoint
// invocation, given the pressure currently reported by the bound
// [PressureSource] (treated as zero if the source is absent). It
// updates the internal cursor to i whenever it returns true. The very
// first call always returns true, priming the cursor.
func (a *AdaptiveCheckpointer) ShouldCheck(i int64) bool {
	pressure := uint32(0)
	if a.src != nil {
		if p, ok := a.src.PressureLevel(); ok {
			pressure = p
		}
	}
	if !a.started {
		a.started = true
		a.lastCheck = i
		return true
	}
	if i-a.lastCheck >= a.Interval(pressure) {
		a.lastCheck = i
		return true
	}
	return false
}

// Reset clears the pacer's cursor, as if it had never been invoked.
func (a *AdaptiveCheckpointer) Reset() {
	a.started = false
	a.lastCheck = 0
}
