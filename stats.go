package morpheus

import "sync/atomic"

// Stats holds process-wide counters, atomically incremented from any
// goroutine. It is initialized on first [Registry.RegisterWorker] call and
// lives for the lifetime of the process, addressed as a package-level
// singleton.
type Stats struct {
	hintsObserved    atomic.Uint64
	yieldsPerformed  atomic.Uint64
	criticalEntered  atomic.Uint64
	defensiveEntries atomic.Uint64
	acks             atomic.Uint64
}

// StatsSnapshot is a point-in-time, read-only copy of [Stats].
type StatsSnapshot struct {
	HintsObserved    uint64
	YieldsPerformed  uint64
	CriticalEntered  uint64
	DefensiveEntries uint64
	Acks             uint64
}

var globalStats struct {
	initialized atomic.Bool
	s           Stats
}

// ensureStats lazily initializes the process-wide Stats singleton.
func ensureStats() *Stats {
	globalStats.initialized.Store(true)
	return &globalStats.s
}

// GetStats returns a snapshot of the process-wide counters, or
// (StatsSnapshot{}, false) if no worker has ever registered in this
// process.
func GetStats() (StatsSnapshot, bool) {
	if !globalStats.initialized.Load() {
		return StatsSnapshot{}, false
	}
	s := &globalStats.s
	return StatsSnapshot{
		HintsObserved:    s.hintsObserved.Load(),
		YieldsPerformed:  s.yieldsPerformed.Load(),
		CriticalEntered:  s.criticalEntered.Load(),
		DefensiveEntries: s.defensiveEntries.Load(),
		Acks:             s.acks.Load(),
	}, true
}

// resetStatsForTest clears the singleton between test cases. Test-only.
func resetStatsForTest() {
	globalStats.initialized.Store(false)
	globalStats.s.hintsObserved.Store(0)
	globalStats.s.yieldsPerformed.Store(0)
	globalStats.s.criticalEntered.Store(0)
	globalStats.s.defensiveEntries.Store(0)
	globalStats.s.acks.Store(0)
}
