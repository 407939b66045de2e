package morpheus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoOpLoggerDiscardsEverything(t *testing.T) {
	l := NewNoOpLogger()
	require.False(t, l.IsEnabled(LevelError))
	require.NotPanics(t, func() {
		l.Log(LogEntry{Level: LevelError, Category: "test", Message: "should be discarded"})
	})
}

func TestRegistryDefaultsToNoOpLogger(t *testing.T) {
	resetStatsForTest()
	reg := NewRegistry(NewStubMapping())
	defer reg.Close()

	require.Equal(t, NewNoOpLogger(), reg.logger)
	_, err := reg.RegisterWorker(1, true, "owner-a")
	require.NoError(t, err)
}

type recordingLogger struct {
	entries []LogEntry
}

func (r *recordingLogger) Log(entry LogEntry) { r.entries = append(r.entries, entry) }

func (r *recordingLogger) IsEnabled(LogLevel) bool { return true }

func TestRegistryLogsRegistrationAndLifecycleEvents(t *testing.T) {
	resetStatsForTest()
	logger := &recordingLogger{}
	reg := NewRegistry(NewStubMapping(), WithLogger(logger))
	defer reg.Close()

	w, err := reg.RegisterWorker(1, true, "owner-a")
	require.NoError(t, err)
	w.Quiesce()
	w.Deregister()

	var categories []string
	for _, e := range logger.entries {
		categories = append(categories, e.Category)
	}
	require.Contains(t, categories, "registry")
}

func TestPressureLogsOnDefensiveEntry(t *testing.T) {
	resetStatsForTest()
	logger := &recordingLogger{}
	reg := NewRegistry(NewStubMapping(), WithLogger(logger))
	defer reg.Close()

	w, err := reg.RegisterWorker(1, true, "owner-a")
	require.NoError(t, err)

	w.acc.scb.PreemptSeq.Store(1)
	w.Checkpoint()
	w.acc.scb.PreemptSeq.Store(10)
	w.Checkpoint()

	var sawDefensive bool
	for _, e := range logger.entries {
		if e.Category == "pressure" {
			sawDefensive = true
		}
	}
	require.True(t, sawDefensive)
}
