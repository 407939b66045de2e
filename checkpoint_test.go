package morpheus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, opts ...WorkerOption) (*Registry, *Worker) {
	t.Helper()
	resetStatsForTest()
	reg := NewRegistry(NewStubMapping())
	w, err := reg.RegisterWorker(1, true, t, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg, w
}

// T3: with preempt_seq == last_ack_seq, checkpoint() returns false and
// mutates nothing observable.
func TestCheckpointFalseWhenSeqMatchesAck(t *testing.T) {
	_, w := newTestWorker(t)
	require.False(t, w.Checkpoint())
	ack := w.acc.readAck()
	require.False(t, w.Checkpoint())
	require.Equal(t, ack, w.acc.readAck(), "checkpoint must not mutate last_ack_seq")
}

// T4: with preempt_seq = last_ack_seq + 1, checkpoint() returns true;
// acknowledge_yield() then makes a second checkpoint() return false.
func TestCheckpointTrueThenAcknowledge(t *testing.T) {
	_, w := newTestWorker(t)
	w.acc.scb.PreemptSeq.Store(w.acc.readAck() + 1)

	require.True(t, w.Checkpoint())
	require.True(t, w.AcknowledgeYield())
	require.False(t, w.Checkpoint())
}

// T5: for any sequence of hints advancing preempt_seq by >= 1,
// acknowledge_yield() resets the condition regardless of gap size.
func TestAcknowledgeYieldResetsRegardlessOfGapSize(t *testing.T) {
	for _, gap := range []uint64{1, 2, 7, 1000} {
		t.Run("", func(t *testing.T) {
			_, w := newTestWorker(t)
			w.acc.scb.PreemptSeq.Store(w.acc.readAck() + gap)
			require.True(t, w.Checkpoint())
			require.True(t, w.AcknowledgeYield())
			require.False(t, w.Checkpoint())
		})
	}
}

func TestAcknowledgeYieldFalseWhenNothingOutstanding(t *testing.T) {
	_, w := newTestWorker(t)
	require.False(t, w.AcknowledgeYield())
}

func TestYieldRequestedDoesNotAcknowledge(t *testing.T) {
	_, w := newTestWorker(t)
	w.acc.scb.PreemptSeq.Store(w.acc.readAck() + 1)
	require.True(t, w.YieldRequested())
	require.True(t, w.YieldRequested(), "YieldRequested must not consume the hint")
	require.True(t, w.Checkpoint())
}

type fakeScheduler struct {
	yields int
}

func (f *fakeScheduler) Yield(ctx context.Context) { f.yields++ }

func TestAsyncCheckpointSuspendsOnlyWhenYieldRequired(t *testing.T) {
	sched := &fakeScheduler{}
	_, w := newTestWorker(t, WithScheduler(sched))

	require.False(t, w.AsyncCheckpoint(context.Background()))
	require.Equal(t, 0, sched.yields)

	w.acc.scb.PreemptSeq.Store(w.acc.readAck() + 1)
	require.True(t, w.AsyncCheckpoint(context.Background()))
	require.Equal(t, 1, sched.yields)
	require.False(t, w.Checkpoint())
}

func TestAsyncCheckpointWithoutSchedulerDegradesSynchronously(t *testing.T) {
	_, w := newTestWorker(t)
	w.acc.scb.PreemptSeq.Store(w.acc.readAck() + 1)
	require.True(t, w.AsyncCheckpoint(context.Background()))
	require.False(t, w.Checkpoint())
}

func TestForceYieldAlwaysSuspends(t *testing.T) {
	sched := &fakeScheduler{}
	_, w := newTestWorker(t, WithScheduler(sched))

	w.ForceYield(context.Background())
	require.Equal(t, 1, sched.yields)
	reason, ok := w.LastYieldReason()
	require.True(t, ok)
	require.Equal(t, YieldCheckpoint, reason)
}

// --- End-to-end scenarios ---

// Scenario 1.
func TestScenario1NoHintOutstanding(t *testing.T) {
	_, w := newTestWorker(t)
	w.acc.scb.PreemptSeq.Store(0)
	w.acc.storeAck(0)
	require.False(t, w.Checkpoint())
	require.False(t, w.AcknowledgeYield())
}

// Scenario 2.
func TestScenario2HintThenAck(t *testing.T) {
	_, w := newTestWorker(t)
	w.acc.scb.PreemptSeq.Store(1)
	require.True(t, w.Checkpoint())
	require.True(t, w.AcknowledgeYield())
	require.False(t, w.Checkpoint())
}

// Scenario 3.
func TestScenario3CriticalSectionGatesCheckpoint(t *testing.T) {
	_, w := newTestWorker(t)
	w.EnterCriticalSection()
	w.acc.scb.PreemptSeq.Store(2)
	require.False(t, w.Checkpoint())
	w.ExitCriticalSection()
	require.True(t, w.Checkpoint())
}

// Scenario 6.
func TestScenario6UnregisteredThreadIsNeutral(t *testing.T) {
	var w *Worker
	require.False(t, w.Checkpoint())
	_, ok := w.PressureLevel()
	require.False(t, ok)

	ran := false
	w.Critical(func() { ran = true })
	require.True(t, ran, "Critical on a nil worker must still run fn")
}

// T13: not-bound safety across all query operations.
func TestNotBoundOperationsReturnNeutralValues(t *testing.T) {
	var w *Worker
	require.False(t, w.Checkpoint())
	require.False(t, w.YieldRequested())
	require.False(t, w.AcknowledgeYield())
	require.False(t, w.AsyncCheckpoint(context.Background()))
	w.ForceYield(context.Background()) // must not panic
	w.SetPriority(5)                   // must not panic

	if _, ok := w.PressureLevel(); ok {
		t.Fatal("expected absent pressure on unbound worker")
	}
	if _, ok := w.BudgetRemainingNs(); ok {
		t.Fatal("expected absent budget on unbound worker")
	}
	if _, ok := w.Priority(); ok {
		t.Fatal("expected absent priority on unbound worker")
	}
	if _, ok := w.LastYieldReason(); ok {
		t.Fatal("expected absent yield reason on unbound worker")
	}
	require.Equal(t, PressureDeterministic, w.PressureState())
}
