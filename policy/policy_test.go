package policy

import (
	"context"
	"testing"

	"github.com/ankitkpandey1/morpheus"
	"github.com/stretchr/testify/require"
)

type fakeCheckpointer struct {
	calls int
}

func (f *fakeCheckpointer) Checkpoint() bool {
	f.calls++
	return false
}

func TestPolicyPollsCheckpointBeforeEachIteration(t *testing.T) {
	cp := &fakeCheckpointer{}
	iterations := 0
	inner := func(ctx context.Context) bool {
		iterations++
		return iterations < 3
	}

	p := Wrap(cp, inner)
	require.True(t, p.Iterate(context.Background()))
	require.True(t, p.Iterate(context.Background()))
	require.False(t, p.Iterate(context.Background()))

	require.Equal(t, 3, cp.calls)
	require.Equal(t, 3, iterations)
}

func TestPolicyRunDrivesUntilInnerReturnsFalse(t *testing.T) {
	cp := &fakeCheckpointer{}
	iterations := 0
	inner := func(ctx context.Context) bool {
		iterations++
		return iterations < 5
	}

	p := Wrap(cp, inner)
	p.Run(context.Background())

	require.Equal(t, 5, iterations)
	require.Equal(t, 5, cp.calls)
}

func TestPolicyRunStopsOnContextCancellation(t *testing.T) {
	cp := &fakeCheckpointer{}
	inner := func(ctx context.Context) bool { return true }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Wrap(cp, inner)
	p.Run(ctx)
	require.Equal(t, 0, cp.calls)
}

func TestPolicyWithPacerSkipsCheckpointsBetweenIntervals(t *testing.T) {
	cp := &fakeCheckpointer{}
	pacer := morpheus.NewAdaptiveCheckpointer(nil, 3, 3)
	iterations := 0
	inner := func(ctx context.Context) bool {
		iterations++
		return iterations < 10
	}

	p := Wrap(cp, inner, WithPacer(pacer))
	p.Run(context.Background())

	require.Equal(t, 10, iterations)
	// min==max==3: checkpoints happen on iteration 0, then every 3rd.
	require.Equal(t, 4, cp.calls)
}

func TestPolicyNilCheckpointerIsSafe(t *testing.T) {
	inner := func(ctx context.Context) bool { return false }
	p := Wrap(nil, inner)
	require.NotPanics(t, func() { p.Iterate(context.Background()) })
}

func TestPolicyNilInnerReturnsFalse(t *testing.T) {
	cp := &fakeCheckpointer{}
	p := Wrap(cp, nil)
	require.False(t, p.Iterate(context.Background()))
}

func TestLoopSchedulerYieldBlocksUntilSubmittedCallbackRuns(t *testing.T) {
	submitted := make(chan func(), 1)
	submit := func(fn func()) { submitted <- fn }
	sched := NewLoopScheduler(submit)

	done := make(chan struct{})
	go func() {
		sched.Yield(context.Background())
		close(done)
	}()

	fn := <-submitted
	fn()
	<-done
}

func TestLoopSchedulerYieldRespectsContextCancellation(t *testing.T) {
	sched := NewLoopScheduler(func(fn func()) { /* never invoked */ })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sched.Yield(ctx) // must return promptly, not block forever
}

func TestLoopSchedulerNilSubmitReturnsImmediately(t *testing.T) {
	sched := NewLoopScheduler(nil)
	sched.Yield(context.Background())
}

func TestNilLoopSchedulerIsSafe(t *testing.T) {
	var sched *LoopScheduler
	sched.Yield(context.Background())
}
