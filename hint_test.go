package morpheus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHintRingPanicsOnNonPowerOfTwoCapacity(t *testing.T) {
	require.Panics(t, func() { NewHintRing(3) })
	require.Panics(t, func() { NewHintRing(0) })
	require.NotPanics(t, func() { NewHintRing(8) })
}

func TestHintRingDrainOrderAndCount(t *testing.T) {
	ring := NewHintRing(4)
	ring.Push(HintRecord{Seq: 1})
	ring.Push(HintRecord{Seq: 2})
	ring.Push(HintRecord{Seq: 3})

	var got []uint64
	overflowed := ring.Drain(func(rec HintRecord) { got = append(got, rec.Seq) })
	require.False(t, overflowed)
	require.Equal(t, []uint64{1, 2, 3}, got)

	// A second drain with nothing new produces no callbacks.
	got = nil
	overflowed = ring.Drain(func(rec HintRecord) { got = append(got, rec.Seq) })
	require.False(t, overflowed)
	require.Empty(t, got)
}

func TestHintRingOverflowWhenProducerLapsConsumer(t *testing.T) {
	ring := NewHintRing(4)
	for i := uint64(0); i < 9; i++ {
		ring.Push(HintRecord{Seq: i})
	}
	var got []uint64
	overflowed := ring.Drain(func(rec HintRecord) { got = append(got, rec.Seq) })
	require.True(t, overflowed)
	require.Len(t, got, 4)
	require.Equal(t, uint64(8), got[len(got)-1])
}

func TestHintRingCapacity(t *testing.T) {
	ring := NewHintRing(16)
	require.Equal(t, 16, ring.Capacity())
}
