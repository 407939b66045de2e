package morpheus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClampBoundsValue(t *testing.T) {
	require.Equal(t, 0, clamp(-5, 0, 100))
	require.Equal(t, 100, clamp(500, 0, 100))
	require.Equal(t, 50, clamp(50, 0, 100))
}

func TestClampUsedByIntervalForOutOfRangePressure(t *testing.T) {
	pacer := NewAdaptiveCheckpointer(nil, 10, 1000)
	require.Equal(t, pacer.Interval(100), pacer.Interval(1000))
}
