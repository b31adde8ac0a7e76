package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffGrowsMonotonicallyAndCaps(t *testing.T) {
	b := NewBackoff(1000*time.Millisecond, 30000*time.Millisecond, 1.5)

	require.Equal(t, 1000*time.Millisecond, b.Next())
	require.Equal(t, 1500*time.Millisecond, b.Next())
	require.Equal(t, 2250*time.Millisecond, b.Next())

	prev := time.Duration(0)
	for i := 0; i < 50; i++ {
		d := b.Next()
		require.GreaterOrEqual(t, d, prev)
		require.LessOrEqual(t, d, 30000*time.Millisecond)
		prev = d
	}
	require.Equal(t, 30000*time.Millisecond, b.Current())
}

func TestBackoffResetReturnsToBase(t *testing.T) {
	b := NewBackoff(1000*time.Millisecond, 30000*time.Millisecond, 1.5)
	for i := 0; i < 10; i++ {
		b.Next()
	}
	b.Reset()
	require.Equal(t, 1000*time.Millisecond, b.Next())
}

func TestBackoffDefaultsForDegenerateInputs(t *testing.T) {
	b := NewBackoff(0, 0, 0)
	d := b.Next()
	require.Equal(t, DefaultBackoffBase, d)
	// Multiplier clamps to 1; the schedule never shrinks.
	require.Equal(t, d, b.Next())
}
