package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsAtThreshold(t *testing.T) {
	b := New(2, 100*time.Millisecond)
	require.Equal(t, Closed, b.State())

	b.RecordFailure()
	require.Equal(t, Closed, b.State())
	require.False(t, b.IsOpen())

	b.RecordFailure()
	require.Equal(t, Open, b.State())
	require.True(t, b.IsOpen())
}

func TestBreaker_AdmitsProbeAfterRecoveryTimeout(t *testing.T) {
	now := time.Now()
	clock := &now
	b := New(2, 100*time.Millisecond).WithClock(func() time.Time { return *clock })

	b.RecordFailure()
	b.RecordFailure()
	require.True(t, b.IsOpen())

	*clock = now.Add(150 * time.Millisecond)
	require.False(t, b.IsOpen(), "recovery timeout elapsed: next call admitted as a probe")
	require.Equal(t, HalfOpen, b.State())
}

func TestBreaker_HalfOpenSuccessClosesCircuit(t *testing.T) {
	now := time.Now()
	clock := &now
	b := New(2, 100*time.Millisecond).WithClock(func() time.Time { return *clock })

	b.RecordFailure()
	b.RecordFailure()
	*clock = now.Add(150 * time.Millisecond)
	require.False(t, b.IsOpen())

	b.RecordSuccess()
	require.Equal(t, Closed, b.State())
	require.Equal(t, 0, b.FailureCount())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	clock := &now
	b := New(2, 100*time.Millisecond).WithClock(func() time.Time { return *clock })

	b.RecordFailure()
	b.RecordFailure()
	*clock = now.Add(150 * time.Millisecond)
	require.False(t, b.IsOpen())

	b.RecordFailure()
	require.Equal(t, Open, b.State())
	require.True(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(3, time.Second)
	b.RecordFailure()
	b.RecordFailure()
	require.Equal(t, 2, b.FailureCount())

	b.RecordSuccess()
	require.Equal(t, 0, b.FailureCount())
	require.Equal(t, Closed, b.State())
}
