package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTracker_ConsumeOnSuccess(t *testing.T) {
	now := time.Now()
	tr := New(5, time.Minute).WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		require.True(t, tr.Consume(""))
	}
	require.Equal(t, 2, tr.Remaining(""))

	// Failing calls never reach Consume; remaining must be unaffected
	// regardless of how many failures occur upstream.
	require.Equal(t, 2, tr.Remaining(""))
}

func TestTracker_GlobalAndSessionScopes(t *testing.T) {
	now := time.Now()
	tr := New(2, time.Minute).WithClock(func() time.Time { return now })

	require.True(t, tr.Consume("s1"))
	require.True(t, tr.Consume("s1"))
	require.False(t, tr.Consume("s1"), "session window exhausted")

	// A different session has session room, but the global window (2 consumed already) is full.
	require.False(t, tr.Consume("s2"), "global window exhausted first")
}

func TestTracker_WindowExpiry(t *testing.T) {
	now := time.Now()
	clock := &now
	tr := New(1, time.Second).WithClock(func() time.Time { return *clock })

	require.True(t, tr.Consume(""))
	require.False(t, tr.Consume(""))

	*clock = now.Add(2 * time.Second)
	require.True(t, tr.Consume(""), "a call that would have been blocked succeeds after the window expires")
}

func TestTracker_IsAvailableNonMutating(t *testing.T) {
	now := time.Now()
	tr := New(1, time.Minute).WithClock(func() time.Time { return now })

	require.True(t, tr.IsAvailable(""))
	require.True(t, tr.IsAvailable(""), "IsAvailable must not consume capacity")
	require.True(t, tr.Consume(""))
	require.False(t, tr.IsAvailable(""))
}
