package runloop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoop_SerializesTasks checks that tasks observe each other's writes in order.
func TestLoop_SerializesTasks(t *testing.T) {
	t.Parallel()

	loop := New()
	defer loop.Stop()

	var values []int

	for i := 0; i < 100; i++ {
		i := i
		require.True(t, loop.Post(func() {
			values = append(values, i)
		}))
	}

	// Do runs after everything posted before it.
	require.NoError(t, loop.Do(context.Background(), func() {}))
	require.Len(t, values, 100)

	for i, v := range values {
		require.Equal(t, i, v)
	}
}

// TestLoop_DoWaitsForExecution verifies Do returns only after the task ran.
func TestLoop_DoWaitsForExecution(t *testing.T) {
	t.Parallel()

	loop := New()
	defer loop.Stop()

	ran := false
	require.NoError(t, loop.Do(context.Background(), func() { ran = true }))
	require.True(t, ran)
}

// TestLoop_StopRejectsNewWork ensures posting after Stop fails cleanly.
func TestLoop_StopRejectsNewWork(t *testing.T) {
	t.Parallel()

	loop := New()
	loop.Stop()

	require.False(t, loop.Post(func() {}))
	require.ErrorIs(t, loop.Do(context.Background(), func() {}), ErrStopped)

	// Stop is idempotent.
	loop.Stop()
}

// TestLoop_StopDrainsQueuedTasks checks tasks accepted before Stop still run.
func TestLoop_StopDrainsQueuedTasks(t *testing.T) {
	t.Parallel()

	loop := New()

	counter := 0
	for n := 0; n < 10; n++ {
		require.True(t, loop.Post(func() { counter++ }))
	}

	loop.Stop()
	require.Equal(t, 10, counter)
}
