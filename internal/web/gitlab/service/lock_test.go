package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMemoryRunLockHolder verifies a rejected acquisition names the current
// holder and that release frees the agent for the next run.
func TestMemoryRunLockHolder(t *testing.T) {
	lock := NewMemoryRunLock()
	ctx := context.Background()

	acquired, holder, err := lock.TryAcquire(ctx, "agent-1")
	require.NoError(t, err)
	require.True(t, acquired)
	require.Empty(t, holder)

	acquired, holder, err = lock.TryAcquire(ctx, "agent-1")
	require.NoError(t, err)
	require.False(t, acquired)
	require.NotEmpty(t, holder)

	// other agents are independent
	acquired, _, err = lock.TryAcquire(ctx, "agent-2")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lock.Release(ctx, "agent-1"))
	acquired, _, err = lock.TryAcquire(ctx, "agent-1")
	require.NoError(t, err)
	require.True(t, acquired)
}
