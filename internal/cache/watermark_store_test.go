package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWatermarkStore(t *testing.T) {
	store := NewMemoryWatermarkStore()
	ctx := context.Background()

	mark, err := store.GetLastSeen(ctx, "v1", "r1", "a1")
	require.NoError(t, err)
	assert.Empty(t, mark)

	require.NoError(t, store.SetLastSeen(ctx, "v1", "r1", "a1", "2025-06-01 09:00:00"))

	mark, err = store.GetLastSeen(ctx, "v1", "r1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 09:00:00", mark)

	// Watermarks are per viewer.
	mark, err = store.GetLastSeen(ctx, "v2", "r1", "a1")
	require.NoError(t, err)
	assert.Empty(t, mark)

	// And per thread.
	mark, err = store.GetLastSeen(ctx, "v1", "r1", "a2")
	require.NoError(t, err)
	assert.Empty(t, mark)
}
