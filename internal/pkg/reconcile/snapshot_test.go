package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/internal/pkg/testutil"
)

func TestRedisSnapshots(t *testing.T) {
	client := testutil.RedisClient(t, testutil.RedisDBReconcile)
	ctx := context.Background()
	store := NewRedisSnapshots(client, time.Minute)

	missing, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	in := Snapshot{RunID: "run-1", State: StatePolling, Message: StatePolling.Message(), Attempts: 3, StartedAt: now, UpdatedAt: now}
	require.NoError(t, store.Save(ctx, "sid", in))

	out, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in, *out)

	require.NoError(t, store.Delete(ctx, "sid"))
	out, err = store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, out)
}
