package database

import (
	"context"
	"testing"
	"time"

	"balneario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncQueueLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType: "upsert",
		GroupID:  1,
		Payload:  `{"id":1}`,
		Status:   "pending",
	}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	require.NotZero(t, task.ID)

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "upsert", pending[0].TaskType)

	// a retry scheduled in the future is not picked up yet
	later := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "sheets unavailable", &later))
	pending, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 0)

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "failed", "gave up", nil))
	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].RetryCount)
	assert.NotNil(t, failed[0].ProcessedAt)
}

func TestSyncQueueCompleted(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "payment", GroupID: 3, Payload: `{}`, Status: "pending"}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "completed", "", nil))

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 0)
}
