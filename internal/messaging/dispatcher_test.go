package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"imagegen-backend/internal/database"
	"imagegen-backend/internal/generation"
	"imagegen-backend/internal/messaging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func createDB(t *testing.T, create ...any) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())

	for _, c := range create {
		require.NoError(t, db.Create(c).Error)
	}

	return db
}

func TestDispatcherEnqueue(t *testing.T) {
	db := createDB(t)
	queue := messaging.NewInMemoryQueue()
	dispatcher := messaging.NewDispatcher(db, queue)

	userId := uuid.New()
	params := generation.Request{Prompt: "a lighthouse at dusk", Seed: 42, BatchSize: 1, NIter: 1}

	dispatcher.Enqueue(context.Background(), params, userId)

	var job database.GenerationJob
	require.NoError(t, db.First(&job).Error)
	assert.Equal(t, userId, job.UserId)
	assert.Equal(t, database.JobQueued, job.Status)
	assert.False(t, job.EnqueueTime.IsZero())

	var stored generation.Request
	require.NoError(t, json.Unmarshal(job.Params, &stored))
	assert.Equal(t, params, stored)

	select {
	case task := <-queue.Tasks():
		assert.Equal(t, messaging.Txt2ImgQueue, task.Type())

		var payload messaging.GenerationTaskPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		assert.Equal(t, job.Id, payload.JobId)
		assert.Equal(t, userId, payload.UserId)
		assert.Equal(t, params, payload.Params)
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for task")
	}
}

type failingPublisher struct{}

func (p *failingPublisher) PublishGenerationTask(ctx context.Context, payload messaging.GenerationTaskPayload) error {
	return errors.New("broker unavailable")
}

func (p *failingPublisher) Close() {}

func TestDispatcherSwallowsPublishFailure(t *testing.T) {
	db := createDB(t)
	dispatcher := messaging.NewDispatcher(db, &failingPublisher{})

	// Must not panic or surface anything; the job row is still recorded.
	dispatcher.Enqueue(context.Background(), generation.Request{Prompt: "x"}, uuid.New())

	var count int64
	require.NoError(t, db.Model(&database.GenerationJob{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
