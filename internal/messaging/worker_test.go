package messaging_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"imagegen-backend/internal/database"
	"imagegen-backend/internal/generation"
	"imagegen-backend/internal/messaging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// runWorker processes the queue on a background goroutine and waits for the
// job to leave its queued state before shutting the worker down.
func runWorker(t *testing.T, db *gorm.DB, backendURL string, queue *messaging.InMemoryQueue, jobId uuid.UUID) {
	worker := messaging.NewWorker(db, generation.NewClient(backendURL), queue)

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run()
	}()

	require.Eventually(t, func() bool {
		var job database.GenerationJob
		if err := db.First(&job, "id = ?", jobId).Error; err != nil {
			return false
		}
		return job.Status == database.JobCompleted || job.Status == database.JobFailed
	}, 5*time.Second, 10*time.Millisecond)

	queue.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for worker to stop")
	}
}

func TestWorkerProcessesGenerationTask(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generation.Result{ //nolint:errcheck
			Images: []string{"aGVsbG8="},
			Info:   `{"seed": 42}`,
		})
	}))
	defer backend.Close()

	jobId, userId := uuid.New(), uuid.New()
	db := createDB(t, &database.GenerationJob{
		Id:          jobId,
		UserId:      userId,
		Params:      []byte(`{}`),
		Status:      database.JobQueued,
		EnqueueTime: time.Now(),
	})

	queue := messaging.NewInMemoryQueue()
	require.NoError(t, queue.PublishGenerationTask(context.Background(), messaging.GenerationTaskPayload{
		JobId:  jobId,
		UserId: userId,
		Params: generation.Request{Prompt: "a lighthouse", Seed: 42, Width: 512, Height: 512, BatchSize: 1, NIter: 1},
	}))

	runWorker(t, db, backend.URL, queue, jobId)

	var job database.GenerationJob
	require.NoError(t, db.First(&job, "id = ?", jobId).Error)
	assert.Equal(t, database.JobCompleted, job.Status)
	assert.True(t, job.CompletionTime.Valid)

	var image database.GeneratedImage
	require.NoError(t, db.First(&image).Error)
	assert.Equal(t, userId, image.UserId)
	assert.Equal(t, jobId, image.JobId.UUID)
	assert.Equal(t, "a lighthouse", image.Prompt)
	assert.Equal(t, int64(42), image.Seed)
	assert.Equal(t, "aGVsbG8=", image.Data)
}

func TestWorkerMarksFailedJob(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	jobId := uuid.New()
	db := createDB(t, &database.GenerationJob{
		Id:          jobId,
		UserId:      uuid.New(),
		Params:      []byte(`{}`),
		Status:      database.JobQueued,
		EnqueueTime: time.Now(),
	})

	queue := messaging.NewInMemoryQueue()
	require.NoError(t, queue.PublishGenerationTask(context.Background(), messaging.GenerationTaskPayload{
		JobId:  jobId,
		UserId: uuid.New(),
		Params: generation.Request{Prompt: "x"},
	}))

	runWorker(t, db, backend.URL, queue, jobId)

	var job database.GenerationJob
	require.NoError(t, db.First(&job, "id = ?", jobId).Error)
	assert.Equal(t, database.JobFailed, job.Status)

	var images int64
	require.NoError(t, db.Model(&database.GeneratedImage{}).Count(&images).Error)
	assert.Equal(t, int64(0), images)
}
