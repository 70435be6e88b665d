package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"imagegen-backend/internal/database"
	"imagegen-backend/internal/generation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Worker consumes generation tasks and executes them against the backend.
// Tasks carry no deadline, so each generation runs with a background
// context for as long as the backend needs.
type Worker struct {
	db       *gorm.DB
	client   *generation.Client
	receiver Receiver
}

func NewWorker(db *gorm.DB, client *generation.Client, receiver Receiver) *Worker {
	return &Worker{db: db, client: client, receiver: receiver}
}

// Run processes tasks until the receiver's channel closes. Delivery is
// at-least-once, so a redelivered job may be generated twice; the image
// rows get fresh ids and the job status just converges again.
func (w *Worker) Run() {
	for task := range w.receiver.Tasks() {
		if task.Type() != Txt2ImgQueue {
			slog.Warn("received task from unknown queue, discarding", "queue", task.Type())
			if err := task.Reject(); err != nil {
				slog.Error("error rejecting task", "error", err)
			}
			continue
		}

		var payload GenerationTaskPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			slog.Error("error unmarshalling generation task, discarding", "error", err)
			if err := task.Reject(); err != nil {
				slog.Error("error rejecting task", "error", err)
			}
			continue
		}

		if err := w.processTask(context.Background(), payload); err != nil {
			slog.Error("error processing generation task", "job_id", payload.JobId, "error", err)
			if err := task.Nack(); err != nil {
				slog.Error("error nacking task", "error", err)
			}
			continue
		}

		if err := task.Ack(); err != nil {
			slog.Error("error acking task", "error", err)
		}
	}
}

func (w *Worker) processTask(ctx context.Context, payload GenerationTaskPayload) error {
	slog.Info("handling generation task", "job_id", payload.JobId, "user_id", payload.UserId)

	if err := database.UpdateGenerationJobStatus(ctx, w.db, payload.JobId, database.JobRunning); err != nil {
		slog.Warn("failed to mark generation job as running", "job_id", payload.JobId, "error", err)
	}

	result, err := w.client.Generate(ctx, payload.Params)
	if err != nil {
		database.UpdateGenerationJobStatus(ctx, w.db, payload.JobId, database.JobFailed) //nolint:errcheck
		return err
	}

	for _, data := range result.Images {
		image := database.GeneratedImage{
			Id:             uuid.New(),
			JobId:          uuid.NullUUID{UUID: payload.JobId, Valid: true},
			UserId:         payload.UserId,
			Prompt:         payload.Params.Prompt,
			NegativePrompt: payload.Params.NegativePrompt,
			Sampler:        payload.Params.SamplerName,
			CfgScale:       payload.Params.CfgScale,
			Seed:           payload.Params.Seed,
			Width:          payload.Params.Width,
			Height:         payload.Params.Height,
			Steps:          payload.Params.Steps,
			Data:           data,
			CreationTime:   time.Now().UTC(),
		}

		if err := w.db.WithContext(ctx).Create(&image).Error; err != nil {
			database.UpdateGenerationJobStatus(ctx, w.db, payload.JobId, database.JobFailed) //nolint:errcheck
			return err
		}
	}

	return database.UpdateGenerationJobStatus(ctx, w.db, payload.JobId, database.JobCompleted)
}
