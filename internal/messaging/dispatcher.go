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

// Dispatcher records generation requests as background jobs and publishes
// them to the txt2img queue. It is the fire-and-forget half of the
// generation path: the synchronous backend call neither waits for nor knows
// about the job created here.
type Dispatcher struct {
	db        *gorm.DB
	publisher Publisher
}

func NewDispatcher(db *gorm.DB, publisher Publisher) *Dispatcher {
	return &Dispatcher{db: db, publisher: publisher}
}

// Enqueue writes a GenerationJob row and publishes the matching task. All
// failures are logged and swallowed: job bookkeeping is best-effort and must
// never block or fail the user-visible generation response. Callers invoke
// this from a detached goroutine with a context that carries no deadline,
// since the eventual job execution has none either.
func (d *Dispatcher) Enqueue(ctx context.Context, req generation.Request, userId uuid.UUID) {
	params, err := json.Marshal(req)
	if err != nil {
		slog.Error("error marshalling generation job params", "user_id", userId, "error", err)
		return
	}

	job := database.GenerationJob{
		Id:          uuid.New(),
		UserId:      userId,
		Params:      params,
		Status:      database.JobQueued,
		EnqueueTime: time.Now().UTC(),
	}

	if err := d.db.WithContext(ctx).Create(&job).Error; err != nil {
		slog.Error("error recording generation job", "user_id", userId, "error", err)
		return
	}

	payload := GenerationTaskPayload{
		JobId:  job.Id,
		Params: req,
		UserId: userId,
	}

	if err := d.publisher.PublishGenerationTask(ctx, payload); err != nil {
		slog.Error("error publishing generation task", "job_id", job.Id, "error", err)
		return
	}

	slog.Info("generation job enqueued", "job_id", job.Id, "user_id", userId)
}
