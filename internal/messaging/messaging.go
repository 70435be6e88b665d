package messaging

import (
	"context"
	"time"

	"imagegen-backend/internal/generation"

	"github.com/google/uuid"
)

const (
	Txt2ImgQueue    = "txt2img_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// GenerationTaskPayload is the message published for every generation
// request. It deliberately carries no timeout: workers may run arbitrarily
// long. Delivery is at-least-once; consumers must tolerate duplicates.
type GenerationTaskPayload struct {
	JobId  uuid.UUID          `json:"job_id"`
	Params generation.Request `json:"params"`
	UserId uuid.UUID          `json:"user"`
}

type Publisher interface {
	PublishGenerationTask(ctx context.Context, payload GenerationTaskPayload) error

	Close()
}

type Receiver interface {
	Tasks() <-chan Task

	Close()
}
