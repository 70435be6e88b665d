//go:build integration
// +build integration

// Run with: go test -tags=integration ./internal/messaging/...

package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"imagegen-backend/internal/generation"
	"imagegen-backend/internal/messaging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

func TestRabbitMQPublishReceive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "Failed to start RabbitMQ container")

	connStr, err := container.AmqpURL(ctx)
	require.NoError(t, err, "Failed to get RabbitMQ AMQP URL")

	publisher, err := messaging.NewRabbitMQPublisher(connStr)
	require.NoError(t, err)
	defer publisher.Close()

	receiver, err := messaging.NewRabbitMQReceiver(connStr)
	require.NoError(t, err)
	defer receiver.Close()

	payload := messaging.GenerationTaskPayload{
		JobId:  uuid.New(),
		UserId: uuid.New(),
		Params: generation.Request{Prompt: "a lighthouse at dusk", Seed: 42, BatchSize: 1, NIter: 1},
	}
	require.NoError(t, publisher.PublishGenerationTask(ctx, payload))

	select {
	case task := <-receiver.Tasks():
		assert.Equal(t, messaging.Txt2ImgQueue, task.Type())

		var received messaging.GenerationTaskPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &received))
		assert.Equal(t, payload, received)

		require.NoError(t, task.Ack())
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for task")
	}
}
