package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type notification struct {
	Topic string
	ID    string
}

func TestQueuePublishConsume(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[notification](config)

	ctx := context.Background()
	payload := notification{Topic: "request.created", ID: "r1"}
	assert.NoError(t, queue.Publish(ctx, &payload))
	assert.Equal(t, 1, queue.Size())

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.EqualValues(t, &payload, msg.T())
	assert.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack(), "double ack should fail")
}

func TestQueueRetryAndDeadLetter(t *testing.T) {
	config := Config{MaxRetries: 1, RetryDelay: 5 * time.Millisecond, DeadLetter: true, QueueBuffer: 10}
	queue := NewQueue[notification](config)
	ctx := context.Background()

	_ = queue.Publish(ctx, &notification{Topic: "t", ID: "n1"})

	// First failure requeues.
	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, msg.Nack(errors.New("boom")))

	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	msg, err = queue.Consume(ctxTimeout)
	assert.NoError(t, err)

	// Second failure exceeds MaxRetries and lands in the DLQ.
	assert.NoError(t, msg.Nack(errors.New("boom again")))
	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 10*time.Millisecond)
}

func TestQueueConsumeCancelled(t *testing.T) {
	queue := NewQueue[notification](DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := queue.Consume(ctx)
	assert.Error(t, err)
}

func TestQueueDropOldest(t *testing.T) {
	config := NotifyConfig()
	config.QueueBuffer = 3
	queue := NewQueue[notification](config)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.NoError(t, queue.Publish(ctx, &notification{Topic: "commit.created", ID: string(rune('a' + i))}))
	}
	assert.Equal(t, 3, queue.Size())

	// The survivors are the most recent publishes.
	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "h", msg.T().ID)
}
