package fs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type notification struct {
	Topic string `json:"topic"`
	ID    string `json:"id"`
}

func TestQueueRoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.BaseURL = t.TempDir()
	config.RetryDelay = time.Millisecond

	queue, err := NewQueue[notification](afs.New(), config)
	assert.NoError(t, err)

	ctx := context.Background()
	first := notification{Topic: "commit.created", ID: "c1"}
	second := notification{Topic: "commit.created", ID: "c2"}
	assert.NoError(t, queue.Publish(ctx, &first))
	time.Sleep(2 * time.Millisecond) // distinct timestamp prefixes
	assert.NoError(t, queue.Publish(ctx, &second))

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	if !assert.NotNil(t, msg) {
		return
	}
	assert.EqualValues(t, &first, msg.T(), "oldest message first")
	assert.NoError(t, msg.Ack())

	msg, err = queue.Consume(ctx)
	assert.NoError(t, err)
	if !assert.NotNil(t, msg) {
		return
	}
	assert.EqualValues(t, &second, msg.T())
	assert.NoError(t, msg.Nack(errors.New("consumer down")))

	// Nacked message becomes eligible again after the retry delay.
	time.Sleep(5 * time.Millisecond)
	msg, err = queue.Consume(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, msg) {
		assert.EqualValues(t, &second, msg.T())
		assert.NoError(t, msg.Ack())
	}

	// Queue drained.
	msg, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestQueueRequiresBaseURL(t *testing.T) {
	_, err := NewQueue[notification](afs.New(), Config{})
	assert.Error(t, err)
}
