package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff/service/messaging"
)

type trustChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func TestTypedPublisherRoundTrip(t *testing.T) {
	svc, err := New(messaging.VendorMemory)
	assert.NoError(t, err)

	publisher, err := PublisherOf[trustChanged](svc)
	assert.NoError(t, err)

	ctx := context.Background()
	sent := NewEvent(&Context{Service: "approval", Method: "respond"}, trustChanged{From: "novice", To: "learning"})
	assert.NoError(t, publisher.Publish(ctx, sent))

	received, err := publisher.Consume(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, received) {
		assert.Equal(t, sent.Data, received.Data)
		assert.Equal(t, "approval", received.Context.Service)
	}

	// Typed publishes are mirrored onto the untyped any-queue.
	mirrored, err := svc.publisher.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, mirrored)
}

func TestUnsupportedVendor(t *testing.T) {
	_, err := New("carrier-pigeon")
	assert.Error(t, err)

	_, err = New(messaging.VendorFs)
	assert.Error(t, err, "fs vendor requires a config factory")
}
