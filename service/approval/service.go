package approval

import (
	"context"

	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/messaging"
)

// Service defines the approval coordinator interface.
type Service interface {
	// Submit scores a change set and either resolves it immediately or
	// parks it in the pending table.
	Submit(ctx context.Context, submission *Submission) (*Outcome, error)

	// ListPending returns all requests awaiting a human decision.
	ListPending(ctx context.Context) ([]*Request, error)

	// Respond records the decision for a pending request. Responding to an
	// unknown id is an error; responding twice to the same id is an error.
	Respond(ctx context.Context, id string, response *Response) (*Request, error)

	// Cancel releases a pending request without recording a decision.
	Cancel(ctx context.Context, id string) error

	// TrustRank returns the requester's current rank.
	TrustRank() model.TrustRank

	// Successes returns the cumulative successful-task count.
	Successes() int

	// Queue exposes the lifecycle notification queue.
	Queue() messaging.Queue[Event]
}
