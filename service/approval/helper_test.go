package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff/model"
	approval "github.com/signoffhq/signoff/service/approval"
	memApproval "github.com/signoffhq/signoff/service/approval/memory"
)

// riskyActions always queue under a novice rank.
func riskyActions() []model.ProposedAction {
	return []model.ProposedAction{
		{Kind: "file_edit", Description: "rotate auth token secret", Paths: []string{"auth/token.go"}, Reversible: false},
	}
}

// TestWaitForResponse verifies that WaitForResponse blocks until a response
// is published on the service queue and returns the correct decision data.
func TestWaitForResponse(t *testing.T) {
	type testCase struct {
		name        string
		approve     bool
		expectError bool
		timeout     time.Duration
		decideDelay time.Duration
	}

	tests := []testCase{{
		name:        "approved before timeout",
		approve:     true,
		expectError: false,
		timeout:     500 * time.Millisecond,
		decideDelay: 10 * time.Millisecond,
	}, {
		name:        "rejected before timeout",
		approve:     false,
		expectError: false,
		timeout:     500 * time.Millisecond,
		decideDelay: 10 * time.Millisecond,
	}, {
		name:        "timeout waiting for response",
		approve:     true, // irrelevant - response never sent
		expectError: true,
		timeout:     50 * time.Millisecond,
		decideDelay: 100 * time.Millisecond, // triggered after timeout
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := memApproval.New()

			outcome, err := svc.Submit(ctx, &approval.Submission{
				Context: &model.TaskContext{TrustRank: model.TrustNovice},
				Actions: riskyActions(),
			})
			assert.NoError(t, err)
			if !assert.True(t, outcome.Pending()) {
				return
			}
			requestID := outcome.Request.ID

			if tc.decideDelay > 0 {
				go func() {
					time.Sleep(tc.decideDelay)
					action := approval.ActionApprove
					if !tc.approve {
						action = approval.ActionReject
					}
					_, _ = svc.Respond(ctx, requestID, &approval.Response{Action: action, Approved: tc.approve})
				}()
			}

			response, err := approval.WaitForResponse(ctx, svc, requestID, tc.timeout)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if assert.NotNil(t, response) {
				assert.Equal(t, requestID, response.RequestID)
				assert.Equal(t, tc.approve, response.Approved)
			}
		})
	}
}

func TestAutoDecider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := memApproval.New()

	outcome, err := svc.Submit(ctx, &approval.Submission{
		Context: &model.TaskContext{TrustRank: model.TrustNovice},
		Actions: riskyActions(),
	})
	assert.NoError(t, err)
	assert.True(t, outcome.Pending())

	stop := approval.AutoReject(ctx, svc, "not during release freeze", 5*time.Millisecond)
	defer stop()

	response, err := approval.WaitForResponse(ctx, svc, outcome.Request.ID, 500*time.Millisecond)
	assert.NoError(t, err)
	if assert.NotNil(t, response) {
		assert.False(t, response.Approved)
		assert.Equal(t, "not during release freeze", response.Comment)
	}
}

func TestAutoExpire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Short window so the low-risk request gets an ExpiresAt in the past by
	// the time the expirer polls.
	svc := memApproval.New()

	outcome, err := svc.Submit(ctx, &approval.Submission{
		Context: &model.TaskContext{TrustRank: model.TrustNovice},
		Actions: riskyActions(),
	})
	assert.NoError(t, err)
	if !assert.True(t, outcome.Pending()) {
		return
	}
	expired := time.Now().Add(-time.Minute)
	outcome.Request.ExpiresAt = &expired

	stop := approval.AutoExpire(ctx, svc, "expired", 5*time.Millisecond)
	defer stop()

	response, err := approval.WaitForResponse(ctx, svc, outcome.Request.ID, 500*time.Millisecond)
	assert.NoError(t, err)
	if assert.NotNil(t, response) {
		assert.False(t, response.Approved)
		assert.Equal(t, "expired", response.Comment)
	}
}

// Two goroutines each wait on their own request; responding to both must
// deliver each decision to the waiter that owns it.
func TestWaitForResponseConcurrentWaiters(t *testing.T) {
	ctx := context.Background()
	svc := memApproval.New()

	var ids []string
	for i := 0; i < 2; i++ {
		outcome, err := svc.Submit(ctx, &approval.Submission{
			Context: &model.TaskContext{TrustRank: model.TrustNovice},
			Actions: riskyActions(),
		})
		assert.NoError(t, err)
		if !assert.True(t, outcome.Pending()) {
			return
		}
		ids = append(ids, outcome.Request.ID)
	}

	results := make(chan error, len(ids))
	for _, id := range ids {
		go func(id string) {
			response, err := approval.WaitForResponse(ctx, svc, id, 2*time.Second)
			if err == nil && response.RequestID != id {
				err = assert.AnError
			}
			results <- err
		}(id)
	}

	time.Sleep(20 * time.Millisecond)
	for _, id := range ids {
		_, err := svc.Respond(ctx, id, &approval.Response{Action: approval.ActionApprove, Approved: true})
		assert.NoError(t, err)
	}
	for range ids {
		assert.NoError(t, <-results)
	}
}
