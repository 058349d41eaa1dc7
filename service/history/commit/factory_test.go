package commit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/approval"
)

func approveResponse(requestID string) *approval.Response {
	return &approval.Response{
		RequestID: requestID,
		Action:    approval.ActionApprove,
		Approved:  true,
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestCommitIDDeterminism(t *testing.T) {
	state := NewState()
	parents := []string{"p1"}

	a := New(approveResponse("req-1"), parents, "alice", "approve the thing", state)
	b := New(approveResponse("req-1"), parents, "alice", "approve the thing", state)
	assert.Equal(t, a.ID, b.ID, "identical content must hash to the identical id")
	assert.Equal(t, a.TreeHash, b.TreeHash)

	// Changing any one field changes the id.
	variants := []*Commit{
		New(approveResponse("req-2"), parents, "alice", "approve the thing", state),
		New(approveResponse("req-1"), []string{"p2"}, "alice", "approve the thing", state),
		New(approveResponse("req-1"), parents, "bob", "approve the thing", state),
		New(approveResponse("req-1"), parents, "alice", "another message", state),
	}
	rejected := approveResponse("req-1")
	rejected.Action = approval.ActionReject
	rejected.Approved = false
	variants = append(variants, New(rejected, parents, "alice", "approve the thing", state))

	seen := map[string]bool{a.ID: true}
	for i, v := range variants {
		assert.False(t, seen[v.ID], "variant %d collided", i)
		seen[v.ID] = true
	}
}

func TestDefaultMessages(t *testing.T) {
	rank := model.TrustCollaborative
	tests := []struct {
		name     string
		response *approval.Response
		expected string
	}{
		{
			name:     "approve",
			response: &approval.Response{Action: approval.ActionApprove, Approved: true},
			expected: "Approve: approved",
		},
		{
			name:     "reject",
			response: &approval.Response{Action: approval.ActionReject},
			expected: "Reject: rejected",
		},
		{
			name:     "trust grant",
			response: &approval.Response{Action: approval.ActionTrust, Approved: true, NewTrustRank: &rank},
			expected: "Grant trust: Auto-approve similar requests (collaborative)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New(tc.response, nil, "alice", "", NewState())
			assert.Equal(t, tc.expected, c.Message)
		})
	}
}

func TestAutoTags(t *testing.T) {
	rank := model.TrustTrusted
	response := &approval.Response{
		RequestID:    "req-9",
		Action:       approval.ActionTrust,
		Approved:     true,
		Quick:        true,
		NewTrustRank: &rank,
	}
	c := New(response, nil, "alice", "", NewState())
	assert.Equal(t, []string{"trust", "approved", "quick-decision", "trust-trusted"}, c.Tags)
}

func TestStateApply(t *testing.T) {
	state := NewState()

	next := state.Apply(approveResponse("req-1"))
	assert.Equal(t, []string{"req-1"}, next.Approved)
	assert.Empty(t, state.Approved, "Apply must not mutate the receiver")

	rejected := &approval.Response{RequestID: "req-2", Action: approval.ActionReject}
	next = next.Apply(rejected)
	assert.Equal(t, []string{"req-2"}, next.Rejected)

	rank := model.TrustLearning
	next = next.Apply(&approval.Response{Action: approval.ActionTrust, Approved: true, NewTrustRank: &rank})
	assert.Equal(t, model.TrustLearning, next.TrustRank)
}
