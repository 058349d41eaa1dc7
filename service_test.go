package signoff_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff"
	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/approval"
	"github.com/signoffhq/signoff/service/history"
)

func TestAutoApprovedSubmissionIsCommitted(t *testing.T) {
	ctx := context.Background()
	config := signoff.DefaultConfig()
	config.Trust.InitialRank = string(model.TrustLearning)
	svc, err := signoff.New(signoff.WithConfig(config))
	assert.NoError(t, err)

	outcome, err := svc.Submit(ctx, &approval.Submission{
		Context: &model.TaskContext{Intent: "update the readme"},
		Actions: []model.ProposedAction{
			{Kind: "edit", Description: "fix typos in readme", Paths: []string{"README.md"}, Reversible: true},
		},
	})
	assert.NoError(t, err)
	assert.True(t, outcome.AutoResolved)
	assert.False(t, outcome.Pending())

	log, err := svc.History().Log(nil)
	assert.NoError(t, err)
	if assert.Len(t, log, 1) {
		assert.Equal(t, "Approve: approved", log[0].Message)
		assert.Equal(t, model.CategoryDocumentation, log[0].Category)
	}
}

func TestPendingSubmissionCommitsOnRespond(t *testing.T) {
	ctx := context.Background()
	svc, err := signoff.New()
	assert.NoError(t, err)

	outcome, err := svc.Submit(ctx, &approval.Submission{
		Context: &model.TaskContext{Intent: "rotate credentials"},
		Actions: []model.ProposedAction{
			{Kind: "edit", Description: "update auth secret handling", Paths: []string{"auth/config.ts"}},
		},
	})
	assert.NoError(t, err)
	if !assert.True(t, outcome.Pending()) {
		return
	}
	assert.Equal(t, model.CategorySecurity, outcome.Request.Category, "classifier fills the category")

	pending, err := svc.Pending(ctx)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)

	recorded, err := svc.Respond(ctx, outcome.Request.ID, &approval.Response{
		Action:   approval.ActionApprove,
		Approved: true,
		Comment:  "reviewed the diff",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Approve: approved", recorded.Message)
	assert.Equal(t, model.CategorySecurity, recorded.Category)
	assert.Equal(t, recorded.ID, svc.History().CurrentBranch().Head)

	pending, err = svc.Pending(ctx)
	assert.NoError(t, err)
	assert.Empty(t, pending)

	// Second response to the same id fails: exactly-once.
	_, err = svc.Respond(ctx, outcome.Request.ID, &approval.Response{Action: approval.ActionReject})
	assert.Error(t, err)
}

func TestDisabledCoordinatorAutoApproves(t *testing.T) {
	ctx := context.Background()
	config := signoff.DefaultConfig()
	config.Approval.Disabled = true
	svc, err := signoff.New(signoff.WithConfig(config))
	assert.NoError(t, err)

	outcome, err := svc.Submit(ctx, &approval.Submission{
		Actions: []model.ProposedAction{
			{Kind: "delete", Description: "drop the users table", Paths: []string{"db/migrations/0009_drop.sql"}},
		},
	})
	assert.NoError(t, err)
	assert.True(t, outcome.AutoResolved)
	assert.Equal(t, "system disabled", outcome.Reason)
	assert.Nil(t, outcome.Assessment, "no scoring when disabled")
}

func TestHistorySnapshotThroughFacade(t *testing.T) {
	ctx := context.Background()
	config := signoff.DefaultConfig()
	config.Trust.InitialRank = string(model.TrustAutonomous)
	svc, err := signoff.New(signoff.WithConfig(config))
	assert.NoError(t, err)

	_, err = svc.Submit(ctx, &approval.Submission{
		Actions: []model.ProposedAction{
			{Kind: "edit", Description: "fix typo", Paths: []string{"docs/guide.md"}, Reversible: true},
		},
	})
	assert.NoError(t, err)

	URL := t.TempDir() + "/history.yaml"
	assert.NoError(t, svc.ExportHistory(ctx, URL))

	other, err := signoff.New()
	assert.NoError(t, err)
	assert.NoError(t, other.ImportHistory(ctx, URL))
	assert.Equal(t, svc.History().CurrentBranch().Head, other.History().CurrentBranch().Head)
}

func TestConfigValidation(t *testing.T) {
	config := signoff.DefaultConfig()
	config.Trust.InitialRank = "wizard"
	_, err := signoff.New(signoff.WithConfig(config))
	assert.Error(t, err)

	config = signoff.DefaultConfig()
	config.Queue.Vendor = "fs"
	_, err = signoff.New(signoff.WithConfig(config))
	assert.Error(t, err, "fs vendor requires a base URL")
}

func TestFsVendorSpoolsNotifications(t *testing.T) {
	ctx := context.Background()
	config := signoff.DefaultConfig()
	config.Trust.InitialRank = string(model.TrustLearning)
	config.Queue.Vendor = "fs"
	config.Queue.BaseURL = t.TempDir()
	svc, err := signoff.New(signoff.WithConfig(config))
	assert.NoError(t, err)

	_, err = svc.Submit(ctx, &approval.Submission{
		Context: &model.TaskContext{Intent: "update the readme"},
		Actions: []model.ProposedAction{
			{Kind: "edit", Description: "fix typos in readme", Paths: []string{"README.md"}, Reversible: true},
		},
	})
	assert.NoError(t, err)

	// The commit notification went through the fs vendor, not a private
	// memory buffer, so it survives on disk until consumed.
	msg, err := svc.History().Queue().Consume(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, msg) {
		assert.Equal(t, history.TopicCommitCreated, msg.T().Topic)
		assert.NoError(t, msg.Ack())
	}
}
