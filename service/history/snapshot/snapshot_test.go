package snapshot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff/service/approval"
	"github.com/signoffhq/signoff/service/history"
	"github.com/signoffhq/signoff/service/history/snapshot"
)

func seed(t *testing.T) *history.Service {
	ctx := context.Background()
	svc := history.New()
	first, err := svc.CreateCommit(ctx, &approval.Response{
		RequestID: "req-1",
		Action:    approval.ActionApprove,
		Approved:  true,
		Timestamp: time.Now(),
	}, "alice", "allow schema change")
	assert.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CreateTag(ctx, "v1", first.ID, false)
	assert.NoError(t, err)
	return svc
}

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		URL  string
	}{
		{name: "json", URL: "mem://localhost/snapshots/repo.json"},
		{name: "yaml", URL: "mem://localhost/snapshots/repo.yaml"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := seed(t)
			snapshots := snapshot.New()

			assert.NoError(t, snapshots.Export(ctx, svc, tc.URL))

			fresh := history.New()
			assert.NoError(t, snapshots.Import(ctx, fresh, tc.URL))

			assert.Equal(t, svc.CurrentBranch().Head, fresh.CurrentBranch().Head)
			assert.Equal(t, tagTargets(svc), tagTargets(fresh), "same tags, same targets")
			assert.Equal(t, len(svc.ListBranches(nil)), len(fresh.ListBranches(nil)))
			assert.Equal(t, svc.GetStatistics(), fresh.GetStatistics())
		})
	}
}

func tagTargets(svc *history.Service) map[string]string {
	out := map[string]string{}
	for _, tag := range svc.ListTags() {
		out[tag.Name] = tag.CommitID
	}
	return out
}

func TestImportMissingSnapshot(t *testing.T) {
	ctx := context.Background()
	err := snapshot.New().Import(ctx, history.New(), "mem://localhost/snapshots/absent.json")
	assert.Error(t, err)
}
