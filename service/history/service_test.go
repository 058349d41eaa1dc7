package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signoffhq/signoff/service/approval"
)

func response(requestID string, approved bool) *approval.Response {
	action := approval.ActionApprove
	if !approved {
		action = approval.ActionReject
	}
	return &approval.Response{
		RequestID: requestID,
		Action:    action,
		Approved:  approved,
		Timestamp: time.Now(),
	}
}

func TestCreateCommitAdvancesHead(t *testing.T) {
	ctx := context.Background()
	svc := New()

	first, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)
	assert.Empty(t, first.Parents, "first commit has no parent")

	second, err := svc.CreateCommit(ctx, response("req-2", true), "alice", "")
	assert.NoError(t, err)
	assert.Equal(t, []string{first.ID}, second.Parents)

	branch := svc.CurrentBranch()
	assert.Equal(t, second.ID, branch.Head)
	assert.Equal(t, []string{first.ID, second.ID}, branch.Commits)
}

func TestCreateBranchConflict(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)

	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteBranchRules(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)

	// The default branch can never be deleted, force or not.
	assert.ErrorIs(t, svc.DeleteBranch(ctx, "main", false), ErrConflict)
	assert.ErrorIs(t, svc.DeleteBranch(ctx, "main", true), ErrConflict)

	// A branch with commits absent from the default branch needs force.
	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "feature")
	assert.NoError(t, err)
	_, err = svc.CreateCommit(ctx, response("req-2", true), "bob", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "main")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteBranch(ctx, "feature", false), ErrConflict)
	assert.NoError(t, svc.DeleteBranch(ctx, "feature", true))

	assert.ErrorIs(t, svc.DeleteBranch(ctx, "missing", false), ErrNotFound)
}

func TestMergeBranchParents(t *testing.T) {
	ctx := context.Background()
	svc := New()
	base, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)

	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "feature")
	assert.NoError(t, err)
	side, err := svc.CreateCommit(ctx, response("req-2", true), "bob", "")
	assert.NoError(t, err)

	mr, err := svc.CreateMergeRequest(ctx, "feature work", "feature", "main")
	assert.NoError(t, err)
	assert.Equal(t, MRPending, mr.Status)
	assert.Equal(t, []string{side.ID}, mr.Commits)

	merge, err := svc.MergeBranch(ctx, "feature", "main")
	assert.NoError(t, err)
	assert.True(t, merge.IsMerge())
	assert.Equal(t, []string{base.ID, side.ID}, merge.Parents, "parent order is [targetHead, sourceHead]")

	main, err := svc.CheckoutBranch(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, merge.ID, main.Head)
	assert.True(t, main.contains(side.ID))

	got, err := svc.GetMergeRequest(mr.ID)
	assert.NoError(t, err)
	assert.Equal(t, MRMerged, got.Status)
}

func TestMergeIntoEmptyTargetHasOneParent(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "feature")
	assert.NoError(t, err)
	side, err := svc.CreateCommit(ctx, response("req-1", true), "bob", "")
	assert.NoError(t, err)

	merge, err := svc.MergeBranch(ctx, "feature", "main")
	assert.NoError(t, err)
	assert.Equal(t, []string{side.ID}, merge.Parents, "empty target contributes no parent")
}

func TestRevertCommit(t *testing.T) {
	ctx := context.Background()
	svc := New()
	original, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "allow schema change")
	assert.NoError(t, err)
	assert.True(t, original.Response.Approved)

	reverted, err := svc.RevertCommit(ctx, original.ID, false)
	assert.NoError(t, err)
	assert.False(t, reverted.Response.Approved, "revert flips the approved flag")
	assert.Equal(t, `Revert "allow schema change"`, reverted.Message)
	assert.Equal(t, []string{original.ID}, reverted.Parents)
	assert.Equal(t, reverted.ID, svc.CurrentBranch().Head)
}

func TestRevertCommitNoCommit(t *testing.T) {
	ctx := context.Background()
	svc := New()
	original, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "allow schema change")
	assert.NoError(t, err)

	preview, err := svc.RevertCommit(ctx, original.ID, true)
	assert.NoError(t, err)
	assert.False(t, preview.Response.Approved)
	assert.Equal(t, original.ID, svc.CurrentBranch().Head, "no-commit mode leaves the store untouched")
	_, err = svc.GetCommit(preview.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	svc := New()

	_, err := svc.CreateTag(ctx, "v1", "", false)
	assert.ErrorIs(t, err, ErrState, "no commit to tag")

	c, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)

	tag, err := svc.CreateTag(ctx, "v1", "", false)
	assert.NoError(t, err)
	assert.Equal(t, c.ID, tag.CommitID)

	_, err = svc.CreateTag(ctx, "v1", c.ID, false)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreateTag(ctx, "v1", c.ID, true)
	assert.NoError(t, err, "force overwrites")

	_, err = svc.CreateTag(ctx, "v2", "feedfeed", false)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteTag(ctx, "missing"), ErrNotFound)
	assert.NoError(t, svc.DeleteTag(ctx, "v1"))
	assert.Empty(t, svc.ListTags())
}

func TestLogFilters(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "add login flow")
	assert.NoError(t, err)
	_, err = svc.CreateCommit(ctx, response("req-2", false), "bob", "drop users table")
	assert.NoError(t, err)
	third, err := svc.CreateCommit(ctx, response("req-3", true), "alice", "add logout flow")
	assert.NoError(t, err)

	all, err := svc.Log(nil)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "newest first")

	byAuthor, err := svc.Log(&LogFilter{Author: "ali"})
	assert.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byMessage, err := svc.Log(&LogFilter{Message: `^add .* flow$`})
	assert.NoError(t, err)
	assert.Len(t, byMessage, 2)

	limited, err := svc.Log(&LogFilter{Limit: 1})
	assert.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = svc.Log(&LogFilter{Message: `(`})
	assert.Error(t, err)
	_, err = svc.Log(&LogFilter{Branch: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindCommonAncestor(t *testing.T) {
	ctx := context.Background()
	svc := New()
	base, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)

	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "feature")
	assert.NoError(t, err)
	left, err := svc.CreateCommit(ctx, response("req-2", true), "bob", "")
	assert.NoError(t, err)

	_, err = svc.CheckoutBranch(ctx, "main")
	assert.NoError(t, err)
	right, err := svc.CreateCommit(ctx, response("req-3", true), "alice", "")
	assert.NoError(t, err)

	ancestor, err := svc.FindCommonAncestor(left.ID, right.ID)
	assert.NoError(t, err)
	assert.Equal(t, base.ID, ancestor)

	_, err = svc.FindCommonAncestor(left.ID, "feedfeed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBranchesFilters(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "merged-twin", "")
	assert.NoError(t, err)

	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "feature")
	assert.NoError(t, err)
	_, err = svc.CreateCommit(ctx, response("req-2", true), "bob", "")
	assert.NoError(t, err)

	names := func(branches []*Branch) []string {
		var out []string
		for _, b := range branches {
			out = append(out, b.Name)
		}
		return out
	}

	assert.Equal(t, []string{"feature", "main", "merged-twin"}, names(svc.ListBranches(nil)))
	assert.Equal(t, []string{"main", "merged-twin"}, names(svc.ListBranches(&BranchFilter{Merged: true})))
	assert.Equal(t, []string{"feature"}, names(svc.ListBranches(&BranchFilter{Unmerged: true})))
}

func TestAddReviewTransitions(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "feature")
	assert.NoError(t, err)
	_, err = svc.CreateCommit(ctx, response("req-1", true), "bob", "")
	assert.NoError(t, err)

	mr, err := svc.CreateMergeRequest(ctx, "feature work", "feature", "main")
	assert.NoError(t, err)

	mr, err = svc.AddReview(ctx, mr.ID, Review{Author: "alice", Approved: false, Comment: "needs tests"})
	assert.NoError(t, err)
	assert.Equal(t, MRRejected, mr.Status)

	mr, err = svc.AddReview(ctx, mr.ID, Review{Author: "alice", Approved: true})
	assert.NoError(t, err)
	assert.Equal(t, MRApproved, mr.Status)

	_, err = svc.MergeBranch(ctx, "feature", "main")
	assert.NoError(t, err)
	_, err = svc.AddReview(ctx, mr.ID, Review{Author: "carol", Approved: true})
	assert.ErrorIs(t, err, ErrState, "merged requests take no further reviews")
}

func TestStatisticsAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)
	_, err = svc.CreateCommit(ctx, response("req-2", false), "bob", "")
	assert.NoError(t, err)

	stats := svc.GetStatistics()
	assert.Equal(t, 2, stats.Commits)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 1, stats.PerAuthor["alice"])

	status := svc.GetStatus()
	assert.Equal(t, "main", status.Branch)
	assert.Equal(t, 2, status.Commits)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := New()
	c, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = svc.CreateTag(ctx, "v1", c.ID, false)
	assert.NoError(t, err)

	fresh := New()
	assert.NoError(t, fresh.Import(svc.Export()))

	got, err := fresh.GetCommit(c.ID)
	assert.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, svc.CurrentBranch().Head, fresh.CurrentBranch().Head)
	assert.Equal(t, svc.ListTags(), fresh.ListTags())

	// Appending after an import continues from the imported head.
	next, err := fresh.CreateCommit(ctx, response("req-2", true), "alice", "")
	assert.NoError(t, err)
	assert.Equal(t, []string{c.ID}, next.Parents)
}

// The notification queue has no consumer here; commits must keep flowing once
// its buffer fills.
func TestCreateCommitManyWithoutConsumer(t *testing.T) {
	ctx := context.Background()
	svc := New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 150; i++ {
			if _, err := svc.CreateCommit(ctx, response("req", true), "alice", ""); err != nil {
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("CreateCommit blocked once the notification buffer filled")
	}
	assert.Equal(t, 150, svc.GetStatistics().Commits)
}

func TestCreateBranchFromForeignBase(t *testing.T) {
	ctx := context.Background()
	svc := New()
	first, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)
	_, err = svc.CreateCommit(ctx, response("req-2", true), "alice", "")
	assert.NoError(t, err)

	_, err = svc.CreateBranch(ctx, "feature", first.ID)
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "feature")
	assert.NoError(t, err)
	side, err := svc.CreateCommit(ctx, response("req-3", true), "bob", "")
	assert.NoError(t, err)
	_, err = svc.CheckoutBranch(ctx, "main")
	assert.NoError(t, err)

	// side is absent from the current branch; the new path comes from its
	// ancestry, not from main's.
	branch, err := svc.CreateBranch(ctx, "fix", side.ID)
	assert.NoError(t, err)
	assert.Equal(t, side.ID, branch.Head)
	assert.Equal(t, []string{first.ID, side.ID}, branch.Commits)
	assert.True(t, branch.contains(branch.Head))

	// side.ID is unreachable from main, so deleting needs force.
	assert.ErrorIs(t, svc.DeleteBranch(ctx, "fix", false), ErrConflict)
	assert.NoError(t, svc.DeleteBranch(ctx, "fix", true))
}

func TestMergeBranchSameHead(t *testing.T) {
	ctx := context.Background()
	svc := New()
	_, err := svc.CreateCommit(ctx, response("req-1", true), "alice", "")
	assert.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)

	// Both branches point at the same commit; there is nothing to merge.
	_, err = svc.MergeBranch(ctx, "feature", "main")
	assert.ErrorIs(t, err, ErrState)

	// Two empty branches are the degenerate case of the same rule.
	empty := New()
	_, err = empty.CreateBranch(ctx, "feature", "")
	assert.NoError(t, err)
	_, err = empty.MergeBranch(ctx, "feature", empty.CurrentBranch().Name)
	assert.ErrorIs(t, err, ErrState)
}
