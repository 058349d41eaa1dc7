// Package signoff provides a human-in-the-loop approval core: proposed
// changes are scored for risk, gated by a trust policy, coordinated through a
// pending-approval table, and every decision is recorded as a content-hashed
// commit on a git-like history store with branches, tags and merge requests.
//
// End-users typically interact via the high-level Service façade exposed by
// the root package:
//
//	svc, _ := signoff.New()
//	outcome, _ := svc.Submit(ctx, &approval.Submission{
//	    Context: &model.TaskContext{Intent: "apply schema migration"},
//	    Actions: []model.ProposedAction{{Kind: "edit", Paths: []string{"db/schema.sql"}}},
//	})
//	if outcome.Pending() {
//	    svc.Respond(ctx, outcome.Request.ID, &approval.Response{
//	        Action: approval.ActionApprove, Approved: true,
//	    })
//	}
//
// For more details see the README and individual sub-packages.
package signoff
