package history

import (
	"time"

	"github.com/signoffhq/signoff/service/history/commit"
)

// Event envelope published on the history queue.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *commit.Commit | *Branch | *Tag | *MergeRequest
	Headers map[string]string `json:"headers,omitempty"`
}

// Standard event topics.
const (
	TopicCommitCreated  = "commit.created"
	TopicBranchCreated  = "branch.created"
	TopicBranchDeleted  = "branch.deleted"
	TopicMergeCompleted = "merge.completed"
	TopicTagCreated     = "tag.created"
)

// Branch is a named, mutable pointer into the commit DAG. Commits holds the
// ordered path from the branch base to its head.
type Branch struct {
	Name          string    `json:"name"` // unique within the repository
	Head          string    `json:"head,omitempty"`
	Base          string    `json:"base,omitempty"`
	Commits       []string  `json:"commits,omitempty"`
	MergeRequests []string  `json:"mergeRequests,omitempty"`
	Protected     bool      `json:"protected,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// contains reports whether the commit id is on the branch path.
func (b *Branch) contains(id string) bool {
	for _, c := range b.Commits {
		if c == id {
			return true
		}
	}
	return false
}

// Tag is an immutable name for a commit, overwritable only with force.
type Tag struct {
	Name      string    `json:"name"`
	CommitID  string    `json:"commitId"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MRStatus is the merge-request lifecycle state.
type MRStatus string

const (
	MRDraft    MRStatus = "draft"
	MRPending  MRStatus = "pending"
	MRApproved MRStatus = "approved"
	MRRejected MRStatus = "rejected"
	MRMerged   MRStatus = "merged"
	MRClosed   MRStatus = "closed"
)

// Review is one reviewer entry on a merge request.
type Review struct {
	Author   string    `json:"author"`
	Approved bool      `json:"approved"`
	Comment  string    `json:"comment,omitempty"`
	At       time.Time `json:"at"`
}

// MergeRequest tracks a proposed merge of one branch into another.
type MergeRequest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Commits   []string  `json:"commits,omitempty"` // source commits absent from target
	Reviews   []Review  `json:"reviews,omitempty"`
	Status    MRStatus  `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository is the exportable aggregate: every branch, commit, tag and merge
// request plus the per-commit state projections needed to continue appending
// after an import.
type Repository struct {
	DefaultBranch string                    `json:"defaultBranch"`
	Current       string                    `json:"current"`
	Branches      map[string]*Branch        `json:"branches"`
	Commits       map[string]*commit.Commit `json:"commits"`
	Tags          map[string]*Tag           `json:"tags,omitempty"`
	MergeRequests map[string]*MergeRequest  `json:"mergeRequests,omitempty"`
	States        map[string]*commit.State  `json:"states,omitempty"`
}

// LogFilter narrows a log query. Zero-value fields do not filter.
type LogFilter struct {
	Branch  string     `json:"branch,omitempty"`  // branch membership, defaults to the current branch
	Author  string     `json:"author,omitempty"`  // substring match
	Message string     `json:"message,omitempty"` // regular expression
	Since   *time.Time `json:"since,omitempty"`
	Until   *time.Time `json:"until,omitempty"`
	Limit   int        `json:"limit,omitempty"`
}

// BranchFilter narrows a branch listing relative to the default branch.
type BranchFilter struct {
	Merged   bool `json:"merged,omitempty"`   // only branches whose head is on the default branch
	Unmerged bool `json:"unmerged,omitempty"` // only branches with commits absent from it
}

// Statistics summarises the repository content.
type Statistics struct {
	Commits       int            `json:"commits"`
	Merges        int            `json:"merges"`
	Branches      int            `json:"branches"`
	Tags          int            `json:"tags"`
	MergeRequests int            `json:"mergeRequests"`
	Approved      int            `json:"approved"`
	Rejected      int            `json:"rejected"`
	PerAuthor     map[string]int `json:"perAuthor,omitempty"`
}

// Status is the working-state summary backing the CLI status command.
type Status struct {
	Branch    string `json:"branch"`
	Head      string `json:"head,omitempty"`
	Commits   int    `json:"commits"`
	PendingMR int    `json:"pendingMergeRequests"`
}
