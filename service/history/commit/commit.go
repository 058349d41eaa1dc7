package commit

import (
	"sort"
	"time"

	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/approval"
)

// Commit is one node of the approval history DAG. Immutable once created;
// merge commits are the only nodes with two parents.
type Commit struct {
	ID        string             `json:"id"`
	Parents   []string           `json:"parents,omitempty"`
	Response  *approval.Response `json:"response,omitempty"`
	Author    string             `json:"author"`
	Message   string             `json:"message"`
	Tags      []string           `json:"tags,omitempty"`
	RiskLevel model.RiskLevel    `json:"riskLevel,omitempty"`
	Category  model.Category     `json:"category,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Diff      *StateDiff         `json:"diff,omitempty"`
	TreeHash  string             `json:"treeHash"`
}

// ShortID returns the abbreviated id used in log output.
func (c *Commit) ShortID() string {
	if len(c.ID) < 8 {
		return c.ID
	}
	return c.ID[:8]
}

// IsMerge reports whether the commit joins two lines of history.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) == 2
}

// State is the reduced approval-state projection a commit versions: who is
// trusted how much and which requests were decided. Proposed file content is
// deliberately not part of it - the history versions approval metadata.
type State struct {
	TrustRank              model.TrustRank `json:"trustRank"`
	AutoApprovalCategories []string        `json:"autoApprovalCategories,omitempty"`
	Approved               []string        `json:"approved,omitempty"`
	Rejected               []string        `json:"rejected,omitempty"`
}

// NewState returns the initial projection for a novice requester.
func NewState() *State {
	return &State{TrustRank: model.TrustNovice}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return NewState()
	}
	return &State{
		TrustRank:              s.TrustRank,
		AutoApprovalCategories: append([]string(nil), s.AutoApprovalCategories...),
		Approved:               append([]string(nil), s.Approved...),
		Rejected:               append([]string(nil), s.Rejected...),
	}
}

// Apply returns the projection after recording the response; the receiver is
// left untouched.
func (s *State) Apply(response *approval.Response) *State {
	next := s.Clone()
	if response == nil {
		return next
	}
	if response.NewTrustRank != nil && response.NewTrustRank.IsValid() {
		next.TrustRank = *response.NewTrustRank
	}
	if response.RequestID != "" {
		if response.Approved {
			next.Approved = appendUnique(next.Approved, response.RequestID)
		} else {
			next.Rejected = appendUnique(next.Rejected, response.RequestID)
		}
	}
	return next
}

// AllowCategory records a category as auto-approvable, keeping the list
// sorted so the canonical rendering stays stable.
func (s *State) AllowCategory(category model.Category) {
	s.AutoApprovalCategories = appendUnique(s.AutoApprovalCategories, string(category))
	sort.Strings(s.AutoApprovalCategories)
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
