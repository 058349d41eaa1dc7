package commit

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/signoffhq/signoff/service/approval"
)

// DiffType classifies what kind of decision a commit records.
type DiffType string

const (
	DiffApproval    DiffType = "approval"
	DiffRejection   DiffType = "rejection"
	DiffTrustChange DiffType = "trust-change"
)

// Change is one field-level difference between two state projections.
type Change struct {
	Field string `json:"field"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// StateDiff describes how a decision moved the approval state.
type StateDiff struct {
	Type    DiffType `json:"type"`
	Changes []Change `json:"changes,omitempty"`
	Summary string   `json:"summary"`
	Patch   string   `json:"patch,omitempty"`
}

// diffStates computes the ordered change list, the one-line summary and a
// unified-diff rendering between two projections.
func diffStates(previous, next *State, response *approval.Response) *StateDiff {
	ret := &StateDiff{Type: diffType(response)}

	if previous.TrustRank != next.TrustRank {
		ret.Changes = append(ret.Changes, Change{
			Field: "trustRank", From: string(previous.TrustRank), To: string(next.TrustRank),
		})
	}
	prevAuto := strings.Join(previous.AutoApprovalCategories, ",")
	nextAuto := strings.Join(next.AutoApprovalCategories, ",")
	if prevAuto != nextAuto {
		ret.Changes = append(ret.Changes, Change{Field: "autoApprovalCategories", From: prevAuto, To: nextAuto})
	}
	for _, id := range added(previous.Approved, next.Approved) {
		ret.Changes = append(ret.Changes, Change{Field: "approved", To: id})
	}
	for _, id := range added(previous.Rejected, next.Rejected) {
		ret.Changes = append(ret.Changes, Change{Field: "rejected", To: id})
	}

	ret.Summary = summary(ret, response)
	ret.Patch = patch(previous, next)
	return ret
}

func diffType(response *approval.Response) DiffType {
	if response == nil {
		return DiffApproval
	}
	if response.Action == approval.ActionTrust || response.NewTrustRank != nil {
		return DiffTrustChange
	}
	if response.Approved {
		return DiffApproval
	}
	return DiffRejection
}

func summary(d *StateDiff, response *approval.Response) string {
	switch d.Type {
	case DiffTrustChange:
		for _, c := range d.Changes {
			if c.Field == "trustRank" {
				return fmt.Sprintf("trust rank %s -> %s", c.From, c.To)
			}
		}
		return "trust grant with unchanged rank"
	case DiffRejection:
		if response != nil && response.RequestID != "" {
			return fmt.Sprintf("rejected request %s", response.RequestID)
		}
		return "rejected 1 request"
	default:
		if response != nil && response.RequestID != "" {
			return fmt.Sprintf("approved request %s", response.RequestID)
		}
		return "approved 1 request"
	}
}

// patch renders both projections and returns their unified diff.
func patch(previous, next *State) string {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(render(previous)),
		B:        difflib.SplitLines(render(next)),
		FromFile: "state/previous",
		ToFile:   "state/next",
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return out
}

func render(s *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "trustRank: %s\n", s.TrustRank)
	fmt.Fprintf(&b, "autoApprovalCategories: [%s]\n", strings.Join(s.AutoApprovalCategories, ", "))
	fmt.Fprintf(&b, "approved: [%s]\n", strings.Join(s.Approved, ", "))
	fmt.Fprintf(&b, "rejected: [%s]\n", strings.Join(s.Rejected, ", "))
	return b.String()
}

// added returns the entries present in next but not in previous, in next's
// order.
func added(previous, next []string) []string {
	seen := make(map[string]bool, len(previous))
	for _, v := range previous {
		seen[v] = true
	}
	var out []string
	for _, v := range next {
		if !seen[v] {
			out = append(out, v)
		}
	}
	return out
}
