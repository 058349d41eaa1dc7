package commit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/signoffhq/signoff/internal/clock"
	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/approval"
)

// Option customises a minted commit.
type Option func(*Commit)

// WithRiskLevel records the assessed level on the commit metadata.
func WithRiskLevel(level model.RiskLevel) Option {
	return func(c *Commit) { c.RiskLevel = level }
}

// WithCategory records the change category on the commit metadata.
func WithCategory(category model.Category) Option {
	return func(c *Commit) { c.Category = category }
}

// WithTags appends caller-supplied tags after the auto-derived ones.
func WithTags(tags ...string) Option {
	return func(c *Commit) { c.Tags = append(c.Tags, tags...) }
}

// New mints an immutable commit from a decision outcome. When message is
// empty a default is derived from the response; previous may be nil for the
// first commit of a repository.
func New(response *approval.Response, parents []string, author, message string, previous *State, options ...Option) *Commit {
	if previous == nil {
		previous = NewState()
	}
	if message == "" {
		message = defaultMessage(response)
	}

	next := previous.Apply(response)
	ret := &Commit{
		Parents:   append([]string(nil), parents...),
		Response:  response,
		Author:    author,
		Message:   message,
		Tags:      autoTags(response),
		Timestamp: clock.Now(),
		Diff:      diffStates(previous, next, response),
	}
	for _, option := range options {
		option(ret)
	}

	ret.TreeHash = treeHash(response, previous)
	ret.ID = contentID(ret)
	return ret
}

// treeHash covers the reduced state projection that results from the
// decision: {approved, action, trust rank, timestamp, previous state}.
func treeHash(response *approval.Response, previous *State) string {
	approved, action, rank, ts := false, "", "", int64(0)
	if response != nil {
		approved = response.Approved
		action = string(response.Action)
		ts = response.Timestamp.UTC().UnixNano()
		if response.NewTrustRank != nil {
			rank = string(*response.NewTrustRank)
		}
	}
	canonical := fmt.Sprintf("approved=%t|action=%s|rank=%s|ts=%d|prev=%s",
		approved, action, rank, ts, previous.canonical())
	sum := blake2b.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// contentID derives the commit id from the canonical content: tree hash,
// parents, author, message, action, approved flag and diff summary. Same
// input, same id.
func contentID(c *Commit) string {
	action, approved := "", false
	if c.Response != nil {
		action = string(c.Response.Action)
		approved = c.Response.Approved
	}
	summary := ""
	if c.Diff != nil {
		summary = c.Diff.Summary
	}
	canonical := fmt.Sprintf("tree=%s|parents=%s|author=%s|message=%s|action=%s|approved=%t|summary=%s",
		c.TreeHash, strings.Join(c.Parents, ","), c.Author, c.Message, action, approved, summary)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// canonical renders the state as a stable single-line form used in hashing.
func (s *State) canonical() string {
	return fmt.Sprintf("rank=%s;auto=%s;approved=%s;rejected=%s",
		s.TrustRank,
		strings.Join(s.AutoApprovalCategories, ","),
		strings.Join(s.Approved, ","),
		strings.Join(s.Rejected, ","))
}

func defaultMessage(response *approval.Response) string {
	if response == nil {
		return "Record decision"
	}
	switch response.Action {
	case approval.ActionApprove:
		return "Approve: approved"
	case approval.ActionReject:
		return "Reject: rejected"
	case approval.ActionTrust:
		rank := ""
		if response.NewTrustRank != nil {
			rank = string(*response.NewTrustRank)
		}
		return fmt.Sprintf("Grant trust: Auto-approve similar requests (%s)", rank)
	case approval.ActionReview:
		return "Review: changes requested"
	default:
		if response.Approved {
			return "Approve: approved"
		}
		return "Reject: rejected"
	}
}

// autoTags derives tags from the response content.
func autoTags(response *approval.Response) []string {
	if response == nil {
		return nil
	}
	tags := []string{string(response.Action)}
	if response.Approved {
		tags = append(tags, "approved")
	} else {
		tags = append(tags, "rejected")
	}
	if response.Quick {
		tags = append(tags, "quick-decision")
	}
	if response.NewTrustRank != nil {
		tags = append(tags, "trust-"+string(*response.NewTrustRank))
	}
	return tags
}
