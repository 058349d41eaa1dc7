package approval

import (
	"time"

	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/risk"
)

// Event envelope published on the coordinator queue.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *Request | *Response | *TrustChange
	Headers map[string]string `json:"headers,omitempty"` // optional - tenant, correlation-id etc.
}

// Standard event topics.
const (
	TopicRequestCreated   = "request.created"
	TopicRequestResponded = "request.responded"
	TopicRequestTimedOut  = "request.timedout"
	TopicRequestCancelled = "request.cancelled"
	TopicAutoApproval     = "autoapproval.triggered"
	TopicTrustChanged     = "trust.changed"
)

// Action names the decision a responder took.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionTrust   Action = "trust"
	ActionReview  Action = "review"
)

// Submission is the inbound shape handed to the coordinator, one per
// requested change set.
type Submission struct {
	Theme     string                 `json:"theme,omitempty"`
	Context   *model.TaskContext     `json:"context,omitempty"`
	Actions   []model.ProposedAction `json:"actions"`
	Category  model.Category         `json:"category,omitempty"`
	Rationale string                 `json:"rationale,omitempty"`
}

// Request is a pending approval request. It exists only while pending - once
// a response is recorded the entry is removed from the table.
type Request struct {
	ID             string                 `json:"id"` // globally unique, primary key
	Theme          string                 `json:"theme,omitempty"`
	Context        *model.TaskContext     `json:"context,omitempty"`
	Actions        []model.ProposedAction `json:"actions"`
	Rationale      string                 `json:"rationale,omitempty"`
	RiskLevel      model.RiskLevel        `json:"riskLevel"`
	Category       model.Category         `json:"category,omitempty"`
	SecurityImpact bool                   `json:"securityImpact"`
	CreatedAt      time.Time              `json:"createdAt"`
	ExpiresAt      *time.Time             `json:"expiresAt,omitempty"` // optional deadline
}

// Response records a human (or synthesized) decision on a request.
type Response struct {
	RequestID    string           `json:"requestId"`
	Action       Action           `json:"action"`
	Approved     bool             `json:"approved"`
	Comment      string           `json:"comment,omitempty"`
	NewTrustRank *model.TrustRank `json:"newTrustRank,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Quick        bool             `json:"quick,omitempty"` // decided without opening details
}

// TrustChange is published on TopicTrustChanged.
type TrustChange struct {
	From   model.TrustRank `json:"from"`
	To     model.TrustRank `json:"to"`
	Reason string          `json:"reason,omitempty"`
	At     time.Time       `json:"at"`
}

// Outcome is the result of one submission.
type Outcome struct {
	// Request is set when the submission was queued for a human decision.
	Request *Request `json:"request,omitempty"`

	// Assessment is nil when scoring was skipped (bypass mode).
	Assessment *risk.Assessment `json:"assessment,omitempty"`

	// Response is the synthesized decision when AutoResolved is true.
	Response *Response `json:"response,omitempty"`

	AutoResolved bool   `json:"autoResolved"`
	Reason       string `json:"reason,omitempty"`
}

// Pending reports whether the submission awaits a human response.
func (o *Outcome) Pending() bool {
	return o != nil && o.Request != nil && !o.AutoResolved
}
