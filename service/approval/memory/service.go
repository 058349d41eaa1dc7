// Package memory provides the in-memory approval coordinator: one logical
// owner of the pending-request table, per-request timeout timers and the
// requester's trust state.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/signoffhq/signoff/internal/clock"
	"github.com/signoffhq/signoff/internal/idgen"
	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/policy"
	"github.com/signoffhq/signoff/progress"
	"github.com/signoffhq/signoff/service/approval"
	"github.com/signoffhq/signoff/service/dao"
	"github.com/signoffhq/signoff/service/dao/store"
	"github.com/signoffhq/signoff/service/messaging"
	qmem "github.com/signoffhq/signoff/service/messaging/memory"
	"github.com/signoffhq/signoff/service/risk"
	"github.com/signoffhq/signoff/service/trust"
)

type service struct {
	// mu guards the trust state and the timers map; the pending table has its
	// own lock but check-then-insert sequences still run under mu.
	mu sync.Mutex

	assessor *risk.Assessor
	ladder   trust.Ladder

	pending   *store.MemoryStore[string, approval.Request]
	responses *store.MemoryStore[string, approval.Response]
	events    messaging.Queue[approval.Event]
	timers    map[string]*time.Timer

	rank      model.TrustRank
	successes int

	enabled        bool
	pendingTimeout time.Duration
	maxPending     int
}

// key selectors - grab ID field
func requestKey(r *approval.Request) string   { return r.ID }
func responseKey(r *approval.Response) string { return r.RequestID }

// New creates the coordinator with default collaborators: a fresh assessor,
// the standard trust ladder, a novice requester and an in-memory event queue.
func New(options ...Option) approval.Service {
	ret := &service{
		assessor:  risk.New(),
		ladder:    trust.DefaultLadder(),
		pending:   store.NewMemoryStore[string, approval.Request](requestKey),
		responses: store.NewMemoryStore[string, approval.Response](responseKey),
		events:    qmem.NewQueue[approval.Event](qmem.NotifyConfig()),
		timers:    map[string]*time.Timer{},
		rank:      model.TrustNovice,
		enabled:   true,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

/* ---------------- lifecycle ------------------------------------------- */

func (s *service) Submit(ctx context.Context, submission *approval.Submission) (*approval.Outcome, error) {
	if submission == nil {
		return nil, errors.New("invalid submission")
	}
	progress.UpdateCtx(ctx, progress.Delta{Submitted: 1})

	// Session policy overrides dominate scoring.
	if override := s.applyPolicy(ctx, submission); override != nil {
		return override, nil
	}
	if !s.enabled {
		return s.autoResolve(ctx, nil, true, "system disabled"), nil
	}

	taskCtx := s.contextWithRank(submission.Context)
	assessment := s.assessor.Assess(taskCtx, submission.Actions, submission.Category)

	if !assessment.RequiresApproval || assessment.AutoApprovalEligible {
		reason := "risk below approval threshold"
		if assessment.RequiresApproval {
			reason = fmt.Sprintf("auto-approval eligible at %s rank", s.TrustRank())
		}
		return s.autoResolve(ctx, assessment, true, reason), nil
	}

	request := &approval.Request{
		ID:             idgen.New(),
		Theme:          submission.Theme,
		Context:        taskCtx,
		Actions:        submission.Actions,
		Rationale:      submission.Rationale,
		RiskLevel:      assessment.Level,
		Category:       submission.Category,
		SecurityImpact: assessment.SecurityElevated(),
		CreatedAt:      clock.Now(),
	}

	s.mu.Lock()
	if s.maxPending > 0 && s.pending.Count() >= s.maxPending {
		s.mu.Unlock()
		return nil, fmt.Errorf("pending request limit %d reached", s.maxPending)
	}
	_ = s.pending.Save(ctx, request)
	// Low-risk requests auto-resolve when the configured window elapses.
	if s.pendingTimeout > 0 && request.RiskLevel == model.RiskLow {
		expiresAt := request.CreatedAt.Add(s.pendingTimeout)
		request.ExpiresAt = &expiresAt
		s.timers[request.ID] = time.AfterFunc(s.pendingTimeout, func() { s.timeOut(request.ID) })
	}
	s.mu.Unlock()

	progress.UpdateCtx(ctx, progress.Delta{Pending: 1})
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: request})
	return &approval.Outcome{Request: request, Assessment: assessment}, nil
}

// applyPolicy evaluates a context-embedded policy. A non-nil outcome means
// the submission was resolved (or rejected) without scoring.
func (s *service) applyPolicy(ctx context.Context, submission *approval.Submission) *approval.Outcome {
	p := policy.FromContext(ctx)
	if p == nil {
		return nil
	}
	for _, action := range submission.Actions {
		if !p.IsAllowed(action.Kind) {
			return s.autoResolve(ctx, nil, false, fmt.Sprintf("action kind %q blocked by policy", action.Kind))
		}
	}
	switch p.Mode {
	case policy.ModeBypass:
		return s.autoResolve(ctx, nil, true, "system disabled")
	case policy.ModeDeny:
		return s.autoResolve(ctx, nil, false, "denied by policy")
	}
	return nil
}

// autoResolve synthesizes a response without a pending entry.
func (s *service) autoResolve(ctx context.Context, assessment *risk.Assessment, approved bool, reason string) *approval.Outcome {
	action := approval.ActionApprove
	if !approved {
		action = approval.ActionReject
	}
	response := &approval.Response{
		Action:    action,
		Approved:  approved,
		Comment:   reason,
		Timestamp: clock.Now(),
	}
	if approved {
		s.advanceTrust(ctx, "auto-approved task")
		_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicAutoApproval, Data: response})
	}
	progress.UpdateCtx(ctx, progress.Delta{AutoResolved: 1})
	return &approval.Outcome{Assessment: assessment, Response: response, AutoResolved: true, Reason: reason}
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	return s.pending.List(ctx)
}

func (s *service) Respond(ctx context.Context, id string, response *approval.Response) (*approval.Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	if response == nil {
		return nil, errors.New("invalid response")
	}

	// Removing the entry before any further processing makes the response
	// exactly-once: a concurrent duplicate finds the table empty and fails.
	request, err := s.pending.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("approval request %q: %w", id, dao.ErrNotFound)
	}
	s.stopTimer(id)

	response.RequestID = id
	if response.Timestamp.IsZero() {
		response.Timestamp = clock.Now()
	}
	_ = s.responses.Save(ctx, response)

	if response.Action == approval.ActionTrust && response.NewTrustRank != nil {
		s.grantTrust(ctx, *response.NewTrustRank)
	} else if response.Approved {
		s.advanceTrust(ctx, "approved task")
	}

	delta := progress.Delta{Pending: -1}
	if response.Approved {
		delta.Approved = 1
	} else {
		delta.Rejected = 1
	}
	progress.UpdateCtx(ctx, delta)

	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestResponded, Data: response})
	return request, nil
}

func (s *service) Cancel(ctx context.Context, id string) error {
	request, err := s.pending.Remove(ctx, id)
	if err != nil {
		return err
	}
	if request == nil {
		return fmt.Errorf("approval request %q: %w", id, dao.ErrNotFound)
	}
	s.stopTimer(id)
	progress.UpdateCtx(ctx, progress.Delta{Pending: -1, Cancelled: 1})
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCancelled, Data: request})
	return nil
}

// timeOut fires when a low-risk request outlived the configured window. The
// request is removed and auto-approved; a request already responded to is a
// no-op.
func (s *service) timeOut(id string) {
	ctx := context.Background()
	request, err := s.pending.Remove(ctx, id)
	if err != nil || request == nil {
		return
	}
	s.stopTimer(id)

	response := &approval.Response{
		RequestID: id,
		Action:    approval.ActionApprove,
		Approved:  true,
		Comment:   "timed out waiting for response",
		Timestamp: clock.Now(),
	}
	_ = s.responses.Save(ctx, response)
	s.advanceTrust(ctx, "timed-out task auto-approved")

	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestTimedOut, Data: response})
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicAutoApproval, Data: response})
}

/* ---------------- trust state ----------------------------------------- */

func (s *service) TrustRank() model.TrustRank {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rank
}

func (s *service) Successes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successes
}

// advanceTrust counts one success and applies the ladder. Automatic
// progression is monotone: the ladder never returns a lower rank.
func (s *service) advanceTrust(ctx context.Context, reason string) {
	s.mu.Lock()
	s.successes++
	from := s.rank
	s.rank = s.ladder.RankFor(s.rank, s.successes)
	to := s.rank
	s.mu.Unlock()

	if from != to {
		_ = s.events.Publish(ctx, &approval.Event{
			Topic: approval.TopicTrustChanged,
			Data:  &approval.TrustChange{From: from, To: to, Reason: reason, At: clock.Now()},
		})
	}
}

// grantTrust applies an explicit user grant. Unlike automatic progression a
// grant may move the rank in either direction.
func (s *service) grantTrust(ctx context.Context, rank model.TrustRank) {
	if !rank.IsValid() {
		return
	}
	s.mu.Lock()
	from := s.rank
	s.rank = rank
	s.mu.Unlock()

	if from != rank {
		_ = s.events.Publish(ctx, &approval.Event{
			Topic: approval.TopicTrustChanged,
			Data:  &approval.TrustChange{From: from, To: rank, Reason: "explicit trust grant", At: clock.Now()},
		})
	}
}

/* ---------------- plumbing -------------------------------------------- */

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

// contextWithRank returns a copy of the task context carrying the
// coordinator's authoritative rank.
func (s *service) contextWithRank(taskCtx *model.TaskContext) *model.TaskContext {
	copied := model.TaskContext{}
	if taskCtx != nil {
		copied = *taskCtx
	}
	copied.TrustRank = s.TrustRank()
	return &copied
}

func (s *service) stopTimer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

var _ approval.Service = (*service)(nil)
