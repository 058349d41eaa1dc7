package memory

import (
	"time"

	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/approval"
	"github.com/signoffhq/signoff/service/messaging"
	"github.com/signoffhq/signoff/service/risk"
	"github.com/signoffhq/signoff/service/trust"
)

type Option func(*service)

// WithAssessor replaces the default risk assessor.
func WithAssessor(assessor *risk.Assessor) Option {
	return func(s *service) { s.assessor = assessor }
}

// WithLadder overrides the trust progression thresholds.
func WithLadder(ladder trust.Ladder) Option {
	return func(s *service) { s.ladder = ladder }
}

// WithInitialRank sets the requester's starting rank (default novice).
func WithInitialRank(rank model.TrustRank) Option {
	return func(s *service) {
		if rank.IsValid() {
			s.rank = rank
		}
	}
}

// WithPendingTimeout enables the timeout edge for low-risk pending requests:
// once the window elapses they are removed and auto-approved.
func WithPendingTimeout(timeout time.Duration) Option {
	return func(s *service) { s.pendingTimeout = timeout }
}

// WithMaxPending bounds the pending table; Submit fails once the limit is
// reached. Zero means unbounded.
func WithMaxPending(limit int) Option {
	return func(s *service) { s.maxPending = limit }
}

// WithQueue attaches an external event queue so that lifecycle notifications
// can be spooled to a durable vendor.
func WithQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = queue }
}

// WithDisabled turns the whole approval system off: every submission is
// auto-approved with reason "system disabled" and no scoring is performed.
func WithDisabled() Option {
	return func(s *service) { s.enabled = false }
}
