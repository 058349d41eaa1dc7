package signoff

import (
	"context"
	"time"

	"github.com/signoffhq/signoff/extension"
	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/approval"
	amemory "github.com/signoffhq/signoff/service/approval/memory"
	"github.com/signoffhq/signoff/service/event"
	"github.com/signoffhq/signoff/service/history"
	"github.com/signoffhq/signoff/service/history/commit"
	"github.com/signoffhq/signoff/service/history/snapshot"
	"github.com/signoffhq/signoff/service/messaging"
	"github.com/signoffhq/signoff/service/messaging/fs"
	qmem "github.com/signoffhq/signoff/service/messaging/memory"
	"github.com/signoffhq/signoff/service/risk"
	"github.com/signoffhq/signoff/tracing"
)

// Service is the façade gluing the approval core together: submissions are
// classified, scored and coordinated; every resolution is recorded as a
// commit on the history store.
type Service struct {
	config      *Config
	coordinator approval.Service
	history     *history.Service
	snapshots   *snapshot.Service
	events      *event.Service
	registry    *extension.Registry
	queueVendor messaging.Vendor
	classifiers []extension.Classifier
}

// New creates the service; zero-configuration callers get an in-memory
// coordinator, a fresh history store and the built-in keyword classifier.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.ensureBaseSetup(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.queueVendor == "" {
		s.queueVendor = messaging.Vendor(s.config.Queue.Vendor)
		if s.queueVendor == "" {
			s.queueVendor = messaging.VendorMemory
		}
	}
	if s.registry == nil {
		s.registry = extension.NewRegistry()
	}
	for _, classifier := range s.classifiers {
		s.registry.Register(classifier)
	}
	if s.events == nil {
		var opts []event.Option
		if s.queueVendor == messaging.VendorFs {
			baseURL := s.config.Queue.BaseURL
			opts = append(opts, event.WithNewFsQueueConfig(func(name string) fs.Config {
				config := fs.DefaultConfig()
				config.BaseURL = baseURL + "/" + name
				return config
			}))
		} else {
			// Lifecycle notifications are fire-and-forget; without a consumer
			// attached the memory buffer must shed instead of blocking.
			opts = append(opts, event.WithNewMemoryQueueConfig(func(string) qmem.Config {
				return qmem.NotifyConfig()
			}))
		}
		events, err := event.New(s.queueVendor, opts...)
		if err != nil {
			return err
		}
		s.events = events
	}
	if s.coordinator == nil {
		var opts []amemory.Option
		var assessorOpts []risk.Option
		if s.config.Risk.Weights != nil {
			assessorOpts = append(assessorOpts, risk.WithWeights(*s.config.Risk.Weights))
		}
		if s.config.Risk.Thresholds != nil {
			assessorOpts = append(assessorOpts, risk.WithThresholds(*s.config.Risk.Thresholds))
		}
		if len(assessorOpts) > 0 {
			opts = append(opts, amemory.WithAssessor(risk.New(assessorOpts...)))
		}
		if s.config.Trust.Ladder != nil {
			opts = append(opts, amemory.WithLadder(*s.config.Trust.Ladder))
		}
		if s.config.Trust.InitialRank != "" {
			opts = append(opts, amemory.WithInitialRank(model.TrustRank(s.config.Trust.InitialRank)))
		}
		if s.config.Approval.PendingTimeoutMs > 0 {
			opts = append(opts, amemory.WithPendingTimeout(time.Duration(s.config.Approval.PendingTimeoutMs)*time.Millisecond))
		}
		if s.config.Approval.MaxPending > 0 {
			opts = append(opts, amemory.WithMaxPending(s.config.Approval.MaxPending))
		}
		if s.config.Approval.Disabled {
			opts = append(opts, amemory.WithDisabled())
		}
		queue, err := event.QueueOf[approval.Event](s.events, "approval")
		if err != nil {
			return err
		}
		opts = append(opts, amemory.WithQueue(queue))
		s.coordinator = amemory.New(opts...)
	}
	if s.history == nil {
		queue, err := event.QueueOf[history.Event](s.events, "history")
		if err != nil {
			return err
		}
		s.history = history.New(
			history.WithDefaultBranch(s.config.History.DefaultBranch),
			history.WithQueue(queue))
	}
	if s.snapshots == nil {
		s.snapshots = snapshot.New()
	}
	return nil
}

// Submit classifies and scores a submission, queueing it for a human
// decision or resolving it immediately. Auto-resolved submissions are
// recorded on the history store right away.
func (s *Service) Submit(ctx context.Context, submission *approval.Submission) (*approval.Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, "signoff.submit", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if submission != nil && submission.Category == "" {
		submission.Category = s.registry.Classify(submission.Context, submission.Actions)
	}
	outcome, err := s.coordinator.Submit(ctx, submission)
	if err != nil {
		return nil, err
	}
	if outcome.AutoResolved && outcome.Response != nil {
		level := model.RiskLow
		if outcome.Assessment != nil {
			level = outcome.Assessment.Level
		}
		category := model.CategoryGeneral
		if submission != nil && submission.Category != "" {
			category = submission.Category
		}
		if _, err = s.history.CreateCommit(ctx, outcome.Response, s.config.History.Author, "",
			commit.WithRiskLevel(level), commit.WithCategory(category)); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// Respond records a human decision on a pending request and commits it to
// the history store.
func (s *Service) Respond(ctx context.Context, id string, response *approval.Response) (*commit.Commit, error) {
	ctx, span := tracing.StartSpan(ctx, "signoff.respond", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	request, err := s.coordinator.Respond(ctx, id, response)
	if err != nil {
		return nil, err
	}
	recorded, err := s.history.CreateCommit(ctx, response, s.config.History.Author, "",
		commit.WithRiskLevel(request.RiskLevel), commit.WithCategory(request.Category))
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// Pending lists requests awaiting a decision.
func (s *Service) Pending(ctx context.Context) ([]*approval.Request, error) {
	return s.coordinator.ListPending(ctx)
}

// Cancel releases a pending request without recording a decision.
func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.coordinator.Cancel(ctx, id)
}

// ExportHistory writes the repository snapshot to the URL.
func (s *Service) ExportHistory(ctx context.Context, URL string) error {
	return s.snapshots.Export(ctx, s.history, URL)
}

// ImportHistory loads a repository snapshot from the URL, replacing the
// store content.
func (s *Service) ImportHistory(ctx context.Context, URL string) error {
	return s.snapshots.Import(ctx, s.history, URL)
}

// Approval returns the coordinator.
func (s *Service) Approval() approval.Service { return s.coordinator }

// History returns the history store.
func (s *Service) History() *history.Service { return s.history }

// Events returns the typed notification service.
func (s *Service) Events() *event.Service { return s.events }

// Classifiers returns the category-classifier registry.
func (s *Service) Classifiers() *extension.Registry { return s.registry }

// Config returns the effective configuration.
func (s *Service) Config() *Config { return s.config }

// RegisterClassifier adds a category classifier at runtime.
func (s *Service) RegisterClassifier(classifier extension.Classifier) {
	s.registry.Register(classifier)
}
