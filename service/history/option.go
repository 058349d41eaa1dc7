package history

import "github.com/signoffhq/signoff/service/messaging"

// Option customises the history service.
type Option func(*Service)

// WithDefaultBranch names the protected default branch, "main" otherwise.
func WithDefaultBranch(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultBranch = name
		}
	}
}

// WithQueue replaces the notification queue.
func WithQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) {
		if queue != nil {
			s.events = queue
		}
	}
}
