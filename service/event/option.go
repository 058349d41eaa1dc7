package event

import (
	"github.com/signoffhq/signoff/service/messaging/fs"
	"github.com/signoffhq/signoff/service/messaging/memory"
)

type Option func(s *Service)

// WithNewFsQueueConfig sets the per-queue file system configuration factory.
func WithNewFsQueueConfig(newConfig func(name string) fs.Config) Option {
	return func(s *Service) {
		s.fsNewQueueConfig = newConfig
	}
}

// WithNewMemoryQueueConfig sets the per-queue memory configuration factory.
func WithNewMemoryQueueConfig(newQueue func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newQueue
	}
}
