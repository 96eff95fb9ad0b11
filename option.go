package simpool

import (
	"github.com/simpool/simpool/service/event"
	"github.com/simpool/simpool/service/messaging"
	"github.com/viant/afs"
)

// Option customises the Service façade.
type Option func(*Service)

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithCapacity sets the worker-pool size.
func WithCapacity(capacity int) Option {
	return func(s *Service) {
		s.config.Capacity = capacity
	}
}

// WithSeed sets the random seed; zero seeds from the wall clock.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.config.Seed = seed
	}
}

// WithScriptURL sets the command-script location.
func WithScriptURL(URL string) Option {
	return func(s *Service) {
		s.config.ScriptURL = URL
	}
}

// WithTextURL sets the work-item text file location.
func WithTextURL(URL string) Option {
	return func(s *Service) {
		s.config.TextURL = URL
	}
}

// WithJournalBaseURL sets the destination directory for per-worker
// journals.
func WithJournalBaseURL(URL string) Option {
	return func(s *Service) {
		s.config.JournalBaseURL = URL
	}
}

// WithFS overrides the virtual file system used for all I/O.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithEventQueue overrides the event feed queue implementation.
func WithEventQueue(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithEventHandler registers an additional handler invoked for every
// simulation event, after the built-in logging handler.
func WithEventHandler(handler func(*event.Event)) Option {
	return func(s *Service) {
		s.eventHandlers = append(s.eventHandlers, handler)
	}
}
