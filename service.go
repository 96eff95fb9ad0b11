package simpool

import (
	"github.com/simpool/simpool/service/event"
	"github.com/simpool/simpool/service/messaging"
	mmemory "github.com/simpool/simpool/service/messaging/memory"
	"github.com/simpool/simpool/service/script"
	"github.com/viant/afs"
)

// Service is the simulator façade: it assembles the configuration, the
// virtual file system, the script loader and the event feed, and exposes a
// Runtime that executes simulation runs.
type Service struct {
	config        *Config
	fs            afs.Service
	scripts       *script.Service
	queue         messaging.Queue[event.Event]
	eventHandlers []func(*event.Event)
	runtime       *Runtime
}

// New creates a simulator service.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	s.config = DefaultConfig()
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.runtime.config = s.config
	s.runtime.fs = s.fs
	s.runtime.scripts = s.scripts
	s.runtime.queue = s.queue
	s.runtime.eventHandlers = s.eventHandlers
}

func (s *Service) ensureBaseSetup() {
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.scripts == nil {
		s.scripts = script.New(s.fs, "")
	}
	if s.queue == nil {
		queueConfig := mmemory.DefaultConfig()
		queueConfig.QueueBuffer = s.config.Events.QueueBuffer
		s.queue = mmemory.NewQueue[event.Event](queueConfig)
	}
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Runtime returns the simulation runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}
