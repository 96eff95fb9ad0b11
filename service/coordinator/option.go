package coordinator

import (
	"math/rand"

	"github.com/simpool/simpool/service/event"
	"github.com/simpool/simpool/service/journal"
	"github.com/simpool/simpool/service/mailbox"
	"github.com/simpool/simpool/service/text"
	"github.com/sirupsen/logrus"
)

// Option customises a coordinator instance.
type Option func(*Service)

// WithExchange sets the mailbox exchange; its capacity defines the pool
// size.
func WithExchange(exchange *mailbox.Exchange) Option {
	return func(s *Service) {
		s.exchange = exchange
	}
}

// WithTextSource sets the work-item source.
func WithTextSource(source *text.Source) Option {
	return func(s *Service) {
		s.source = source
	}
}

// WithJournalFactory sets the factory used to open per-worker journals.
func WithJournalFactory(journals *journal.Factory) Option {
	return func(s *Service) {
		s.journals = journals
	}
}

// WithEventPublisher sets the simulation event publisher. Optional; a nil
// publisher disables the feed.
func WithEventPublisher(events *event.Publisher) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithRand sets the random source used for worker and line selection. The
// source is seeded once per run by the caller.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rand = r
	}
}

// WithLogger overrides the coordinator logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
