package event

import (
	"context"

	"github.com/simpool/simpool/internal/clock"
	"github.com/simpool/simpool/service/messaging"
)

// Publisher stamps and publishes simulation events. A nil Publisher is a
// valid no-op so callers need not guard every site.
type Publisher struct {
	queue messaging.Queue[Event]
}

// NewPublisher creates a publisher backed by the supplied queue.
func NewPublisher(queue messaging.Queue[Event]) *Publisher {
	return &Publisher{queue: queue}
}

// Publish stamps the event with the current time and enqueues it.
func (p *Publisher) Publish(ctx context.Context, anEvent *Event) error {
	if p == nil || p.queue == nil {
		return nil
	}
	anEvent.CreatedAt = clock.Now()
	return p.queue.Publish(ctx, anEvent)
}
