package event

import (
	"context"

	"github.com/simpool/simpool/service/messaging"
)

// Listener consumes events from a queue and dispatches them to a handler on
// a dedicated goroutine. Stop cancels consumption and then drains whatever
// the publisher left behind, so that a caller that has finished publishing
// observes every event before Stop returns.
type Listener struct {
	queue   messaging.Queue[Event]
	handler func(*Event)
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewListener creates a listener for the supplied queue and handler.
func NewListener(queue messaging.Queue[Event], handler func(*Event)) *Listener {
	return &Listener{
		queue:   queue,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Start begins consuming events.
func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go func() {
		defer close(l.done)
		for {
			msg, err := l.queue.Consume(ctx)
			if err != nil {
				return
			}
			l.handler(msg.T())
			_ = msg.Ack()
		}
	}()
}

// Stop cancels the consumer goroutine, waits for it to exit and drains any
// remaining events inline. Safe to call once after publishing has ceased.
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done

	sized, ok := l.queue.(interface{ Size() int })
	if !ok {
		return
	}
	for sized.Size() > 0 {
		msg, err := l.queue.Consume(context.Background())
		if err != nil {
			return
		}
		l.handler(msg.T())
		_ = msg.Ack()
	}
}
