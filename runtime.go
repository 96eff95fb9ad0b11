package simpool

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/simpool/simpool/internal/clock"
	"github.com/simpool/simpool/internal/logflags"
	"github.com/simpool/simpool/model"
	"github.com/simpool/simpool/service/coordinator"
	"github.com/simpool/simpool/service/event"
	"github.com/simpool/simpool/service/journal"
	"github.com/simpool/simpool/service/mailbox"
	"github.com/simpool/simpool/service/messaging"
	"github.com/simpool/simpool/service/script"
	"github.com/simpool/simpool/service/text"
	"github.com/simpool/simpool/tracing"
	"github.com/viant/afs"
)

// Runtime executes simulation runs against the service configuration.
type Runtime struct {
	config        *Config
	fs            afs.Service
	scripts       *script.Service
	queue         messaging.Queue[event.Event]
	eventHandlers []func(*event.Event)
}

// LoadPlan loads and validates the command script at the given URL.
func (r *Runtime) LoadPlan(ctx context.Context, URL string) (*model.Plan, error) {
	return r.scripts.Load(ctx, URL)
}

// Run executes one simulation end to end: it loads the script and text
// collaborators, allocates the mailbox exchange, starts the event feed
// listener and hands control to the coordinator. All synchronization
// resources are released by the time Run returns.
func (r *Runtime) Run(ctx context.Context) (result *coordinator.Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "runtime.Run", "INTERNAL")
	defer tracing.EndSpan(span, err)

	if err = r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	plan, err := r.scripts.Load(ctx, r.config.ScriptURL)
	if err != nil {
		return nil, err
	}
	source, err := text.Load(ctx, r.fs, r.config.TextURL)
	if err != nil {
		return nil, err
	}

	// One-time startup resource; an allocation failure aborts the run with
	// no partial state to recover.
	exchange, err := mailbox.New(r.config.Capacity)
	if err != nil {
		return nil, err
	}

	seed := r.config.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}

	eventLogger := logflags.EventLogger()
	handlers := append([]func(*event.Event){func(e *event.Event) {
		eventLogger.Debugf("[t = %d] %s slot=%d label=%s worker=%s %s", e.Timestep, e.Kind, e.Slot, e.Label, e.WorkerID, e.Detail)
	}}, r.eventHandlers...)
	listener := event.NewListener(r.queue, func(e *event.Event) {
		for _, handler := range handlers {
			handler(e)
		}
	})
	listener.Start()
	defer listener.Stop()

	coord, err := coordinator.New(
		coordinator.WithExchange(exchange),
		coordinator.WithTextSource(source),
		coordinator.WithJournalFactory(journal.NewFactory(r.fs, r.config.JournalBaseURL)),
		coordinator.WithEventPublisher(event.NewPublisher(r.queue)),
		coordinator.WithRand(rand.New(rand.NewSource(seed))),
	)
	if err != nil {
		exchange.Teardown()
		return nil, err
	}
	return coord.Run(ctx, plan)
}
