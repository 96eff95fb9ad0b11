// Package coordinator drives the simulation: it owns the worker table,
// replays the scripted actions timestep by timestep, performs the random
// work-item delivery and reclaims slots once workers exit.
package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/simpool/simpool/internal/idgen"
	"github.com/simpool/simpool/internal/logflags"
	"github.com/simpool/simpool/model"
	"github.com/simpool/simpool/service/event"
	"github.com/simpool/simpool/service/journal"
	"github.com/simpool/simpool/service/mailbox"
	"github.com/simpool/simpool/service/text"
	"github.com/simpool/simpool/service/worker"
	"github.com/simpool/simpool/tracing"
	"github.com/sirupsen/logrus"
)

// slotState tags a pool position as empty or active; no sentinel handle
// values are used to mark free slots.
type slotState int

const (
	slotEmpty slotState = iota
	slotActive
)

// slot is one worker-table entry. The handle is meaningful only while the
// state is slotActive.
type slot struct {
	state  slotState
	handle *worker.Handle
}

// Service is the parent coordinator. It is single-goroutine by design: the
// worker table and the mailbox write side are owned exclusively by Run's
// caller, and all synchronisation with workers goes through the exchange
// handshake.
type Service struct {
	capacity int
	exchange *mailbox.Exchange
	source   *text.Source
	journals *journal.Factory
	events   *event.Publisher
	rand     *rand.Rand
	logger   *logrus.Entry

	slots      []slot
	active     int
	deliveries int
	reports    []WorkerReport
}

// New creates a coordinator. The exchange, text source and journal factory
// are required; the event publisher is optional.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range options {
		opt(s)
	}
	if s.exchange == nil {
		return nil, fmt.Errorf("coordinator: exchange is required")
	}
	if s.source == nil {
		return nil, fmt.Errorf("coordinator: text source is required")
	}
	if s.journals == nil {
		return nil, fmt.Errorf("coordinator: journal factory is required")
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(1))
	}
	if s.logger == nil {
		s.logger = logflags.CoordinatorLogger()
	}
	s.capacity = s.exchange.Capacity()
	s.slots = make([]slot, s.capacity)
	return s, nil
}

// Run replays the plan: for each timestep it applies the scripted actions in
// script order, then delivers one random work item to one random active
// worker. After the loop every still-active worker is terminated with the
// halt timestep, and the exchange is torn down.
func (s *Service) Run(ctx context.Context, plan *model.Plan) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "coordinator.Run", "INTERNAL")
	defer tracing.EndSpan(span, err)

	if plan == nil {
		return nil, fmt.Errorf("coordinator: plan cannot be nil")
	}
	if err = validatePlan(plan); err != nil {
		return nil, err
	}
	span.WithAttributes(map[string]string{
		"pool.capacity":  strconv.Itoa(s.capacity),
		"halt.timestamp": strconv.Itoa(plan.HaltTimestamp),
	})

	// Resources are released even on a mid-run failure; Teardown is
	// idempotent so the normal path may also call it.
	defer s.exchange.Teardown()

	for timestep := 0; timestep <= plan.HaltTimestamp; timestep++ {
		for _, action := range plan.At(timestep) {
			switch action.Kind {
			case model.ActionSpawn:
				s.applySpawn(ctx, timestep, action.Label)
			case model.ActionTerminate:
				if err = s.applyTerminate(ctx, timestep, action.Label); err != nil {
					return nil, err
				}
			case model.ActionHaltAll:
				// Loop bound only; the final sweep below does the work.
			}
		}
		if s.active > 0 {
			if err = s.deliverRandom(ctx, timestep); err != nil {
				return nil, err
			}
		}
	}

	// Final sweep: every still-active worker is terminated with the halt
	// timestep, in slot order.
	for i := range s.slots {
		if s.slots[i].state != slotActive {
			continue
		}
		if err = s.terminate(ctx, plan.HaltTimestamp, i); err != nil {
			return nil, err
		}
	}

	s.exchange.Teardown()
	return &Result{
		Timesteps:  plan.HaltTimestamp + 1,
		Deliveries: s.deliveries,
		Workers:    s.reports,
	}, nil
}

// validatePlan rejects a malformed plan before any resources are touched.
func validatePlan(plan *model.Plan) error {
	halts := 0
	for _, action := range plan.Actions {
		if action.Kind == model.ActionHaltAll {
			halts++
		}
	}
	switch {
	case halts == 0:
		return fmt.Errorf("coordinator: %w", model.ErrMissingHalt)
	case halts > 1:
		return fmt.Errorf("coordinator: %w", model.ErrDuplicateHalt)
	}
	return nil
}

// applySpawn starts a worker in the first free slot. A full pool drops the
// spawn silently: the script contract forbids over-subscription, so
// dropping is the defined behaviour, not an error.
func (s *Service) applySpawn(ctx context.Context, timestep int, label string) {
	free := s.freeSlot()
	if free == -1 || s.active >= s.capacity {
		s.logger.Debugf("[t = %d] spawn of %s dropped: pool full (%d/%d)", timestep, label, s.active, s.capacity)
		_ = s.events.Publish(ctx, &event.Event{Kind: event.KindSpawnDropped, Timestep: timestep, Label: label})
		return
	}

	id := idgen.Short()
	writer, err := s.journals.Open(ctx, id)
	if err != nil {
		// Worker-local fatal: the worker never starts, the slot stays free
		// and the simulation continues.
		s.logger.Errorf("[t = %d] spawn of %s failed: %v", timestep, label, err)
		_ = s.events.Publish(ctx, &event.Event{Kind: event.KindWarning, Timestep: timestep, Label: label, Detail: err.Error()})
		return
	}

	handle := worker.Start(worker.Config{
		ID:          id,
		Slot:        free,
		Label:       label,
		ActivatedAt: timestep,
	}, s.exchange, writer)
	s.slots[free] = slot{state: slotActive, handle: handle}
	s.active++

	s.logger.Infof("[t = %d] spawned process %s (worker %s) in slot %d", timestep, label, id, free)
	_ = s.events.Publish(ctx, &event.Event{Kind: event.KindSpawned, Timestep: timestep, Slot: free, Label: label, WorkerID: id})
}

// applyTerminate resolves the label among currently active slots. An
// inactive or unknown label is a warning, not an error; label reuse across
// non-overlapping lifetimes is legal.
func (s *Service) applyTerminate(ctx context.Context, timestep int, label string) error {
	idx := s.lookupLabel(label)
	if idx == -1 {
		s.logger.Warnf("[t = %d] terminate issued for non-existent or inactive process: %s", timestep, label)
		_ = s.events.Publish(ctx, &event.Event{Kind: event.KindWarning, Timestep: timestep, Label: label,
			Detail: "terminate issued for non-existent or inactive process"})
		return nil
	}
	return s.terminate(ctx, timestep, idx)
}

// terminate performs the full handshake for one slot: sentinel + signal +
// ack-wait via Deliver, then reap, then slot reclamation.
func (s *Service) terminate(ctx context.Context, timestep, idx int) (err error) {
	handle := s.slots[idx].handle
	ctx, span := tracing.StartSpan(ctx, "coordinator.terminate", "PRODUCER")
	defer tracing.EndSpan(span, err)
	span.WithAttributes(map[string]string{"worker.id": handle.ID(), "worker.label": handle.Label()})

	s.logger.Infof("[t = %d] sent TERMINATE message to %s (slot %d)", timestep, handle.Label(), idx)
	if err = s.exchange.Deliver(ctx, mailbox.Message{Slot: idx, Timestep: timestep, Payload: mailbox.Terminate}); err != nil {
		return fmt.Errorf("coordinator: terminate %s: %w", handle.Label(), err)
	}
	_ = s.events.Publish(ctx, &event.Event{Kind: event.KindTerminated, Timestep: timestep, Slot: idx,
		Label: handle.Label(), WorkerID: handle.ID()})

	// Reap: the ack only means the sentinel was processed; wait for the
	// worker to fully exit before the slot is reused.
	<-handle.Done()

	report := WorkerReport{
		Label:        handle.Label(),
		WorkerID:     handle.ID(),
		Slot:         idx,
		ActivatedAt:  handle.ActivatedAt(),
		TerminatedAt: timestep,
		Lines:        handle.Lines(),
		Err:          handle.Err(),
	}
	s.reports = append(s.reports, report)

	if exitErr := handle.Err(); exitErr != nil {
		// An abnormal exit is surfaced distinctly from a clean handshake.
		s.logger.Errorf("[t = %d] worker %s (slot %d) exited with error: %v", timestep, handle.ID(), idx, exitErr)
	} else {
		s.logger.Infof("[t = %d] worker %s (slot %d) has terminated", timestep, handle.ID(), idx)
	}
	_ = s.events.Publish(ctx, &event.Event{Kind: event.KindReaped, Timestep: timestep, Slot: idx,
		Label: handle.Label(), WorkerID: handle.ID()})

	s.slots[idx] = slot{}
	s.active--
	return nil
}

// deliverRandom sends one random text line to one random active worker and
// blocks until it is acknowledged. An empty text source skips delivery.
func (s *Service) deliverRandom(ctx context.Context, timestep int) (err error) {
	idx := s.randomActiveSlot()
	if idx == -1 {
		return nil
	}
	line, ok := s.source.Random(s.rand)
	if !ok {
		return nil
	}
	handle := s.slots[idx].handle

	ctx, span := tracing.StartSpan(ctx, "coordinator.deliver", "PRODUCER")
	defer tracing.EndSpan(span, err)
	span.WithAttributes(map[string]string{"worker.id": handle.ID(), "timestep": strconv.Itoa(timestep)})

	if err = s.exchange.Deliver(ctx, mailbox.Message{Slot: idx, Timestep: timestep, Payload: line}); err != nil {
		return fmt.Errorf("coordinator: deliver to slot %d: %w", idx, err)
	}
	s.deliveries++
	s.logger.Debugf("[t = %d] sent message to %s (slot %d): %s", timestep, handle.Label(), idx, line)
	_ = s.events.Publish(ctx, &event.Event{Kind: event.KindDelivered, Timestep: timestep, Slot: idx,
		Label: handle.Label(), WorkerID: handle.ID(), Payload: line})
	return nil
}

// freeSlot returns the index of the first empty slot, or -1 when the pool
// is full.
func (s *Service) freeSlot() int {
	for i := range s.slots {
		if s.slots[i].state == slotEmpty {
			return i
		}
	}
	return -1
}

// lookupLabel returns the first active slot carrying the label, or -1.
func (s *Service) lookupLabel(label string) int {
	for i := range s.slots {
		if s.slots[i].state == slotActive && s.slots[i].handle.Label() == label {
			return i
		}
	}
	return -1
}

// randomActiveSlot selects one active slot uniformly at random, or -1 when
// none is active.
func (s *Service) randomActiveSlot() int {
	activeIndexes := make([]int, 0, len(s.slots))
	for i := range s.slots {
		if s.slots[i].state == slotActive {
			activeIndexes = append(activeIndexes, i)
		}
	}
	if len(activeIndexes) == 0 {
		return -1
	}
	return activeIndexes[s.rand.Intn(len(activeIndexes))]
}

// ActiveCount reports the number of active worker-table slots.
func (s *Service) ActiveCount() int {
	return s.active
}
