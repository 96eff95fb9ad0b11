// Package worker implements the loop each spawned worker executes: block on
// the slot's signal, read the mailbox cell, journal the payload, signal the
// acknowledgement, repeat until the termination sentinel arrives.
//
// Each worker runs on its own goroutine behind a panic boundary, so a
// failing worker is contained without corrupting shared state: it holds no
// lock across any failure point.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/simpool/simpool/internal/logflags"
	"github.com/simpool/simpool/service/journal"
	"github.com/simpool/simpool/service/mailbox"
)

// ErrPanicked is recorded when a worker's goroutine panicked; the panic is
// contained by the worker's own boundary.
var ErrPanicked = errors.New("worker: panicked")

// Config binds a worker to its pool slot.
type Config struct {
	// ID is the worker's process identity, used to name its journal.
	ID string

	// Slot is the pool position whose signal the worker waits on.
	Slot int

	// Label is the scripted identifier (e.g. "C1").
	Label string

	// ActivatedAt is the timestep the worker was spawned.
	ActivatedAt int
}

// Handle is the coordinator's view of a running worker. Done is closed when
// the worker has fully exited; the remaining accessors are meaningful only
// after Done.
type Handle struct {
	id          string
	slot        int
	label       string
	activatedAt int

	done chan struct{}

	mu           sync.Mutex
	err          error
	lines        int
	terminatedAt int
}

// ID returns the worker's identity.
func (h *Handle) ID() string { return h.id }

// Slot returns the worker's pool slot.
func (h *Handle) Slot() int { return h.slot }

// Label returns the worker's scripted label.
func (h *Handle) Label() string { return h.label }

// ActivatedAt returns the timestep the worker was spawned.
func (h *Handle) ActivatedAt() int { return h.activatedAt }

// Done is closed once the worker has fully exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err reports the worker's exit error, nil for a clean termination
// handshake. Valid after Done.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Lines reports how many work items the worker received. Valid after Done.
func (h *Handle) Lines() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lines
}

// TerminatedAt reports the timestep carried by the termination sentinel, or
// -1 when the worker exited without one. Valid after Done.
func (h *Handle) TerminatedAt() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminatedAt
}

func (h *Handle) setErr(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = errors.Join(h.err, err)
}

// Start launches a worker goroutine bound to its slot's signal. The journal
// writer must already be open; open failures are the spawner's to handle.
func Start(cfg Config, exchange *mailbox.Exchange, writer *journal.Writer) *Handle {
	h := &Handle{
		id:           cfg.ID,
		slot:         cfg.Slot,
		label:        cfg.Label,
		activatedAt:  cfg.ActivatedAt,
		done:         make(chan struct{}),
		terminatedAt: -1,
	}
	go h.run(exchange, writer)
	return h
}

func (h *Handle) run(exchange *mailbox.Exchange, writer *journal.Writer) {
	logger := logflags.WorkerLogger(h.slot, h.id)
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			h.setErr(fmt.Errorf("%w: %v", ErrPanicked, r))
		}
	}()

	// Waits are indefinite: a worker only ever leaves this loop through the
	// termination sentinel or exchange teardown.
	ctx := context.Background()
	for {
		msg, err := exchange.Receive(ctx, h.slot)
		if err != nil {
			h.setErr(err)
			return
		}
		if msg.IsTerminate() {
			h.mu.Lock()
			h.terminatedAt = msg.Timestep
			lines := h.lines
			h.mu.Unlock()
			logger.Debugf("received TERMINATE at t=%d after %d lines", msg.Timestep, lines)
			h.setErr(writer.Terminated(ctx, msg.Timestep, h.id))
			h.setErr(writer.Summary(ctx, h.id, lines, msg.Timestep, h.activatedAt))
			h.setErr(writer.Close(ctx))
			// Ack strictly after the journal records so the coordinator's
			// ack-wait implies the log is complete.
			h.setErr(exchange.Ack())
			return
		}

		logger.Debugf("received message at t=%d: %s", msg.Timestep, msg.Payload)
		h.mu.Lock()
		h.lines++
		h.mu.Unlock()
		h.setErr(writer.Record(ctx, msg.Timestep, h.id, msg.Payload))
		if err := exchange.Ack(); err != nil {
			h.setErr(err)
			return
		}
	}
}
