// Package mailbox implements the coordinator↔worker handshake: one shared
// message cell, one signal channel per pool slot and a single shared
// acknowledgement channel.
//
// The cell is deliberately unguarded by any lock. Correctness rests on the
// handshake ordering: the coordinator writes the cell, signals exactly one
// slot, and consumes the single acknowledgement before it writes again. The
// channel send/receive pairs order the cell write before the worker's read
// and the worker's processing before the coordinator's next write, so at
// most one unread message exists at any time.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Terminate is the reserved payload instructing a worker to stop.
const Terminate = "TERMINATE"

// MaxPayload bounds the message payload size in bytes.
const MaxPayload = 1000

var (
	// ErrClosed is returned when the exchange has been torn down.
	ErrClosed = errors.New("mailbox: exchange closed")

	// ErrSlotOutOfRange is returned for a slot index outside the pool.
	ErrSlotOutOfRange = errors.New("mailbox: slot out of range")

	// ErrPayloadTooLarge is returned when a payload exceeds MaxPayload.
	ErrPayloadTooLarge = errors.New("mailbox: payload too large")
)

// Message is the content of the shared cell: the slot the coordinator woke,
// the timestep the event belongs to and the payload line.
type Message struct {
	Slot     int
	Timestep int
	Payload  string
}

// IsTerminate reports whether the message carries the termination sentinel.
func (m Message) IsTerminate() bool {
	return m.Payload == Terminate
}

// Exchange owns the shared cell and the capacity+1 handshake channels. It is
// created once at startup and torn down once at shutdown; Teardown is
// idempotent and safe on a nil receiver.
type Exchange struct {
	cell      Message
	slots     []chan struct{}
	ack       chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// New allocates an exchange for the given pool capacity. The cell starts
// zeroed: no target slot, timestep -1.
func New(capacity int) (*Exchange, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("mailbox: capacity must be positive, got %d", capacity)
	}
	e := &Exchange{
		slots:  make([]chan struct{}, capacity),
		ack:    make(chan struct{}, 1),
		closed: make(chan struct{}),
		cell:   Message{Slot: -1, Timestep: -1},
	}
	for i := range e.slots {
		e.slots[i] = make(chan struct{}, 1)
	}
	return e, nil
}

// Capacity returns the number of pool slots the exchange serves.
func (e *Exchange) Capacity() int {
	return len(e.slots)
}

// Deliver writes the cell, signals the target slot and blocks until the
// woken worker acknowledges. It must not be called again before the previous
// call returned; that ordering is what keeps the single cell safe.
func (e *Exchange) Deliver(ctx context.Context, msg Message) error {
	if msg.Slot < 0 || msg.Slot >= len(e.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, msg.Slot)
	}
	if len(msg.Payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(msg.Payload))
	}
	e.cell = msg
	select {
	case e.slots[msg.Slot] <- struct{}{}:
	case <-e.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-e.ack:
		return nil
	case <-e.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message has been posted to the given slot and
// returns the cell content. A worker must only read the cell through
// Receive; that is what makes exactly one worker see each message.
func (e *Exchange) Receive(ctx context.Context, slot int) (Message, error) {
	if slot < 0 || slot >= len(e.slots) {
		return Message{}, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	select {
	case <-e.slots[slot]:
		return e.cell, nil
	case <-e.closed:
		return Message{}, ErrClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Ack signals that the most recently received message has been fully
// processed, unblocking the coordinator's Deliver.
func (e *Exchange) Ack() error {
	select {
	case e.ack <- struct{}{}:
		return nil
	case <-e.closed:
		return ErrClosed
	}
}

// PendingAcks reports how many unconsumed acknowledgement signals exist.
// Under the handshake ordering this never exceeds one.
func (e *Exchange) PendingAcks() int {
	return len(e.ack)
}

// Teardown releases the exchange. Blocked workers and deliveries observe
// ErrClosed. Invoking teardown repeatedly, or before any worker exists, is
// safe.
func (e *Exchange) Teardown() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		close(e.closed)
	})
}
