// Package event defines the simulation event feed: typed records describing
// everything the coordinator does (spawns, deliveries, terminations,
// warnings), published to a queue so that observers stay decoupled from the
// timestep loop.
package event

import (
	"time"
)

// Kind classifies a simulation event.
type Kind string

const (
	// KindSpawned is published when a worker is started in a pool slot.
	KindSpawned Kind = "spawned"

	// KindSpawnDropped is published when a spawn request finds the pool
	// full. Dropping is the defined capacity policy, not an error.
	KindSpawnDropped Kind = "spawn_dropped"

	// KindDelivered is published after a work item has been delivered and
	// acknowledged.
	KindDelivered Kind = "delivered"

	// KindTerminated is published after a terminate handshake completed and
	// the worker acknowledged the sentinel.
	KindTerminated Kind = "terminated"

	// KindReaped is published once a terminated worker's exit has been
	// observed and its slot reclaimed.
	KindReaped Kind = "reaped"

	// KindWarning is published for recoverable conditions, such as a
	// terminate command naming an inactive label.
	KindWarning Kind = "warning"
)

// Event is a single simulation event record.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestep  int       `json:"timestep"`
	Slot      int       `json:"slot,omitempty"`
	Label     string    `json:"label,omitempty"`
	WorkerID  string    `json:"workerID,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
