package model

import (
	"errors"
	"fmt"
)

// ActionKind identifies what the coordinator should do at a scripted
// timestep.
type ActionKind int

const (
	// ActionSpawn starts a new worker in the first free pool slot.
	ActionSpawn ActionKind = iota

	// ActionTerminate sends the termination sentinel to the worker currently
	// carrying the action's label.
	ActionTerminate

	// ActionHaltAll marks the simulation's terminal timestep. Exactly one
	// halt action must exist per plan.
	ActionHaltAll
)

// String returns the script mnemonic for the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionSpawn:
		return "S"
	case ActionTerminate:
		return "T"
	case ActionHaltAll:
		return "EXIT"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is a single scripted instruction. Actions are immutable once
// parsed; ordering by timestamp, with ties broken by script order, is the
// only property the coordinator relies on.
type Action struct {
	Timestamp int
	Label     string
	Kind      ActionKind
}

// Validation errors. Sentinel variables allow callers to detect conditions
// via errors.Is instead of string comparisons.
var (
	// ErrMissingHalt indicates the script contains no EXIT action.
	ErrMissingHalt = errors.New("model: script has no halt action")

	// ErrDuplicateHalt indicates the script contains more than one EXIT
	// action.
	ErrDuplicateHalt = errors.New("model: script has more than one halt action")

	// ErrNegativeTimestamp indicates an action scheduled before timestep 0.
	ErrNegativeTimestamp = errors.New("model: action timestamp is negative")
)

// Plan is a validated, ordered list of scripted actions plus the derived
// halt timestep. Actions keep their original script order; the coordinator
// iterates timesteps and applies matching actions in that order.
type Plan struct {
	Actions       []Action
	HaltTimestamp int
}

// NewPlan validates the action list and derives the halt timestep. The list
// must contain exactly one halt action and no negative timestamps.
func NewPlan(actions []Action) (*Plan, error) {
	halt := -1
	for i, action := range actions {
		if action.Timestamp < 0 {
			return nil, fmt.Errorf("%w: action %d (%s %s at t=%d)", ErrNegativeTimestamp, i, action.Label, action.Kind, action.Timestamp)
		}
		if action.Kind != ActionHaltAll {
			continue
		}
		if halt != -1 {
			return nil, fmt.Errorf("%w: t=%d and t=%d", ErrDuplicateHalt, halt, action.Timestamp)
		}
		halt = action.Timestamp
	}
	if halt == -1 {
		return nil, ErrMissingHalt
	}
	return &Plan{Actions: actions, HaltTimestamp: halt}, nil
}

// At returns the actions scheduled for the given timestep, preserving script
// order. The halt action is included so callers can observe it, although the
// coordinator treats it purely as the loop bound.
func (p *Plan) At(timestep int) []Action {
	var out []Action
	for _, action := range p.Actions {
		if action.Timestamp == timestep {
			out = append(out, action)
		}
	}
	return out
}
