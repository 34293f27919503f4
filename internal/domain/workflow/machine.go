package workflow

import (
	"fmt"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
)

// transitions is the complete transition table. Terminal states have no
// outgoing edges, so an approved or rejected application can never move
// again.
var transitions = map[State]map[Action]State{
	StateDraft: {
		ActionSubmit: StatePending,
	},
	StatePending: {
		ActionApprove: StateApproved,
		ActionReject:  StateRejected,
	},
}

// Machine tracks the current state of a single application and validates
// transitions against the table above.
type Machine struct {
	current State
}

// NewMachine creates a machine positioned at the given state
func NewMachine(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: unknown workflow state %q", apperr.ErrInvalidState, initial)
	}
	return &Machine{current: initial}, nil
}

// State returns the current state
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if the action is permitted in the current state
func (m *Machine) CanFire(action Action) bool {
	_, ok := transitions[m.current][action]
	return ok
}

// Fire executes the action, moving to the target state if the transition
// is legal. An illegal transition yields apperr.ErrInvalidState.
func (m *Machine) Fire(action Action) (State, error) {
	next, ok := transitions[m.current][action]
	if !ok {
		return m.current, fmt.Errorf("%w: cannot %s an application in state %s", apperr.ErrInvalidState, action, m.current)
	}
	m.current = next
	return next, nil
}

// PermittedActions returns all actions that can be fired in the current state
func (m *Machine) PermittedActions() []Action {
	edges := transitions[m.current]
	actions := make([]Action, 0, len(edges))
	for a := range edges {
		actions = append(actions, a)
	}
	return actions
}

// Target returns the state an action would move into from the given
// state, without mutating anything. Used by repositories to build
// conditional updates.
func Target(from State, action Action) (State, error) {
	next, ok := transitions[from][action]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s an application in state %s", apperr.ErrInvalidState, action, from)
	}
	return next, nil
}
