package workflow

import (
	"errors"
	"testing"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StatePending, false},
		{StateApproved, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"draft", StateDraft, true},
		{"rejected", StateRejected, true},
		{"unknown value", State("archived"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewMachine_InvalidState(t *testing.T) {
	if _, err := NewMachine(State("bogus")); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("NewMachine() error = %v, want ErrInvalidState", err)
	}
}

func TestMachine_Fire(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		action  Action
		want    State
		wantErr bool
	}{
		{"submit draft", StateDraft, ActionSubmit, StatePending, false},
		{"approve pending", StatePending, ActionApprove, StateApproved, false},
		{"reject pending", StatePending, ActionReject, StateRejected, false},
		{"approve draft", StateDraft, ActionApprove, StateDraft, true},
		{"reject draft", StateDraft, ActionReject, StateDraft, true},
		{"submit pending", StatePending, ActionSubmit, StatePending, true},
		{"approve approved", StateApproved, ActionApprove, StateApproved, true},
		{"reject approved", StateApproved, ActionReject, StateApproved, true},
		{"submit rejected", StateRejected, ActionSubmit, StateRejected, true},
		{"approve rejected", StateRejected, ActionApprove, StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMachine(tt.from)
			if err != nil {
				t.Fatalf("NewMachine(%s) error = %v", tt.from, err)
			}

			got, err := m.Fire(tt.action)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrInvalidState) {
					t.Errorf("Fire(%s) error = %v, want ErrInvalidState", tt.action, err)
				}
				if m.State() != tt.from {
					t.Errorf("state changed on failed transition: %s -> %s", tt.from, m.State())
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire(%s) unexpected error = %v", tt.action, err)
			}
			if got != tt.want || m.State() != tt.want {
				t.Errorf("Fire(%s) = %s, want %s", tt.action, got, tt.want)
			}
		})
	}
}

func TestMachine_TerminalStatesHaveNoActions(t *testing.T) {
	for _, s := range []State{StateApproved, StateRejected} {
		m, err := NewMachine(s)
		if err != nil {
			t.Fatalf("NewMachine(%s) error = %v", s, err)
		}
		if got := m.PermittedActions(); len(got) != 0 {
			t.Errorf("PermittedActions() in %s = %v, want none", s, got)
		}
	}
}

func TestMachine_CanFire(t *testing.T) {
	m, err := NewMachine(StatePending)
	if err != nil {
		t.Fatalf("NewMachine() error = %v", err)
	}
	if !m.CanFire(ActionApprove) || !m.CanFire(ActionReject) {
		t.Error("pending application should permit approve and reject")
	}
	if m.CanFire(ActionSubmit) {
		t.Error("pending application should not permit submit")
	}
}

func TestTarget(t *testing.T) {
	got, err := Target(StateDraft, ActionSubmit)
	if err != nil || got != StatePending {
		t.Errorf("Target(draft, submit) = %s, %v; want pending, nil", got, err)
	}
	if _, err := Target(StateApproved, ActionReject); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("Target(approved, reject) error = %v, want ErrInvalidState", err)
	}
}
