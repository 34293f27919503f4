package workflow

// Action represents an operation that can cause a state transition
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
