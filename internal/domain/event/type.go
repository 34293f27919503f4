package event

// Type identifies the type of domain event
type Type string

const (
	TypeApplicationCreated   Type = "application.created"
	TypeApplicationSubmitted Type = "application.submitted"
	TypeApplicationApproved  Type = "application.approved"
	TypeApplicationRejected  Type = "application.rejected"
	TypeApplicationCommented Type = "application.commented"
	TypeApplicationDeleted   Type = "application.deleted"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationCreated,
		TypeApplicationSubmitted,
		TypeApplicationApproved,
		TypeApplicationRejected,
		TypeApplicationCommented,
		TypeApplicationDeleted:
		return true
	default:
		return false
	}
}
