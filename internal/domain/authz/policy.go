package authz

import "github.com/quyenpham2020/shinsei-portal/internal/domain/workflow"

// Policy answers authorization questions about an actor and a target
// application. Every check is a pure function of (role, ownership,
// status) — no side effects, no I/O — so the whole rule set lives in one
// place and is independently testable.
type Policy struct{}

// NewPolicy creates a Policy
func NewPolicy() Policy {
	return Policy{}
}

// CanCreate returns true for any authenticated actor
func (Policy) CanCreate(actor Actor) bool {
	return actor.ID != 0 && actor.Role.IsValid()
}

// CanView returns true if the actor owns the application, holds any
// approver role, or is an admin
func (Policy) CanView(actor Actor, ownerID int64) bool {
	return actor.ID == ownerID || actor.Role.IsApprover()
}

// CanEdit returns true while the application is draft or pending for the
// owner, and always for an admin
func (Policy) CanEdit(actor Actor, ownerID int64, status workflow.State) bool {
	if actor.Role.IsAdmin() {
		return true
	}
	return actor.ID == ownerID && (status == workflow.StateDraft || status == workflow.StatePending)
}

// CanDelete returns true for an admin, or for the owner while the
// application is still a draft
func (Policy) CanDelete(actor Actor, ownerID int64, status workflow.State) bool {
	if actor.Role.IsAdmin() {
		return true
	}
	return actor.ID == ownerID && status == workflow.StateDraft
}

// CanSubmit returns true for the owner or an admin
func (Policy) CanSubmit(actor Actor, ownerID int64) bool {
	return actor.ID == ownerID || actor.Role.IsAdmin()
}

// CanApprove returns true if the actor holds an approver role and the
// application is pending
func (Policy) CanApprove(actor Actor, status workflow.State) bool {
	return actor.Role.IsApprover() && status == workflow.StatePending
}

// CanReject mirrors CanApprove
func (p Policy) CanReject(actor Actor, status workflow.State) bool {
	return p.CanApprove(actor, status)
}

// CanComment follows the same visibility rule as CanView
func (p Policy) CanComment(actor Actor, ownerID int64) bool {
	return p.CanView(actor, ownerID)
}

// CanAttach returns true for attachment mutations: owner or admin, and
// only while the application is draft or pending
func (p Policy) CanAttach(actor Actor, ownerID int64, status workflow.State) bool {
	return p.CanEdit(actor, ownerID, status)
}
